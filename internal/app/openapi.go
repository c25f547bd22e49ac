package app

import _ "embed"

// OpenAPISpec is served by the Swagger UI under /docs
//
//go:embed openapi.yaml
var OpenAPISpec []byte

package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	at := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	key := ReportKey("c42", at)

	assert.True(t, strings.HasPrefix(key, "reports/c42/2026/03/09/"), key)
	assert.True(t, strings.HasSuffix(key, ".json"), key)
	assert.NotEqual(t, key, ReportKey("c42", at))
}

func TestPutReport(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewS3Storage(S3Config{
		Endpoint:        srv.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "reports",
		Region:          "us-east-1",
		PublicURL:       "http://cdn.local/reports/",
	})

	out, err := s.PutReport(context.Background(), ReportInput{
		CampaignID: "c1",
		Body:       []byte(`{"total_reach":12500}`),
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/reports/"+out.Key, path)
	assert.Equal(t, "http://cdn.local/reports/"+out.Key, out.URL)
	assert.Equal(t, int64(21), out.Size)
}

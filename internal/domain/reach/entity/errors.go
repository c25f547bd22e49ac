package entity

import "errors"

// Domain errors for reach estimation
var (
	// Input errors
	ErrInvalidInput        = errors.New("posts must be a list")
	ErrInvalidCoefficients = errors.New("reach coefficients must be finite and non-negative")

	// Business logic errors
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrEmptyCampaignID  = errors.New("campaign ID is required")

	// Infrastructure errors
	ErrCampaignStoreNotConfigured = errors.New("campaign store is not configured")
	ErrUpstreamNotConfigured      = errors.New("instagram upstream is not configured")
	ErrStorageNotConfigured       = errors.New("report storage is not configured")
)

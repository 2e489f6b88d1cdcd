package model

import (
	"coachtui/coachapi"
	"coachtui/config"
)

// NewBackend builds the endpoint client from configuration.
func NewBackend(cfg *config.Config) (*coachapi.Client, error) {
	userID, _ := cfg.CurrentUser()
	return coachapi.NewClient(cfg.APIBaseURL, coachapi.Options{
		UserID:            userID,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.RequestTimeout,
	})
}

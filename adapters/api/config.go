package api

import (
	"time"
)

// Config holds the training server client settings
type Config struct {
	BaseURL string
	// Timeout of zero waits for the server indefinitely
	Timeout time.Duration
	// Headers are added to every request
	Headers map[string]string
}

// DefaultConfig returns the settings for a server on localhost
func DefaultConfig() Config {
	return Config{BaseURL: "http://localhost:5000"}
}

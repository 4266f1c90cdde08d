package view

import "time"

type HealthResponse struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Mode      ServiceMode `json:"mode,omitempty"`
}

const HealthStatusHealthy = "healthy"

type ServiceMode string

const (
	ModeStandalone ServiceMode = "standalone"
	ModeRemote     ServiceMode = "remote"
)

package config

import "github.com/mfreeman451/meshradar/pkg/models"

// Validator interface for configurations that need validation.
type Validator interface {
	Validate() error
}

// NetworkProvider supplies the networks to poll. Implementations must be
// safe for concurrent use; the refresh engine reads it once per cycle.
type NetworkProvider interface {
	ActiveNetworks() []models.MonitoredNetwork
}

// StaticNetworks is a fixed network list.
type StaticNetworks []models.MonitoredNetwork

func (s StaticNetworks) ActiveNetworks() []models.MonitoredNetwork {
	return append([]models.MonitoredNetwork(nil), s...)
}

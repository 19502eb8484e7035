package metrics

import "github.com/kilianp07/slotplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// ListenAddr exposes Prometheus metrics over HTTP while a search runs.
	// Empty disables the endpoint.
	ListenAddr string `json:"listen_addr"`
}

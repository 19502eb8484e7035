// Package infra contains technical adapters: the zerolog logger, metrics
// exporters, the run store and CSV dataset readers. These packages depend
// only on the interfaces and types defined in the core packages.
package infra

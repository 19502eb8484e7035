// Package factory provides a small generic registry used to build pluggable
// modules, such as metrics sinks, from configuration.
package factory

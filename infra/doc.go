// Package infra contains technical adapters: the run store, MQTT
// publisher, metrics recorders, reference table source and Sentry
// monitor. These packages depend only on the interfaces and types
// defined in the core packages.
package infra

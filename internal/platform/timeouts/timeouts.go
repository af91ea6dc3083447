// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// HTTPRead limits how long the market server waits for a full request body.
const HTTPRead = 10 * time.Second

// HTTPWrite limits how long the market server spends writing a response.
const HTTPWrite = 10 * time.Second

// HTTPIdle limits keep-alive idle time for market server connections.
const HTTPIdle = 120 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

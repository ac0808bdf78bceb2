// Package core defines the transport-agnostic types shared across the SDK:
// the unified generation request model, the response envelope and job status
// model, stream event types, and the error taxonomy.
//
// Wire-level concerns (HTTP, retries, SSE decoding, polling) live in the
// onething package.
package core

// Package onething is the wire-level client for the OneThing generation API.
//
// It provides synchronous, asynchronous (job-based), and SSE streaming
// execution of text, image, and video generation through a single Client
// that is safe for concurrent use. Domain types live in the core package.
package onething

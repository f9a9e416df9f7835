// Package server implements the MCP (Model Context Protocol) server for
// pixel pattern tools.
//
// This package provides a JSON-RPC 2.0 server that turns uploaded images into
// numbered stitch/paint-by-number patterns and manages the stored uploads,
// results and exports.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Patterns:
//   - pattern_upload: Store an image and get its file_id
//   - pattern_process: Build and save the pattern of an upload
//   - pattern_export: Render a saved pattern as PNG or JPEG
//
// History:
//   - pattern_history: List uploads, newest first
//   - pattern_history_detail: Fetch a saved result
//   - pattern_delete: Remove an upload, its result and exports
//   - pattern_stats: Storage totals
//
// # Image Caching
//
// Decoded uploads are cached by path, so processing the same upload with
// different parameters decodes it once. Deleting an upload evicts it.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses with:
//   - code: -32602 for rejected arguments, -32000 for other tool failures
//   - message: Human-readable error description
//   - data: The Go error string
//
// Processing is bounded by the configured timeout; a run that exceeds it is
// reported as a failure and its result discarded.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

// Package mcp provides an MCP (Model Context Protocol) server adapter for aska.
// It enables AI assistants to ask questions grounded in the locally indexed corpora.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")

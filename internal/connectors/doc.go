// Package connectors provides implementations of the Connector
// interface, one per corpus. Each connector knows how to discover
// sources with their fingerprints and fetch raw content from its
// corpus (filesystem, Google Drive).
package connectors

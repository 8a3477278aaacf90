// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion pipeline, retrieval engine, reranker and ask
// service all live here; they are pure Go with no external
// dependencies beyond the ports they drive.
package services

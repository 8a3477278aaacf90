// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Discovers and fetches documents from a corpus
//   - Extractor / ExtractorRegistry: Turns raw bytes into chunkable text
//   - IngestionTracker: Per-source state for incremental ingestion
//   - VectorIndex: Vector storage and nearest-neighbour queries
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Generates grounded answers
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven

package domain

const unknownDescription = "Unknown"

// Corpus identifies one ingestion corpus. Each corpus has its own
// vector collection and its own tracker file, so the two pipelines
// never interfere with each other's state.
type Corpus string

// Available corpora.
const (
	// CorpusLocal is the local filesystem corpus.
	CorpusLocal Corpus = "local"

	// CorpusDrive is the Google Drive corpus.
	CorpusDrive Corpus = "drive"
)

// IsValid returns true if the corpus is recognised.
func (c Corpus) IsValid() bool {
	switch c {
	case CorpusLocal, CorpusDrive:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Corpus) String() string {
	return string(c)
}

// Collection returns the vector collection name for this corpus.
func (c Corpus) Collection() string {
	switch c {
	case CorpusLocal:
		return "local_chunks"
	case CorpusDrive:
		return "drive_chunks"
	default:
		return string(c) + "_chunks"
	}
}

// TrackerFile returns the tracker file name for this corpus.
func (c Corpus) TrackerFile() string {
	switch c {
	case CorpusLocal:
		return "ingested_local.json"
	case CorpusDrive:
		return "ingested_drive.json"
	default:
		return "ingested_" + string(c) + ".json"
	}
}

// Description returns a human-readable description of the corpus.
func (c Corpus) Description() string {
	switch c {
	case CorpusLocal:
		return "Local files"
	case CorpusDrive:
		return "Google Drive"
	default:
		return unknownDescription
	}
}

// AllCorpora returns every known corpus, local first.
func AllCorpora() []Corpus {
	return []Corpus{CorpusLocal, CorpusDrive}
}

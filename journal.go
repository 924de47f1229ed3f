package stagehand

import "time"

// ApplyRecord is one journal entry: a patch that was applied and the
// arguments it was applied with.
type ApplyRecord struct {
	Time  time.Time `json:"time"`
	Args  []string  `json:"args"`
	Patch string    `json:"patch"`
	Files []string  `json:"files"`
}

// Journal records applied patches, append-only.
type Journal interface {
	// Append adds a record to the journal.
	Append(rec ApplyRecord) error
	// Load returns all records in append order.
	Load() ([]ApplyRecord, error)
}

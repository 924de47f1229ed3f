// Package jsonl persists the apply journal as JSON lines.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var _ stagehand.Journal = (*Journal)(nil)

// Journal is an append-only JSON-lines file of applied patches.
type Journal struct {
	path string
}

// NewJournal creates a journal backed by the file at path. The file and
// its directory are created on first append.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Append writes one record as a single JSON line.
func (j *Journal) Append(rec stagehand.ApplyRecord) error {
	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load returns all records in append order. A missing file is an empty
// journal.
func (j *Journal) Load() ([]stagehand.ApplyRecord, error) {
	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []stagehand.ApplyRecord
	scanner := bufio.NewScanner(f)
	// Records embed whole patches, which easily exceed the default 64KB
	// token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec stagehand.ApplyRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

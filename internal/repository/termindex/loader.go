// Package termindex loads the pre-built term index snapshot into the
// shared in-memory trie at process start.
package termindex

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/kbsearch/internal/domain/termindex"
)

// snapshot line format: one JSON object per line.
type termLine struct {
	Term     string      `json:"term"`
	Entities []entityRef `json:"entities"`
}

type entityRef struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Canonical string `json:"canonical"`
}

// Load reads a JSON-lines snapshot and builds the term index.
// Blank lines are skipped; a malformed line fails the whole load, since
// a partially loaded index would silently miss terms.
func Load(path string) (*termindex.Index, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open term index snapshot: %w", err)
	}
	defer f.Close()

	ix := termindex.New()

	scanner := bufio.NewScanner(f)
	// Terms with large synonym sets can exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var tl termLine
		if err := json.Unmarshal(line, &tl); err != nil {
			return nil, fmt.Errorf("parse snapshot line %d: %w", lineNo, err)
		}
		if tl.Term == "" || len(tl.Entities) == 0 {
			return nil, fmt.Errorf("snapshot line %d: term and entities are required", lineNo)
		}

		refs := make([]termindex.EntityRef, len(tl.Entities))
		for i, e := range tl.Entities {
			if e.ID == "" || e.Category == "" {
				return nil, fmt.Errorf("snapshot line %d: entity id and category are required", lineNo)
			}
			refs[i] = termindex.EntityRef{
				ID:        e.ID,
				Category:  e.Category,
				Canonical: e.Canonical,
			}
		}
		ix.Insert(tl.Term, refs...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read term index snapshot: %w", err)
	}

	return ix, nil
}

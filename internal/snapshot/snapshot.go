// Package snapshot reads the last-known-good local copy of the dashboard
// entity sets. The file is written by the external batch process; this side
// only ever reads it.
package snapshot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ahacrm/pulse/internal/models"
)

// ParseError means the snapshot file exists but cannot be decoded. It is a
// hard failure of the fetch path: a corrupt cache must never be mistaken for
// "no snapshot".
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("snapshot %s unparsable: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type Cache struct {
	path string
	log  *slog.Logger
}

func New(path string, log *slog.Logger) *Cache {
	return &Cache{path: path, log: log}
}

// Load returns the decoded snapshot, or (nil, nil) when the file does not
// exist. A missing snapshot is a valid state: first run, or the live source
// has never failed.
func (c *Cache) Load() (*models.Payload, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", c.path, err)
	}
	p, err := models.DecodePayload(b)
	if err != nil {
		return nil, &ParseError{Path: c.path, Err: err}
	}
	c.log.Debug("snapshot loaded",
		slog.String("path", c.path),
		slog.Int("leads", len(p.Leads)),
		slog.Int("deals", len(p.Deals)))
	return p, nil
}

// Package source abstracts where fish images come from: a local drop folder
// or a cloud blob container. Both variants list item names and materialize
// items into a local cache folder.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// ErrUnavailable is returned when the source cannot be listed or reached.
// Callers skip the current poll and retry on the next one.
var ErrUnavailable = errors.New("source: unavailable")

// Source is a uniform capability over local and cloud asset stores.
type Source interface {
	// Kind names the variant ("local" or "azure").
	Kind() string
	// List returns the names of every item currently in the source.
	List(ctx context.Context) ([]string, error)
	// Fetch materializes each named item into dest, creating dest if needed.
	// Items are handled independently: fetched lists those that landed in
	// dest, and err joins the per-item failures.
	Fetch(ctx context.Context, names []string, dest string) (fetched []string, err error)
	// Purge deletes every item the source still holds.
	Purge(ctx context.Context) error
}

// ClearDir removes every entry inside dir, leaving dir itself. A missing dir
// is not an error.
func ClearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("source: read %s: %w", dir, err)
	}
	var errs []error
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// logf writes a prefixed diagnostic line.
func logf(format string, args ...any) {
	log.Printf("[source] "+format, args...)
}

// Package ledger persists the set of asset names already ingested so each
// poll only sees what is new.
package ledger

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Ledger is a newline-delimited file of known asset names. Every call to
// DiffAndUpdate rewrites the file in full.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// New returns a Ledger backed by the file at path. The file need not exist.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// DiffAndUpdate returns the names in listing that were not recorded, then
// records listing as the new set. The result is sorted.
func (l *Ledger) DiffAndUpdate(listing []string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	known, err := l.read()
	if err != nil {
		return nil, err
	}

	var fresh []string
	seen := make(map[string]struct{}, len(listing))
	for _, name := range listing {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := known[name]; !ok {
			fresh = append(fresh, name)
		}
	}
	slices.Sort(fresh)

	if err := l.write(listing); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Known returns the recorded names, sorted.
func (l *Ledger) Known() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	known, err := l.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Forget drops names from the recorded set so the next poll reports them as
// new again.
func (l *Ledger) Forget(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	known, err := l.read()
	if err != nil {
		return err
	}
	for _, name := range names {
		delete(known, name)
	}
	keep := make([]string, 0, len(known))
	for name := range known {
		keep = append(keep, name)
	}
	slices.Sort(keep)
	return l.write(keep)
}

// Remove deletes the ledger file. A missing file is not an error.
func (l *Ledger) Remove() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ledger: remove %s: %w", l.path, err)
	}
	return nil
}

// read loads the recorded set. An absent file is an empty set.
func (l *Ledger) read() (map[string]struct{}, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", l.path, err)
	}

	known := make(map[string]struct{})
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name != "" {
			known[name] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ledger: scan %s: %w", l.path, err)
	}
	return known, nil
}

// write replaces the file with names, one per line. The new content is
// written to a sibling temp file and renamed into place.
func (l *Ledger) write(names []string) error {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ledger: mkdir %s: %w", dir, err)
		}
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("ledger: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("ledger: replace %s: %w", l.path, err)
	}
	return nil
}

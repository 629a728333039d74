package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// Local is a drop folder on disk. Fetched items are moved, not copied, so a
// file leaves the folder once ingested.
type Local struct {
	Dir string
}

// NewLocal returns a Local source rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

// Kind reports "local".
func (l *Local) Kind() string { return "local" }

// List returns the regular files in the drop folder.
func (l *Local) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrUnavailable, l.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Fetch moves each named file into dest. A file already gone from the drop
// folder but present in dest counts as fetched.
func (l *Local) Fetch(ctx context.Context, names []string, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("source: mkdir %s: %w", dest, err)
	}

	var fetched []string
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := l.move(name, dest); err != nil {
			logf("local: skip %s: %v", name, err)
			errs = append(errs, fmt.Errorf("fetch %s: %w", name, err))
			continue
		}
		fetched = append(fetched, name)
	}
	return fetched, errors.Join(errs...)
}

func (l *Local) move(name, dest string) error {
	from := filepath.Join(l.Dir, name)
	to := filepath.Join(dest, name)

	err := os.Rename(from, to)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if _, statErr := os.Stat(to); statErr == nil {
			return nil
		}
		return err
	case errors.Is(err, syscall.EXDEV):
		return copyAndRemove(from, to)
	default:
		return err
	}
}

// copyAndRemove is the cross-volume fallback for a failed rename.
func copyAndRemove(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(from)
}

// Purge is a no-op: ingested files have already left the drop folder and
// anything still there has not been seen by the tank.
func (l *Local) Purge(ctx context.Context) error {
	return nil
}

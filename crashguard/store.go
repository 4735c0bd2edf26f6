package crashguard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mainstaykit/mainstay/internal/atomicfile"
	"github.com/mainstaykit/mainstay/internal/paths"
)

// ///////////////////////////////////////////////
// Report Store
// ///////////////////////////////////////////////

// Store persists crash reports under a single directory and keeps only the
// most recent ones.
type Store struct {
	dir  string
	keep int
}

// NewStore returns a store rooted at dir that retains at most keep reports.
// The directory is created with owner-only access if it does not exist.
// keep <= 0 disables pruning.
func NewStore(dir string, keep int) (*Store, error) {
	if err := ensureDumpDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create crash directory: %w", err)
	}
	return &Store{dir: dir, keep: keep}, nil
}

// Dir returns the directory reports are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Write persists r and prunes old reports. Returns the path of the new
// report file.
//
// File names embed the capture time in UTC so that lexicographic order is
// chronological order.
func (s *Store) Write(r *Report) (string, error) {
	short := r.ID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("crash-%s-%s.json", r.Time.UTC().Format("20060102T150405"), short)
	path := filepath.Join(s.dir, name)
	if err := atomicfile.WriteJSON(path, r, 0o600); err != nil {
		return "", err
	}
	if err := s.Prune(); err != nil {
		return path, fmt.Errorf("report written but pruning failed: %w", err)
	}
	return path, nil
}

// List returns the paths of all stored reports, oldest first.
func (s *Store) List() ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(s.dir, paths.CrashReportPattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan crash directory: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Prune removes the oldest reports until at most the retention count
// remain. A disabled retention count keeps everything.
func (s *Store) Prune() error {
	if s.keep <= 0 {
		return nil
	}
	reports, err := s.List()
	if err != nil {
		return err
	}
	if len(reports) <= s.keep {
		return nil
	}
	for _, path := range reports[:len(reports)-s.keep] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old report: %w", err)
		}
	}
	return nil
}

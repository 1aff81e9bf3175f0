package exposure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/l-n-s/QuickShare/tool"
	"github.com/l-n-s/QuickShare/types"
)

// ErrNameConflict is returned when a source's base name is already exposed.
// The first exposure stays servable; overwriting silently would swap the
// bytes behind a URL the user may have already handed out.
var ErrNameConflict = errors.New("public name already exposed")

// Store maintains the mapping from public names to source paths and
// materializes it as symlinks inside the shared directory. Sources are
// referenced, never copied. All methods are safe for concurrent use, though
// in practice only the control thread mutates the store.
type Store struct {
	sharedDir string

	mu      sync.Mutex
	entries []types.Exposure
	byName  map[string]struct{}
}

func NewStore(sharedDir string) *Store {
	return &Store{
		sharedDir: sharedDir,
		byName:    make(map[string]struct{}),
	}
}

// Expose makes sourcePath (file or directory) reachable under the shared
// directory via a symlink named after its base name. It returns the recorded
// exposure; the URL field holds only the percent-encoded public name — the
// coordinator joins it with the base address and slug.
func (s *Store) Expose(sourcePath string) (types.Exposure, error) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return types.Exposure{}, fmt.Errorf("cannot resolve %s: %w", sourcePath, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return types.Exposure{}, fmt.Errorf("cannot expose %s: %w", sourcePath, err)
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return types.Exposure{}, fmt.Errorf("cannot expose %s: no usable base name", sourcePath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[name]; taken {
		return types.Exposure{}, fmt.Errorf("%q: %w", name, ErrNameConflict)
	}
	link := filepath.Join(s.sharedDir, name)
	if _, err := os.Lstat(link); err == nil {
		// leftover from outside the store counts as taken too
		return types.Exposure{}, fmt.Errorf("%q: %w", name, ErrNameConflict)
	}
	if err := os.Symlink(abs, link); err != nil {
		return types.Exposure{}, fmt.Errorf("cannot link %s: %w", sourcePath, err)
	}

	entry := types.Exposure{
		ID:         tool.GenerateRandomUUID(),
		PublicName: name,
		SourcePath: abs,
		URL:        tool.EncodePublicName(name),
	}
	s.entries = append(s.entries, entry)
	s.byName[name] = struct{}{}
	return entry, nil
}

// ClearAll removes every link entry from the shared directory. Source paths
// are untouched. Called on the stop-sharing transition, before the tunnel is
// torn down, so nothing stays link-reachable afterwards.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, entry := range s.entries {
		link := filepath.Join(s.sharedDir, entry.PublicName)
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("cannot unlink %s: %w", entry.PublicName, err))
		}
	}
	s.entries = nil
	s.byName = make(map[string]struct{})
	return errors.Join(errs...)
}

// Entries returns a snapshot of the current exposures in insertion order.
func (s *Store) Entries() []types.Exposure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Exposure, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of live exposures.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

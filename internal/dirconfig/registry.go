package dirconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry holds the current set of directory profiles. It is safe for
// concurrent use; the watcher swaps contents wholesale on reload.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: map[string]Profile{}}
}

// Get returns the profile for the directory, if known.
func (r *Registry) Get(directoryID string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[directoryID]
	return p, ok
}

// Len returns the number of loaded profiles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// IDs returns all known directory identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Replace swaps the full profile set.
func (r *Registry) Replace(profiles map[string]Profile) {
	r.mu.Lock()
	r.profiles = profiles
	r.mu.Unlock()
}

// Put inserts or updates a single profile.
func (r *Registry) Put(p Profile) {
	r.mu.Lock()
	r.profiles[p.DirectoryID] = p
	r.mu.Unlock()
}

// LoadDir parses every profile file (.yaml, .yml, .json) in dir. A file may
// hold a single profile or a list. Invalid profiles fail the whole load so a
// bad deploy never half-replaces the registry.
func LoadDir(dir string) (map[string]Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir: %w", err)
	}

	profiles := map[string]Profile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		parsed, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for _, p := range parsed {
			if _, dup := profiles[p.DirectoryID]; dup {
				return nil, fmt.Errorf("duplicate directory profile %q in %s", p.DirectoryID, name)
			}
			profiles[p.DirectoryID] = p
		}
	}
	return profiles, nil
}

func loadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}

	var (
		list   []Profile
		single Profile
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &list); err != nil {
			list = nil
			if err := json.Unmarshal(data, &single); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
			list = []Profile{single}
		}
	} else {
		if err := yaml.Unmarshal(data, &list); err != nil {
			list = nil
			if err := yaml.Unmarshal(data, &single); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
			list = []Profile{single}
		}
	}

	for i := range list {
		if err := list[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return list, nil
}

package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/trestle/pkg/domain"
	"gopkg.in/yaml.v3"
)

const ext = ".yaml"

// Store implements ports.ConfigStore using the local filesystem.
// Each profile is a YAML file in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".trestle/profiles".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".trestle", "profiles")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(profile string) (string, error) {
	if profile == "" {
		return "", fmt.Errorf("profile cannot be empty")
	}
	if strings.ContainsAny(profile, `/\`) || profile == "." || profile == ".." {
		return "", fmt.Errorf("invalid profile name %q", profile)
	}
	return filepath.Join(s.BasePath, profile+ext), nil
}

// Save writes the profile atomically.
// It writes to a temporary file first, syncs it, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, profile string, values map[string]any) error {
	destPath, err := s.path(profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure profile directory: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+profile+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer os.Remove(tmpName)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return fmt.Errorf("failed to rename profile file: %w", err)
	}
	return nil
}

// Load reads a profile.
func (s *Store) Load(ctx context.Context, profile string) (map[string]any, error) {
	p, err := s.path(profile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return values, nil
}

// Delete removes the profile file.
func (s *Store) Delete(ctx context.Context, profile string) error {
	p, err := s.path(profile)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete profile file: %w", err)
	}
	return nil
}

// List returns the stored profile names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var profiles []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		profiles = append(profiles, strings.TrimSuffix(name, ext))
	}
	sort.Strings(profiles)
	return profiles, nil
}

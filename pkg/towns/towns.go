// Package towns maps human town names to the opaque hashes the feed endpoint expects.
package towns

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxSuggestions caps Suggest results.
const MaxSuggestions = 10

// Town is one registry entry.
type Town struct {
	Name string `json:"name" yaml:"name"`
	Hash string `json:"hash" yaml:"hash"`
}

type registryFile struct {
	Towns []Town `json:"towns" yaml:"towns"`
}

// Registry is an immutable, loaded town list. It is safe for concurrent use.
type Registry struct {
	towns  []Town
	byName map[string]Town
}

// Load reads a registry from a YAML or JSON file.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("towns file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open towns file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read towns file: %w", err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes registry bytes. ext selects the decoder (".yaml", ".yml",
// ".json"); an empty ext tries each in turn.
func Parse(data []byte, ext string) (*Registry, error) {
	file, err := decodeFile(data, ext)
	if err != nil {
		return nil, err
	}
	return New(file.Towns)
}

// New validates entries and builds a registry from them.
func New(entries []Town) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New("towns registry contains no entries")
	}

	reg := &Registry{
		towns:  make([]Town, 0, len(entries)),
		byName: make(map[string]Town, len(entries)),
	}
	for i, t := range entries {
		t = sanitizeTown(t)
		if err := validateTown(t); err != nil {
			return nil, fmt.Errorf("town[%d]: %w", i, err)
		}
		key := normalizeName(t.Name)
		if _, exists := reg.byName[key]; exists {
			return nil, fmt.Errorf("duplicate town name %q", t.Name)
		}
		reg.byName[key] = t
		reg.towns = append(reg.towns, t)
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func decodeFile(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file registryFile
		if err := d.fn(data, &file); err != nil {
			lastErr = fmt.Errorf("decode %s towns: %w", d.name, err)
			continue
		}
		return file, nil
	}
	if lastErr != nil {
		return registryFile{}, lastErr
	}
	return registryFile{}, errors.New("towns file format not recognized (expected YAML or JSON)")
}

func sanitizeTown(t Town) Town {
	t.Name = strings.TrimSpace(t.Name)
	t.Hash = strings.TrimSpace(t.Hash)
	return t
}

func validateTown(t Town) error {
	if t.Name == "" {
		return errors.New("name is required")
	}
	if t.Hash == "" {
		return fmt.Errorf("hash is required for town %q", t.Name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HashFor returns the hash for a town name. Matching ignores case and
// surrounding whitespace.
func (r *Registry) HashFor(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	t, ok := r.byName[normalizeName(name)]
	if !ok {
		return "", false
	}
	return t.Hash, true
}

// Suggest returns up to MaxSuggestions town names starting with prefix,
// case-insensitively, in registry order. A blank prefix yields nothing.
func (r *Registry) Suggest(prefix string) []string {
	prefix = normalizeName(prefix)
	if r == nil || prefix == "" {
		return nil
	}
	var out []string
	for _, t := range r.towns {
		if strings.HasPrefix(strings.ToLower(t.Name), prefix) {
			out = append(out, t.Name)
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}

// Names returns all town names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.towns))
	for _, t := range r.towns {
		out = append(out, t.Name)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of towns.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.towns)
}

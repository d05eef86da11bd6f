// Package seed provides the mock data set: the records every mock-mode
// collection starts with and the console accounts of the local
// authenticator.
//
// The default set is embedded. Operators can layer their own YAML files on
// top with LoadDir; a record whose id already exists replaces the embedded
// one.
package seed

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/regdesk/pkg/domain"
)

//go:embed data/*.yaml
var embedded embed.FS

// Account is a seeded console user with a plain-text password. The
// authenticator hashes the password on load.
type Account struct {
	domain.User `yaml:",inline"`
	Password    string `yaml:"password"`
}

// Set is a complete mock data set.
type Set struct {
	Licenses    []domain.License   `yaml:"licenses"`
	Vehicles    []domain.Vehicle   `yaml:"vehicles"`
	Violations  []domain.Violation `yaml:"violations"`
	Authorities []domain.Authority `yaml:"authorities"`
	News        []domain.News      `yaml:"news"`
	Users       []Account          `yaml:"users"`
}

// Default returns the embedded data set.
func Default() (*Set, error) {
	entries, err := fs.Glob(embedded, "data/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	set := &Set{}
	for _, name := range entries {
		data, err := embedded.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := set.decode(data, name); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// MustDefault is Default for tests and static initialisation.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// LoadDir merges every *.yaml and *.yml file under dir, recursively and in
// lexical path order, over s. A missing directory is not an error.
func (s *Set) LoadDir(dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	var files []string
	for _, pattern := range []string{"**/*.yaml", "**/*.yml"} {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("expanding seed glob: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading seed file: %w", err)
		}
		if err := s.decode(data, path); err != nil {
			return err
		}
	}
	return nil
}

// decode merges one YAML document stream into s.
func (s *Set) decode(data []byte, name string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var part Set
		err := dec.Decode(&part)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parsing seed file %s: %w", name, err)
		}
		s.Merge(&part)
	}
}

// Merge adds other's records to s. Records whose id is already present
// replace the existing record in place.
func (s *Set) Merge(other *Set) {
	s.Licenses = merge(s.Licenses, other.Licenses, func(l domain.License) string { return l.ID })
	s.Vehicles = merge(s.Vehicles, other.Vehicles, func(v domain.Vehicle) string { return v.ID })
	s.Violations = merge(s.Violations, other.Violations, func(v domain.Violation) string { return v.ID })
	s.Authorities = merge(s.Authorities, other.Authorities, func(a domain.Authority) string { return a.ID })
	s.News = merge(s.News, other.News, func(n domain.News) string { return n.ID })
	s.Users = merge(s.Users, other.Users, func(a Account) string { return a.ID })
}

func merge[T any](dst, src []T, id func(T) string) []T {
	pos := make(map[string]int, len(dst))
	for i, row := range dst {
		pos[id(row)] = i
	}
	for _, row := range src {
		if i, ok := pos[id(row)]; ok {
			dst[i] = row
			continue
		}
		pos[id(row)] = len(dst)
		dst = append(dst, row)
	}
	return dst
}

// Normalize fills the timestamps seed files usually omit: updated_at
// defaults to created_at.
func (s *Set) Normalize() {
	for i := range s.Licenses {
		if s.Licenses[i].UpdatedAt.IsZero() {
			s.Licenses[i].UpdatedAt = s.Licenses[i].CreatedAt
		}
	}
	for i := range s.Vehicles {
		if s.Vehicles[i].UpdatedAt.IsZero() {
			s.Vehicles[i].UpdatedAt = s.Vehicles[i].CreatedAt
		}
	}
	for i := range s.Violations {
		if s.Violations[i].UpdatedAt.IsZero() {
			s.Violations[i].UpdatedAt = s.Violations[i].CreatedAt
		}
	}
	for i := range s.Authorities {
		if s.Authorities[i].UpdatedAt.IsZero() {
			s.Authorities[i].UpdatedAt = s.Authorities[i].CreatedAt
		}
	}
	for i := range s.News {
		if s.News[i].UpdatedAt.IsZero() {
			s.News[i].UpdatedAt = s.News[i].CreatedAt
		}
	}
}

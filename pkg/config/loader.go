package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/regdesk/pkg/store"
)

// LocalConfigFileNames are the names searched for in the working directory.
var LocalConfigFileNames = []string{".regdeskrc.yaml", ".regdeskrc.yml"}

// GlobalConfigFileNames are the names searched for in the config directory.
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// ConfigError is a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, column %d): %s", e.Path, e.Line, e.Column, e.Message)
	}
	return e.Path + ": " + e.Message
}

// Options controls Load. Zero values use the process environment.
type Options struct {
	// Path is an explicit config file. When set, the local file is skipped
	// and a missing file is an error.
	Path string
	// Dir is the directory searched for the local file. Defaults to the
	// working directory.
	Dir string
	// GlobalDir is the directory searched for the global file. Defaults to
	// the per-user config directory.
	GlobalDir string
	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load resolves defaults, config files and environment variables. Flags are
// applied afterwards by the caller with Set and SourceFlag.
func Load(opts Options) (*Config, error) {
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.GlobalDir == "" {
		opts.GlobalDir = store.DefaultConfigDir()
	}
	if opts.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.Dir = wd
	}

	cfg := NewDefault()

	if path := find(opts.GlobalDir, GlobalConfigFileNames); path != "" {
		if err := cfg.LoadFile(path, SourceGlobal); err != nil {
			return nil, err
		}
	}

	if opts.Path != "" {
		if err := cfg.LoadFile(opts.Path, SourceFile); err != nil {
			return nil, err
		}
	} else if path := find(opts.Dir, LocalConfigFileNames); path != "" {
		if err := cfg.LoadFile(path, SourceLocal); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadEnv(opts.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// find returns the first existing file named in names under dir.
func find(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadFile merges the YAML file at path. Only keys present in the file are
// applied, so an explicit false or zero overrides earlier layers.
func (c *Config) LoadFile(path, source string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConfigError{Path: path, Message: "file not found"}
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ConfigError{Path: path, Message: err.Error()}
	}
	if len(doc.Content) == 0 {
		c.Files = append(c.Files, path)
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ConfigError{Path: path, Line: root.Line, Column: root.Column, Message: "expected a mapping of settings"}
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return &ConfigError{Path: path, Line: v.Line, Column: v.Column, Message: fmt.Sprintf("%s must be a scalar", k.Value)}
		}
		if err := c.Set(k.Value, v.Value, source); err != nil {
			return &ConfigError{Path: path, Line: k.Line, Column: k.Column, Message: err.Error()}
		}
	}
	c.Files = append(c.Files, path)
	return nil
}

// LoadEnv applies environment variables. When a key has several variables
// the first one set wins. Empty variables count as unset.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	for _, f := range fields {
		for _, name := range f.env {
			v, ok := lookup(name)
			if !ok || v == "" {
				continue
			}
			if err := c.Set(f.key, v, SourceEnv); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			break
		}
	}
	return nil
}

// Save writes the settings that did not come from defaults, env or flags to
// path as YAML.
func (c *Config) Save(path string) error {
	out := map[string]string{}
	for _, f := range fields {
		switch c.Source(f.key) {
		case SourceDefault, SourceEnv, SourceFlag:
			continue
		}
		out[f.key] = f.get(c)
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

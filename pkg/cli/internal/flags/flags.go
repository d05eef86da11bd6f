// Package flags provides reusable flag types for CLI commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/getmockd/regdesk/pkg/cli/internal/parse"
)

// Pairs implements pflag.Value for repeatable key=value flags such as
// --filter status=active. Later values for a key win; order is kept.
type Pairs struct {
	Keys   []string
	Values map[string]string
}

// String returns the pairs joined by commas.
func (p *Pairs) String() string {
	out := make([]string, len(p.Keys))
	for i, k := range p.Keys {
		out[i] = k + "=" + p.Values[k]
	}
	return strings.Join(out, ",")
}

// Set parses one key=value pair.
func (p *Pairs) Set(value string) error {
	key, val, ok := parse.KeyValue(value, '=')
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	if _, seen := p.Values[key]; !seen {
		p.Keys = append(p.Keys, key)
	}
	p.Values[key] = strings.TrimSpace(val)
	return nil
}

// Type specifies the type label for Cobra flags.
func (p *Pairs) Type() string {
	return "key=value"
}

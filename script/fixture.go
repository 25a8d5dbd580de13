package script

import (
	"os"

	"gopkg.in/yaml.v3"

	"cortexdbg/cortexerr"
)

// Event is one recorded command and the output it produced, the unit a
// Fixture is built from - analogous to the original implementation's
// DebugEvent, generalized from a single Halted variant to any
// command/output pair a CLI session can produce.
type Event struct {
	Command string `yaml:"command"`
	Output  string `yaml:"output"`
}

// Fixture is a named, ordered sequence of Events: one scribed session.
type Fixture struct {
	Name   string  `yaml:"name"`
	Events []Event `yaml:"events"`
}

// Load reads a YAML fixture file.
func Load(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, cortexerr.Errorf("script: reading fixture %s: %w", path, err)
	}

	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, cortexerr.Errorf("script: decoding fixture %s: %w", path, err)
	}
	return &f, nil
}

// Save writes f to path as YAML, overwriting any existing file.
func Save(path string, f *Fixture) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return cortexerr.Errorf("script: encoding fixture: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return cortexerr.Errorf("script: writing fixture %s: %w", path, err)
	}
	return nil
}

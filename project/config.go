package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".madlib.yaml"

type Config struct {
	SourceDirs []string  `yaml:"source_dirs"`
	Extensions []string  `yaml:"extensions"`
	Ignore     []string  `yaml:"ignore"`
	Log        LogConfig `yaml:"log"`
	LSP        LSPConfig `yaml:"lsp"`
	UI         UIConfig  `yaml:"ui"`
}

type LogConfig struct {
	// Verbosity follows commonlog: 0 is errors only, each step adds a level.
	Verbosity int    `yaml:"verbosity"`
	File      string `yaml:"file"`
}

type LSPConfig struct {
	// Debounce delays publishing diagnostics after a change.
	Debounce        time.Duration `yaml:"debounce"`
	PublishOnChange bool          `yaml:"publish_on_change"`
	PollInterval    time.Duration `yaml:"poll_interval"`
}

type UIConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		SourceDirs: []string{"."},
		Extensions: []string{".mad"},
		Ignore:     []string{"node_modules/", ".git/"},
		LSP: LSPConfig{
			Debounce:        150 * time.Millisecond,
			PublishOnChange: true,
			PollInterval:    time.Second,
		},
		UI: UIConfig{Addr: ":8080"},
	}
}

// ParseConfig decodes a .madlib.yaml document on top of the defaults.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.SourceDirs) == 0 {
		return fmt.Errorf("config: source_dirs must not be empty")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("config: extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("config: extension %q must start with a dot", ext)
		}
	}
	if c.LSP.Debounce < 0 || c.LSP.PollInterval < 0 {
		return fmt.Errorf("config: durations must not be negative")
	}
	return nil
}

// Marshal renders the config as YAML, as written by `madlib init`.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

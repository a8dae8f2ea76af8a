package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	PassConfig struct {
		Ignore []string `yaml:"ignore" validate:"dive,required"`
	}

	NormalizeConfig struct {
		Passes   []string   `yaml:"passes" validate:"min=1,unique,dive,oneof=explode defaults units"`
		Explode  PassConfig `yaml:"explode"`
		Defaults PassConfig `yaml:"defaults"`
		Units    PassConfig `yaml:"units"`
	}

	InputConfig struct {
		Extensions []string `yaml:"extensions" validate:"min=1,dive,startswith=."`
		Charset    string   `yaml:"charset"`
	}

	OutputConfig struct {
		Indent    string `yaml:"indent"`
		Extension string `yaml:"extension" validate:"omitempty,startswith=."`
		Overwrite bool   `yaml:"overwrite"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Normalize NormalizeConfig `yaml:"normalize"`
		Input     InputConfig     `yaml:"input"`
		Output    OutputConfig    `yaml:"output"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

// Ignore returns list of properties configured to be left alone by the pass.
func (conf *NormalizeConfig) Ignore(pass string) []string {
	switch strings.ToLower(pass) {
	case "explode":
		return conf.Explode.Ignore
	case "defaults":
		return conf.Defaults.Ignore
	case "units":
		return conf.Units.Ignore
	}
	return nil
}

// IsStylesheet reports whether file name has one of configured extensions.
func (conf *InputConfig) IsStylesheet(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range conf.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads configuration from the file at path and overlays it
// on top of the expanded embedded template, so every value not present in the
// file keeps its default. Result is sanitized and validated.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

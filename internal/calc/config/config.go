// Package config provides configuration file support for llm-calc.
// YAML (.yaml, .yml) and TOML (.toml) files are accepted; only the "calc"
// section is read.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/samestrin/llm-calc/internal/calc/formula"
	"github.com/samestrin/llm-calc/pkg/calculator"
)

// EnvConfigPath names the environment variable consulted when --config is not given
const EnvConfigPath = "LLM_CALC_CONFIG"

// DefaultConcurrency is used by batch evaluation when neither flag nor config set it
const DefaultConcurrency = 4

// OperationConfig defines one formula operation
type OperationConfig struct {
	Name        string `yaml:"name" toml:"name"`
	Formula     string `yaml:"formula" toml:"formula"`
	Description string `yaml:"description" toml:"description"`
}

// CalcConfig represents the "calc" section of a config file
type CalcConfig struct {
	History     string            `yaml:"history" toml:"history"`
	Concurrency int               `yaml:"concurrency" toml:"concurrency"`
	Operations  []OperationConfig `yaml:"operations" toml:"operations"`
}

// configWrapper is used to parse the "calc" section from a file.
// Section is a pointer so a missing section can be told apart from an empty one.
type configWrapper struct {
	Calc *CalcConfig `yaml:"calc" toml:"calc"`
}

// LoadConfig loads calc configuration from a YAML or TOML file.
func LoadConfig(path string) (*CalcConfig, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return nil, ErrConfigPathEmpty()
	}

	ext := strings.ToLower(filepath.Ext(trimmedPath))
	if ext != ".yaml" && ext != ".yml" && ext != ".toml" {
		return nil, ErrConfigUnsupportedFormat(trimmedPath, ext)
	}

	data, err := os.ReadFile(trimmedPath)
	if err != nil {
		return nil, WrapReadError(trimmedPath, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrConfigEmpty(trimmedPath)
	}

	var wrapper configWrapper
	if ext == ".toml" {
		if _, err := toml.Decode(string(data), &wrapper); err != nil {
			return nil, ErrConfigInvalidTOML(trimmedPath, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &wrapper); err != nil {
			return nil, ErrConfigInvalidYAML(trimmedPath, err)
		}
	}

	if wrapper.Calc == nil {
		return nil, ErrConfigMissingSection(trimmedPath)
	}

	return wrapper.Calc, nil
}

// Formulas compiles the configured operations.
// Names are normalised with calculator.ParseOperation; built-ins may be overridden.
func (c *CalcConfig) Formulas() ([]*formula.Formula, error) {
	formulas := make([]*formula.Formula, 0, len(c.Operations))
	seen := make(map[calculator.Operation]bool, len(c.Operations))

	for _, oc := range c.Operations {
		name := calculator.ParseOperation(oc.Name)
		if name == "" {
			return nil, ErrInvalidOperation(oc.Name, fmt.Errorf("operation name is required"))
		}
		if seen[name] {
			return nil, ErrInvalidOperation(string(name), fmt.Errorf("defined more than once"))
		}
		seen[name] = true

		f, err := formula.Compile(name, oc.Formula, oc.Description)
		if err != nil {
			return nil, ErrInvalidOperation(string(name), err)
		}
		formulas = append(formulas, f)
	}

	return formulas, nil
}

// Registry returns the default registry extended with the configured formulas.
// A nil config yields the default registry.
func (c *CalcConfig) Registry() (calculator.Registry, error) {
	registry := calculator.DefaultRegistry()
	if c == nil {
		return registry, nil
	}

	formulas, err := c.Formulas()
	if err != nil {
		return nil, err
	}
	return formula.Register(registry, formulas...), nil
}

// Describe returns the description of a configured operation, if any
func (c *CalcConfig) Describe(op calculator.Operation) (OperationConfig, bool) {
	if c == nil {
		return OperationConfig{}, false
	}
	for _, oc := range c.Operations {
		if calculator.ParseOperation(oc.Name) == op {
			return oc, true
		}
	}
	return OperationConfig{}, false
}

// ResolvePath returns the explicit path if non-empty, otherwise the environment value.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvConfigPath)
}

// ResolveValue returns the explicit value if non-empty, otherwise the config value.
// This implements the precedence: explicit > config > default.
func ResolveValue(explicit, configValue string) string {
	if explicit != "" {
		return explicit
	}
	return configValue
}

// ResolveIntValue returns the first non-zero value from explicit, config, or default.
func ResolveIntValue(explicit, configValue, defaultValue int) int {
	if explicit != 0 {
		return explicit
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

var builtinDescriptions = map[calculator.Operation]string{
	calculator.Add:      "a plus b",
	calculator.Subtract: "a minus b",
	calculator.Multiply: "a times b",
	calculator.Divide:   "a divided by b; fails when b is zero",
}

// OperationInfo describes one registered operation
type OperationInfo struct {
	Name        calculator.Operation `json:"name"`
	Symbol      string               `json:"symbol,omitempty"`
	Builtin     bool                 `json:"builtin"`
	Formula     string               `json:"formula,omitempty"`
	Description string               `json:"description,omitempty"`
}

// Catalog describes every operation in the registry built from c, in
// Registry.Operations order. A configured formula overriding a built-in is
// reported as a formula.
func (c *CalcConfig) Catalog() ([]OperationInfo, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, err
	}

	ops := registry.Operations()
	infos := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		info := OperationInfo{Name: op}
		if op.IsBuiltin() {
			info.Symbol = op.Symbol()
		}
		if oc, ok := c.Describe(op); ok {
			info.Formula = oc.Formula
			info.Description = oc.Description
		} else if op.IsBuiltin() {
			info.Builtin = true
			info.Description = builtinDescriptions[op]
		}
		infos = append(infos, info)
	}
	return infos, nil
}

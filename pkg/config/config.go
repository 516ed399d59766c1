package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/looprank/pkg/logging"
	"github.com/ritzau/looprank/pkg/looprank"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when no --config is given
const DefaultFile = "looprank.toml"

const envPrefix = "LOOPRANK_"

// Data types of a case
const (
	DataFile     = "file"
	DataFunction = "function"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	Case        string                    `koanf:"case"`
	CaseDir     string                    `koanf:"casedir"`
	SaveDir     string                    `koanf:"savedir"`
	DataType    string                    `koanf:"datatype"`
	Scenarios   []string                  `koanf:"scenarios"`
	Methods     []string                  `koanf:"methods"`
	Damping     float64                   `koanf:"damping"`
	Alpha       float64                   `koanf:"alpha"`
	Dummies     bool                      `koanf:"dummies"`
	DummyWeight float64                   `koanf:"dummyweight"`
	Top         int                       `koanf:"top"`
	Write       bool                      `koanf:"write"`
	Overwrite   bool                      `koanf:"overwrite"`
	Jobs        int                       `koanf:"jobs"`
	DB          string                    `koanf:"db"`
	Metrics     string                    `koanf:"metrics"`
	JSON        bool                      `koanf:"json"`
	Verbosity   string                    `koanf:"verbosity"`
	VerboseCnt  int                       `koanf:"verbose"`
	Scenario    map[string]ScenarioConfig `koanf:"scenario"`
}

// ScenarioConfig says where the data of one scenario comes from. File cases
// name a connection matrix, function cases a network generator.
type ScenarioConfig struct {
	Connections string `koanf:"connections"`
	NetworkGen  string `koanf:"networkgen"`
}

// RegisterFlags adds the command line flags that Load understands
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config", DefaultFile, "Path to the TOML configuration file")
	f.String("case", "", "Name of the case to rank")
	f.String("casedir", ".", "Directory holding one data directory per case")
	f.String("savedir", "results", "Directory results are written to")
	f.String("datatype", DataFile, "Where matrices come from: file or function")
	f.StringSlice("scenarios", nil, "Scenarios to rank")
	f.StringSlice("methods", nil, "Gain calculation methods to rank")
	f.Float64P("damping", "m", 0.99, "Weight of the gains against the uniform reset")
	f.Float64("alpha", 0.5, "Weight of the backward ranking in the blend")
	f.Bool("dummies", true, "Add dummy sinks to nodes with a single outgoing edge")
	f.Float64("dummyweight", 0, "Gain of dummy edges, 0 uses the mean gain of each box")
	f.Int("top", 10, "Number of variables to print per ranking, 0 prints all")
	f.BoolP("write", "w", false, "Write rankings and graphs to savedir")
	f.Bool("overwrite", false, "Rank again even when results exist")
	f.IntP("jobs", "j", 1, "Scenario and method combinations ranked in parallel")
	f.String("db", "", "SQLite database to store rankings in")
	f.String("metrics", "", "Write Prometheus metrics to this textfile")
	f.Bool("json", false, "Log in JSON format")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.CountP("verbose", "v", "Increase log verbosity")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"casedir":     ".",
		"savedir":     "results",
		"datatype":    DataFile,
		"damping":     0.99,
		"alpha":       0.5,
		"dummies":     true,
		"dummyweight": 0.0,
		"top":         10,
		"write":       false,
		"overwrite":   false,
		"jobs":        1,
		"db":          "",
		"metrics":     "",
		"json":        false,
		"verbosity":   "",
		"verbose":     0,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File. Only an explicitly named file has to exist.
	path, explicit := DefaultFile, false
	if f != nil && f.Lookup("config") != nil {
		path, _ = f.GetString("config")
		explicit = f.Changed("config")
	}
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil && explicit {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	// 3. Environment Variables
	// Prefix: LOOPRANK_ (e.g., LOOPRANK_DAMPING=0.85)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// parserFor picks the koanf parser matching the config file extension
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, filepath.Ext(path))
	}
}

// Validate checks that the configuration describes a runnable case
func (c *Config) Validate() error {
	switch c.DataType {
	case DataFile, DataFunction:
	default:
		return fmt.Errorf("%w: datatype %q", ErrInvalid, c.DataType)
	}
	if c.Case == "" {
		return fmt.Errorf("%w: no case given", ErrInvalid)
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios given", ErrInvalid)
	}
	if c.DataType == DataFile && len(c.Methods) == 0 {
		return fmt.Errorf("%w: file cases need at least one method", ErrInvalid)
	}
	if c.Damping < 0 || c.Damping > 1 {
		return fmt.Errorf("%w: damping %g outside [0, 1]", ErrInvalid, c.Damping)
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha %g outside [0, 1]", ErrInvalid, c.Alpha)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1", ErrInvalid)
	}
	if c.DummyWeight < 0 {
		return fmt.Errorf("%w: negative dummy weight", ErrInvalid)
	}
	for _, name := range c.Scenarios {
		sc := c.Scenario[name]
		if c.DataType == DataFile && sc.Connections == "" {
			return fmt.Errorf("%w: scenario %q has no connections file", ErrInvalid, name)
		}
		if c.DataType == DataFunction && sc.NetworkGen == "" {
			return fmt.Errorf("%w: scenario %q has no network generator", ErrInvalid, name)
		}
	}
	return nil
}

// Options returns the ranking options
func (c *Config) Options() looprank.Options {
	return looprank.Options{
		Damping:     c.Damping,
		Alpha:       c.Alpha,
		Dummies:     c.Dummies,
		DummyWeight: c.DummyWeight,
	}
}

// LogLevel resolves the log level. An explicit verbosity wins over -v flags.
func (c *Config) LogLevel() slog.Level {
	if c.Verbosity != "" {
		return logging.ParseLevel(c.Verbosity)
	}
	switch {
	case c.VerboseCnt >= 2:
		return logging.LevelTrace
	case c.VerboseCnt == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Connections maps every scenario to its connections file
func (c *Config) Connections() map[string]string {
	m := make(map[string]string, len(c.Scenario))
	for name, sc := range c.Scenario {
		m[name] = sc.Connections
	}
	return m
}

// NetworkGens maps every scenario to its network generator
func (c *Config) NetworkGens() map[string]string {
	m := make(map[string]string, len(c.Scenario))
	for name, sc := range c.Scenario {
		m[name] = sc.NetworkGen
	}
	return m
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

// Package config loads the YAML configuration that governs how cmd/cakes
// builds a tree and which algorithms it searches with: dataset backing,
// metric, partition-criteria parameters, default search algorithms, and
// server/logging settings. Mirrors the teacher's internal/config package:
// a //go:embed default, an XDG-style resolution order, and a Load that
// applies defaults before unmarshaling.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Config is the top-level configuration for building and searching a
// cakes index.
type Config struct {
	Dataset   Dataset   `yaml:"dataset"`
	Partition Partition `yaml:"partition"`
	Search    Search    `yaml:"search"`
	Output    Output    `yaml:"output"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

// Dataset selects the backing and metric the CLI builds a tree over.
type Dataset struct {
	// Kind is "vector" or "string".
	Kind string `yaml:"kind"`
	// Metric names a metric.VectorMetric or metric.StringMetric entry. For vector datasets:
	// euclidean, euclideansq, manhattan, cosine, hamming. For string
	// datasets: levenshtein.
	Metric string `yaml:"metric"`
	// Expensive hints whether the metric should be treated as expensive
	// for fan-out parallelization, regardless of the metric's usual
	// default.
	Expensive bool `yaml:"expensive"`
	// Cache enables the RWMutex-guarded one_to_one distance cache.
	Cache bool `yaml:"cache"`
	// Seed is the root seed propagated to sub-sampling during Build.
	Seed int64 `yaml:"seed"`
}

// Partition configures the PartitionCriteria used to build a tree.
type Partition struct {
	Strict         bool    `yaml:"strict"`
	MaxDepth       int     `yaml:"max_depth"`
	MinCardinality int     `yaml:"min_cardinality"`
	MinRadius      float64 `yaml:"min_radius"`
	// Parallel forks left/right subtrees during partition.
	Parallel bool `yaml:"parallel"`
}

// Search sets the default algorithms the CLI dispatches to when its
// --algo flag is not given.
type Search struct {
	RnnAlgorithm string `yaml:"rnn_algorithm"`
	KnnAlgorithm string `yaml:"knn_algorithm"`
}

// Output configures where the CLI writes reports. This engine has no
// persistence of its own beyond the reorder permutation (out of the core's
// scope), so DataDir is kept only for layout parity with the teacher.
type Output struct {
	DataDir string `yaml:"data_dir"`
}

// Server configures the demo HTTP server. Port is used when the serve
// command's --port flag is not given.
type Server struct {
	Port int `yaml:"port"`
}

// Logging holds a log level name. The CLI does not read it; log output
// detail is set only by the --verbose flag.
type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for cakes.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "cakes")
}

// DataDir returns the XDG data directory for cakes.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "cakes")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/cakes/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'cakes init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Dataset: Dataset{
			Kind:   "vector",
			Metric: "euclidean",
			Seed:   0,
		},
		Partition: Partition{
			Strict:         false,
			MaxDepth:       0,
			MinCardinality: 1,
			MinRadius:      0,
			Parallel:       true,
		},
		Search: Search{
			RnnAlgorithm: "clustered",
			KnnAlgorithm: "repeated-rnn",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

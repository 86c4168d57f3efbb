package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix, e.g. FLATDB_ROOT
const EnvPrefix = "FLATDB"

// Config holds flatdb configuration
type Config struct {
	Root    string        `mapstructure:"root"`
	Query   QueryConfig   `mapstructure:"query"`
	Chunk   ChunkConfig   `mapstructure:"chunk"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// QueryConfig controls the query engine
type QueryConfig struct {
	MemoryBudget int64 `mapstructure:"memory_budget"`
	BatchSize    int   `mapstructure:"batch_size"`
}

// ChunkConfig controls the chunk splitter
type ChunkConfig struct {
	SampleSize   int    `mapstructure:"sample_size"`
	Codec        string `mapstructure:"codec"`
	RepeatHeader bool   `mapstructure:"repeat_header"`
}

// OutputConfig controls result rendering
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the prometheus listener
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Root: "./data",
		Query: QueryConfig{
			MemoryBudget: 1_000_000,
			BatchSize:    50,
		},
		Chunk: ChunkConfig{
			SampleSize: 10,
			Codec:      "none",
		},
		Output: OutputConfig{Format: "table"},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load fills target from defaults, an optional config file and
// environment variables, in increasing priority.
// prefix: environment variable prefix (e.g. "FLATDB")
// file: path to a yaml/toml/json config file, empty to skip
func Load(prefix, file string, target *Config) error {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("query.memory_budget", defaults.Query.MemoryBudget)
	v.SetDefault("query.batch_size", defaults.Query.BatchSize)
	v.SetDefault("chunk.sample_size", defaults.Chunk.SampleSize)
	v.SetDefault("chunk.codec", defaults.Chunk.Codec)
	v.SetDefault("chunk.repeat_header", defaults.Chunk.RepeatHeader)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("metrics.addr", defaults.Metrics.Addr)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	// FLATDB_QUERY_MEMORY_BUDGET -> query.memory_budget
	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

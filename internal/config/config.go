package config

import "runtime"

// Config represents the complete codecontext configuration.
// It can be loaded from .codecontext/config.yml with environment variable overrides.
type Config struct {
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// ScanConfig defines which files are analyzed.
type ScanConfig struct {
	Extensions  []string `yaml:"extensions" mapstructure:"extensions"`       // recognized source extensions, with leading dot
	Exclude     []string `yaml:"exclude" mapstructure:"exclude"`             // path substrings that exclude a file or directory
	Ignore      []string `yaml:"ignore" mapstructure:"ignore"`               // glob patterns relative to the root
	MaxFileSize int64    `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes; larger files are skipped
}

// AnalysisConfig tunes the analysis pipeline.
type AnalysisConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`               // concurrent file analyses
	CacheCapacity int `yaml:"cache_capacity" mapstructure:"cache_capacity"` // cached file results
}

// OutputConfig controls the report.
type OutputConfig struct {
	Format      string `yaml:"format" mapstructure:"format"` // "text", "json" or "yaml"
	Path        string `yaml:"path" mapstructure:"path"`     // empty means stdout
	Tree        bool   `yaml:"tree" mapstructure:"tree"`
	TreeDepth   int    `yaml:"tree_depth" mapstructure:"tree_depth"` // 0 means unlimited
	DependsList bool   `yaml:"dependencies" mapstructure:"dependencies"`
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions: []string{".js", ".jsx", ".ts", ".tsx", ".vue", ".mjs", ".cjs"},
			Exclude: []string{
				"node_modules",
				".git",
				"dist",
				"build",
				"coverage",
				".next",
				".nuxt",
			},
			Ignore: []string{
				"**/*.min.js",
				"**/*.d.ts.map",
			},
			MaxFileSize: 1 << 20,
		},
		Analysis: AnalysisConfig{
			Workers:       runtime.NumCPU(),
			CacheCapacity: 4096,
		},
		Output: OutputConfig{
			Format:      FormatText,
			Path:        "",
			Tree:        true,
			TreeDepth:   3,
			DependsList: true,
		},
	}
}

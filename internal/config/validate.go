package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidCacheCapacity indicates a negative cache capacity
	ErrInvalidCacheCapacity = errors.New("invalid cache capacity")

	// ErrEmptyExtensions indicates no source extensions are configured
	ErrEmptyExtensions = errors.New("empty extension list")

	// ErrInvalidGlob indicates an ignore pattern that does not compile
	ErrInvalidGlob = errors.New("invalid ignore pattern")

	// ErrInvalidMaxFileSize indicates a non-positive file size limit
	ErrInvalidMaxFileSize = errors.New("invalid max file size")

	// ErrInvalidTreeDepth indicates a negative tree depth
	ErrInvalidTreeDepth = errors.New("invalid tree depth")
)

// Validate checks that the configuration is valid and complete.
// Every problem found is reported, not just the first.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateScan(&cfg.Scan); err != nil {
		errs = append(errs, err)
	}

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateScan(cfg *ScanConfig) error {
	var errs []error

	if len(cfg.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one extension required", ErrEmptyExtensions))
	}

	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidGlob, pattern, err))
		}
	}

	if cfg.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must be positive, got %d", ErrInvalidMaxFileSize, cfg.MaxFileSize))
	}

	return errors.Join(errs...)
}

func validateAnalysis(cfg *AnalysisConfig) error {
	var errs []error

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	// Zero disables the result cache.
	if cfg.CacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_capacity cannot be negative, got %d", ErrInvalidCacheCapacity, cfg.CacheCapacity))
	}

	return errors.Join(errs...)
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Format) {
	case FormatText, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'text', 'json' or 'yaml', got '%s'", ErrInvalidFormat, cfg.Format))
	}

	if cfg.TreeDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: tree_depth cannot be negative, got %d", ErrInvalidTreeDepth, cfg.TreeDepth))
	}

	return errors.Join(errs...)
}

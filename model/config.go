package model

import "github.com/ilyakaznacheev/cleanenv"

// ResolverConfig represents configuration for entity resolution and
// duplicate scanning. The thresholds trade recall against false-merge
// risk and scan cost, so they are tunable rather than hard-coded.
type ResolverConfig struct {
	// FuzzyMatchThreshold is the minimum similarity score (exclusive)
	// for the fuzzy stage to accept an existing entity as a match.
	FuzzyMatchThreshold float64 `json:"fuzzy_match_threshold" env:"RESOLVER_FUZZY_THRESHOLD" env-default:"0.85"`

	// FuzzyScanLimit bounds the number of entities loaded for the
	// fuzzy-match scan.
	FuzzyScanLimit int `json:"fuzzy_scan_limit" env:"RESOLVER_FUZZY_SCAN_LIMIT" env-default:"500"`

	// DuplicateScanLimit bounds the sample size of the all-pairs
	// duplicate scan, which is O(n²) over the sample.
	DuplicateScanLimit int `json:"duplicate_scan_limit" env:"RESOLVER_DUPLICATE_SCAN_LIMIT" env-default:"500"`

	// DefaultImportance is assigned to newly created entities.
	DefaultImportance int `json:"default_importance" env:"RESOLVER_DEFAULT_IMPORTANCE" env-default:"5"`
}

// DefaultResolverConfig returns a sensible default configuration
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		FuzzyMatchThreshold: 0.85,
		FuzzyScanLimit:      500,
		DuplicateScanLimit:  500,
		DefaultImportance:   5,
	}
}

// NewResolverConfigFromEnv reads the resolver configuration from the
// environment, falling back to the defaults above.
func NewResolverConfigFromEnv() (*ResolverConfig, error) {
	config := &ResolverConfig{}
	err := cleanenv.ReadEnv(config)
	if err != nil {
		return nil, err
	}
	return config, nil
}

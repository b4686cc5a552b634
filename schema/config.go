package schema

import "strings"

// RunConfig defines defaults and limits for repository runs.
type RunConfig struct {
	MaxRepos        int
	DefaultRole     Role
	DefaultTemplate string
	LogCapacity     int
}

const (
	// DefaultMaxRepos is the safety limit on repositories per run.
	DefaultMaxRepos = 100
	// DefaultLogCapacity is the number of entries kept by the run log.
	DefaultLogCapacity = 1000
	// DefaultTemplate is the gitignore template applied when none is given.
	DefaultTemplate = "Python"
)

// NormalizeRunConfig applies defaults and validates the config.
func NormalizeRunConfig(cfg RunConfig) (RunConfig, error) {
	if cfg.MaxRepos <= 0 {
		cfg.MaxRepos = DefaultMaxRepos
	}
	if cfg.LogCapacity <= 0 {
		cfg.LogCapacity = DefaultLogCapacity
	}
	if strings.TrimSpace(cfg.DefaultTemplate) == "" {
		cfg.DefaultTemplate = DefaultTemplate
	}
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = DefaultRole
	}
	role, err := NormalizeRole(string(cfg.DefaultRole))
	if err != nil {
		return RunConfig{}, err
	}
	cfg.DefaultRole = role
	return cfg, nil
}

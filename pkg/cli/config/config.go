package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// AppConfig is the optional TOML configuration file. Every value is a default that
// an explicitly set command line flag overrides.
type AppConfig struct {
	Timezone   string           `toml:"timezone"`
	Extraction ExtractionConfig `toml:"extraction"`
	Query      QueryConfig      `toml:"query"`
	People     []Person         `toml:"person"`
}

type ExtractionConfig struct {
	BatchSize    int    `toml:"batch_size"`
	Overlap      *int   `toml:"overlap"`
	Direction    string `toml:"direction"`
	Concurrency  int    `toml:"concurrency"`
	ContextDepth *int   `toml:"context_depth"`
	Channel      string `toml:"channel"`
	Assigner     string `toml:"assigner"`
}

type QueryConfig struct {
	MaxRows             int     `toml:"max_rows"`
	DefaultRows         int     `toml:"default_rows"`
	RateLimit           *int    `toml:"rate_limit"`
	Timeout             string  `toml:"timeout"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Person is a `[[person]]` entry: a name and the aliases that refer to the same human
type Person struct {
	Name    string   `toml:"name"`
	Aliases []string `toml:"aliases"`
}

// Validate checks if the Person is valid
func (p *Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return goerr.Wrap(ErrMissingName, "person name is required")
	}
	for _, alias := range p.Aliases {
		if strings.TrimSpace(alias) == "" {
			return goerr.Wrap(ErrInvalidConfig, "person alias must not be empty", goerr.V(PersonNameKey, p.Name))
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Timezone != "" {
		if _, err := time.LoadLocation(a.Timezone); err != nil {
			return goerr.Wrap(ErrInvalidTimezone, err.Error(), goerr.V(TimezoneKey, a.Timezone))
		}
	}

	ex := a.Extraction
	if ex.BatchSize < 0 || ex.Concurrency < 0 {
		return goerr.Wrap(ErrInvalidConfig, "extraction batch_size and concurrency must not be negative")
	}
	if ex.Overlap != nil && *ex.Overlap < 0 {
		return goerr.Wrap(ErrInvalidConfig, "extraction overlap must not be negative")
	}
	if ex.ContextDepth != nil && *ex.ContextDepth < 0 {
		return goerr.Wrap(ErrInvalidConfig, "extraction context_depth must not be negative")
	}
	if ex.Direction != "" {
		if _, err := types.ParseDirection(ex.Direction); err != nil {
			return goerr.Wrap(ErrInvalidDirection, err.Error(), goerr.V("direction", ex.Direction))
		}
	}

	q := a.Query
	if q.MaxRows < 0 || q.DefaultRows < 0 {
		return goerr.Wrap(ErrInvalidConfig, "query row limits must not be negative")
	}
	if q.MaxRows > 0 && q.DefaultRows > q.MaxRows {
		return goerr.Wrap(ErrInvalidConfig, "query default_rows exceeds max_rows",
			goerr.V("default_rows", q.DefaultRows), goerr.V("max_rows", q.MaxRows))
	}
	if q.Timeout != "" {
		d, err := time.ParseDuration(q.Timeout)
		if err != nil || d <= 0 {
			return goerr.Wrap(ErrInvalidConfig, "query timeout must be a positive duration", goerr.V("timeout", q.Timeout))
		}
	}
	if q.SimilarityThreshold < 0 || q.SimilarityThreshold > 1 {
		return goerr.Wrap(ErrInvalidConfig, "similarity_threshold must be between 0 and 1",
			goerr.V("similarity_threshold", q.SimilarityThreshold))
	}

	// A name or alias may belong to one person only
	seen := make(map[string]string)
	for i, p := range a.People {
		if err := p.Validate(); err != nil {
			return goerr.Wrap(err, "invalid person", goerr.V(PersonIndexKey, i))
		}
		for _, n := range append([]string{p.Name}, p.Aliases...) {
			key := strings.ToLower(strings.TrimSpace(n))
			if owner, ok := seen[key]; ok && owner != p.Name {
				return goerr.Wrap(ErrDuplicatePerson, "name is claimed by two people",
					goerr.V(AliasKey, n), goerr.V(PersonNameKey, p.Name), goerr.V("other", owner))
			}
			seen[key] = p.Name
		}
	}

	return nil
}

// ToPeople converts `[[person]]` entries to domain people
func (a *AppConfig) ToPeople() []model.Person {
	if a == nil {
		return nil
	}
	people := make([]model.Person, len(a.People))
	for i, p := range a.People {
		people[i] = model.Person{Name: p.Name, Aliases: p.Aliases}
	}
	return people
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrMissingName      = goerr.New("name is required")
	ErrDuplicatePerson  = goerr.New("duplicate person name or alias")
	ErrInvalidTimezone  = goerr.New("invalid timezone")
	ErrInvalidDirection = goerr.New("invalid direction")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	PersonNameKey  = "person_name"
	PersonIndexKey = "person_index"
	AliasKey       = "alias"
	TimezoneKey    = "timezone"
)

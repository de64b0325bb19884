package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Timezone is the zone used for transcript timestamps and relative date phrases
type Timezone struct {
	name string
}

func (x *Timezone) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "IANA time zone for transcripts and relative dates",
			Value:       "UTC",
			Sources:     cli.EnvVars("TASKLENS_TIMEZONE"),
			Destination: &x.name,
		},
	}
}

// Location resolves the time zone; the file value applies unless --timezone was set
func (x *Timezone) Location(file *AppConfig, isSet func(name string) bool) (*time.Location, error) {
	name := x.name
	if file != nil && file.Timezone != "" && !isSet("timezone") {
		name = file.Timezone
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidTimezone, err.Error(), goerr.V(TimezoneKey, name))
	}
	return loc, nil
}

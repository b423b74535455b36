// Package appconf holds the application configuration and its environment
// loading. Scalar settings come from environment variables (a local .env file
// is honored); the geographic coverage can be overridden by a YAML file.
package appconf

import (
	"time"

	"tracker.transitlive.org/internal/utils"
)

// Environment is the deployment environment the server runs in.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Test:
		return "test"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the ENV variable to an Environment, defaulting
// to development for unknown values.
func EnvFlagToEnvironment(value string) Environment {
	switch value {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// DatasetCoverage is the query shape for one dataset: its bounding box and
// the upstream transit modes it covers.
type DatasetCoverage struct {
	Bounds utils.CoordinateBounds `yaml:"bounds"`
	Modes  []string               `yaml:"modes" validate:"required,min=1,dive,required"`
}

// Coverage is the geographic configuration for both datasets.
type Coverage struct {
	Train DatasetCoverage `yaml:"train"`
	Bus   DatasetCoverage `yaml:"bus"`
}

// Config is the full runtime configuration.
type Config struct {
	Port      int
	Env       Environment
	Verbose   bool
	RateLimit int // requests per second per client, 0 disables limiting

	UpstreamURL     string `validate:"required,url"`
	UpstreamTimeout time.Duration
	ProxyURL        string
	Headers         map[string]string

	FreshnessWindow time.Duration
	TripConcurrency int

	Coverage Coverage

	SentryDSN string
}

// DefaultCoverage is the Hungarian national rail and coach network: the MÁV
// OTP backend's coverage area. The coach box is the same region, split into
// quadrants at query time.
func DefaultCoverage() Coverage {
	hungary := utils.CoordinateBounds{SwLat: 45.74, SwLon: 16.11, NeLat: 48.58, NeLon: 22.90}
	return Coverage{
		Train: DatasetCoverage{
			Bounds: hungary,
			Modes:  []string{"RAIL", "RAIL_REPLACEMENT_BUS", "SUBURBAN_RAILWAY", "TRAMTRAIN"},
		},
		Bus: DatasetCoverage{
			Bounds: hungary,
			Modes:  []string{"COACH"},
		},
	}
}

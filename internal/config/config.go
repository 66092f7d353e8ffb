package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/era5land-etl/internal/domain"
)

// Config holds all converter settings, populated from environment variables.
type Config struct {
	InputRoot  string `env:"INPUT_ROOT" validate:"required"`
	OutputRoot string `env:"OUTPUT_ROOT" validate:"required"`

	// Inclusive date range for one-shot runs. Zero when SCHEDULE drives the range.
	StartDate time.Time `env:"START_DATE"`
	EndDate   time.Time `env:"END_DATE"`

	Categories    []domain.Category `env:"CATEGORIES" validate:"min=1"`
	ApplyEvapSwap bool              `env:"APPLY_EVAP_SWAP"`

	TilePrefix       string `env:"TILE_PREFIX" validate:"required"`
	TileExt          string `env:"TILE_EXT" validate:"required"`
	OutputPrefix     string `env:"OUTPUT_PREFIX" validate:"required"`
	OutputFormat     string `env:"OUTPUT_FORMAT" validate:"oneof=netcdf4 classic"`
	CompressionLevel int    `env:"COMPRESSION_LEVEL" validate:"min=1,max=9"`
	CreatedBy        string `env:"CREATED_BY"`
	ContactInfo      string `env:"CONTACT_INFO"`

	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	HTTPAddr        string        `env:"HTTP_ADDR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// Artifact notifications; disabled when no brokers are configured.
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" validate:"required_with=KafkaBrokers"`

	// Scheduled mode: each tick converts the window of days ending LagDays ago.
	Schedule           string `env:"SCHEDULE"`
	ScheduleLagDays    int    `env:"SCHEDULE_LAG_DAYS" validate:"min=0"`
	ScheduleWindowDays int    `env:"SCHEDULE_WINDOW_DAYS" validate:"min=1"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	swap, err := parseEvapSwap()
	if err != nil {
		return nil, err
	}

	categories, err := domain.ParseCategories(sharedcfg.EnvOrDefault("CATEGORIES", "Evaporation,Vegetation,Radiation,Soil,RunoffPrecip"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATEGORIES: %w", err)
	}

	compression, err := parseInt("COMPRESSION_LEVEL", 5)
	if err != nil {
		return nil, err
	}
	lagDays, err := parseInt("SCHEDULE_LAG_DAYS", 5)
	if err != nil {
		return nil, err
	}
	windowDays, err := parseInt("SCHEDULE_WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}

	start, err := parseDate("START_DATE")
	if err != nil {
		return nil, err
	}
	end, err := parseDate("END_DATE")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		InputRoot:          os.Getenv("INPUT_ROOT"),
		OutputRoot:         os.Getenv("OUTPUT_ROOT"),
		StartDate:          start,
		EndDate:            end,
		Categories:         categories,
		ApplyEvapSwap:      swap,
		TilePrefix:         sharedcfg.EnvOrDefault("TILE_PREFIX", "ERA5_LAND_DAILY"),
		TileExt:            strings.TrimPrefix(sharedcfg.EnvOrDefault("TILE_EXT", "tif"), "."),
		OutputPrefix:       sharedcfg.EnvOrDefault("OUTPUT_PREFIX", "ERA5_Land_Daily"),
		OutputFormat:       strings.ToLower(sharedcfg.EnvOrDefault("OUTPUT_FORMAT", "netcdf4")),
		CompressionLevel:   compression,
		CreatedBy:          sharedcfg.EnvOrDefault("CREATED_BY", "era5land-etl"),
		ContactInfo:        os.Getenv("CONTACT_INFO"),
		LogLevel:           strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		HTTPAddr:           os.Getenv("HTTP_ADDR"),
		ShutdownTimeout:    shutdownTimeout,
		KafkaBrokers:       brokers,
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "era5land-artifacts"),
		Schedule:           os.Getenv("SCHEDULE"),
		ScheduleLagDays:    lagDays,
		ScheduleWindowDays: windowDays,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	if cfg.Schedule == "" {
		if cfg.StartDate.IsZero() || cfg.EndDate.IsZero() {
			return nil, errors.New("START_DATE and END_DATE are required unless SCHEDULE is set")
		}
		if cfg.EndDate.Before(cfg.StartDate) {
			return nil, errors.New("END_DATE is before START_DATE")
		}
	}

	return cfg, nil
}

// Layout returns the on-disk layout described by the configuration.
func (c *Config) Layout() domain.Layout {
	return domain.Layout{
		InputRoot:    c.InputRoot,
		OutputRoot:   c.OutputRoot,
		TilePrefix:   c.TilePrefix,
		TileExt:      c.TileExt,
		OutputPrefix: c.OutputPrefix,
	}
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// parseEvapSwap requires APPLY_EVAP_SWAP to be set explicitly; historical
// exports disagree on whether the swap is needed.
func parseEvapSwap() (bool, error) {
	v := os.Getenv("APPLY_EVAP_SWAP")
	if v == "" {
		return false, errors.New("APPLY_EVAP_SWAP is required (true or false)")
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid APPLY_EVAP_SWAP: %w", err)
	}
	return b, nil
}

func parseDate(key string) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s (want yyyymmdd): %w", key, err)
	}
	return t, nil
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

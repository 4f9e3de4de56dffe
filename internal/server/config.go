package server

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Config holds server settings.
type Config struct {
	Addr string
	// DataDir is the database directory. Empty means the platform default.
	DataDir string
	// IdleTimeout drops games from memory after this long without access.
	IdleTimeout time.Duration
	// Retention deletes stored games not modified for this long. Zero keeps them.
	Retention     time.Duration
	CleanInterval time.Duration
	// Seed fixes the random source of every game. Zero seeds from the clock.
	Seed  uint64
	Debug bool
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		IdleTimeout:   time.Hour,
		Retention:     7 * 24 * time.Hour,
		CleanInterval: 10 * time.Minute,
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.Addr == "" {
		errs = multierror.Append(errs, errors.New("listen address is empty"))
	}
	if c.IdleTimeout <= 0 {
		errs = multierror.Append(errs, errors.Errorf("idle timeout must be positive, got %s", c.IdleTimeout))
	}
	if c.Retention < 0 {
		errs = multierror.Append(errs, errors.Errorf("retention must not be negative, got %s", c.Retention))
	}
	if c.CleanInterval <= 0 {
		errs = multierror.Append(errs, errors.Errorf("clean interval must be positive, got %s", c.CleanInterval))
	}
	return errs.ErrorOrNil()
}

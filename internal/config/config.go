// Package config loads loader settings from defaults, an optional config
// file and the environment (populated from .env by main).
package config

import (
	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/pkg/database"
)

// Config holds all configuration for the application.
type Config struct {
	Database database.Params
	Files    Files
	Rules    Rules

	BatchSize int
	ChunkSize int

	Mongo Mongo

	LogLevel string
	LogFile  string
}

// Files names the three source datasets and how to decode them.
type Files struct {
	Books     string
	Users     string
	Ratings   string
	Encoding  string
	Delimiter rune
}

// Rules bounds accepted publication years and user ages.
type Rules struct {
	MinYear int
	MaxYear int
	MinAge  int
	MaxAge  int
}

// Mongo is optional; an empty ConnString disables the run report sink.
type Mongo struct {
	ConnString string
	Database   string
	Collection string
}

func (m Mongo) Enabled() bool { return m.ConnString != "" }

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, err := database.Lookup(c.Database.Driver); err != nil {
		return errors.WithStack(err)
	}
	if c.Database.DSN == "" && c.Database.Driver != "sqlite" && c.Database.Host == "" {
		return errors.Errorf("%s or %s must be set", KeyDBDSN, KeyDBHost)
	}
	if c.Rules.MinYear > c.Rules.MaxYear {
		return errors.Errorf("%s (%d) is after %s (%d)", KeyMinYear, c.Rules.MinYear, KeyMaxYear, c.Rules.MaxYear)
	}
	if c.Rules.MinAge < 0 || c.Rules.MinAge > c.Rules.MaxAge {
		return errors.Errorf("invalid age range %d..%d", c.Rules.MinAge, c.Rules.MaxAge)
	}
	if c.BatchSize < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyBatchSize, c.BatchSize)
	}
	if c.ChunkSize < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyChunkSize, c.ChunkSize)
	}
	if c.Files.Delimiter == 0 || c.Files.Delimiter == '"' || c.Files.Delimiter == '\n' {
		return errors.Errorf("invalid %s", KeyCSVDelimiter)
	}
	return nil
}

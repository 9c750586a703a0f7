package config

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/BartekS5/bookclub/pkg/database"
)

// Load reads configuration. An explicit path must exist; otherwise a
// bookclub.yaml in the working directory is used when present. Environment
// variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file '%s'", path)
		}
	} else {
		v.SetConfigName("bookclub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	delim, _ := utf8.DecodeRuneInString(v.GetString(KeyCSVDelimiter))
	if delim == utf8.RuneError {
		delim = 0
	}

	return &Config{
		Database: database.Params{
			Driver:   v.GetString(KeyDBDriver),
			DSN:      v.GetString(KeyDBDSN),
			Host:     v.GetString(KeyDBHost),
			Port:     v.GetInt(KeyDBPort),
			User:     v.GetString(KeyDBUser),
			Password: v.GetString(KeyDBPassword),
			Name:     v.GetString(KeyDBName),
		},
		Files: Files{
			Books:     v.GetString(KeyBooksFile),
			Users:     v.GetString(KeyUsersFile),
			Ratings:   v.GetString(KeyRatingsFile),
			Encoding:  v.GetString(KeyCSVEncoding),
			Delimiter: delim,
		},
		Rules: Rules{
			MinYear: v.GetInt(KeyMinYear),
			MaxYear: v.GetInt(KeyMaxYear),
			MinAge:  v.GetInt(KeyMinAge),
			MaxAge:  v.GetInt(KeyMaxAge),
		},
		BatchSize: v.GetInt(KeyBatchSize),
		ChunkSize: v.GetInt(KeyChunkSize),
		Mongo: Mongo{
			ConnString: v.GetString(KeyMongoConnString),
			Database:   v.GetString(KeyMongoDatabase),
			Collection: v.GetString(KeyReportCollection),
		},
		LogLevel: v.GetString(KeyLogLevel),
		LogFile:  v.GetString(KeyLogFile),
	}
}

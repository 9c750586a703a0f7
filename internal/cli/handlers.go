package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/internal/config"
	"github.com/BartekS5/bookclub/internal/etl"
	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/logger"
)

// loadConfig reads and validates configuration, then starts the logger.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.LogFile, logger.ParseLevel(cfg.LogLevel)); err != nil {
		return nil, errors.Wrapf(err, "failed to open log file '%s'", cfg.LogFile)
	}
	return cfg, nil
}

// session is an open target store plus the configuration it came from.
type session struct {
	cfg   *config.Config
	store *database.Store
}

func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Close()
		return nil, err
	}
	return &session{cfg: cfg, store: store}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		logger.Warnf("Error closing database: %v", err)
	}
	logger.Close()
}

// reporter always logs the run and also persists it to MongoDB when a
// connection string is configured. An unreachable MongoDB only costs the
// persisted copy.
func (s *session) reporter(ctx context.Context) (etl.Reporter, func()) {
	if !s.cfg.Mongo.Enabled() {
		return etl.LogReporter{}, func() {}
	}

	client, err := database.ConnectMongo(ctx, s.cfg.Mongo.ConnString)
	if err != nil {
		logger.Warnf("Run reports will not be persisted: %v", err)
		return etl.LogReporter{}, func() {}
	}

	mongoRep := etl.NewMongoReporter(client, s.cfg.Mongo.Database, s.cfg.Mongo.Collection)
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warnf("Error disconnecting from MongoDB: %v", err)
		}
	}
	return etl.MultiReporter{etl.LogReporter{}, mongoRep}, closeFn
}

// newPipeline builds the load graph over the session's store.
func (s *session) newPipeline(job *etl.Job, reporter etl.Reporter, gate etl.Gate) (*etl.Pipeline, error) {
	graph, err := etl.NewGraph(job.Stages()...)
	if err != nil {
		return nil, err
	}
	p := etl.NewPipeline(graph, s.store, reporter, gate)
	p.Driver = s.store.Dialect().Name()
	return p, nil
}

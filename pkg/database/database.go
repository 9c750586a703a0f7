package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BartekS5/bookclub/pkg/logger"
)

// Params selects a dialect and how to reach it. DSN wins over the discrete
// fields when set.
type Params struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

func (p Params) portOr(def int) int {
	if p.Port > 0 {
		return p.Port
	}
	return def
}

// Open resolves the dialect, opens the pool and pings it.
func Open(ctx context.Context, p Params) (*Store, error) {
	d, err := Lookup(p.Driver)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dsn := p.DSN
	if dsn == "" {
		if dsn, err = d.DSN(p); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %s database", d.Name())
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "error connecting to %s database (ping failed)", d.Name())
	}

	logger.Infof("Successfully connected to %s.", d.Name())
	return New(db, d), nil
}

func ConnectMongo(ctx context.Context, connString string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, errors.Wrap(err, "error creating MongoDB client")
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)

		return nil, errors.Wrap(err, "error connecting to MongoDB (ping failed)")
	}

	logger.Info("Successfully connected to MongoDB.")
	return client, nil
}

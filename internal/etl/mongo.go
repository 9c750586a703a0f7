package etl

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/bookclub/pkg/logger"
)

// MongoReporter upserts each RunReport into a collection keyed by run id,
// so a report written at start and again at finish stays one document.
type MongoReporter struct {
	Client     *mongo.Client
	Database   string
	Collection string
}

func NewMongoReporter(client *mongo.Client, database, collection string) *MongoReporter {
	return &MongoReporter{Client: client, Database: database, Collection: collection}
}

func (m *MongoReporter) Report(ctx context.Context, r *RunReport) error {
	coll := m.Client.Database(m.Database).Collection(m.Collection)

	model := mongo.NewReplaceOneModel().
		SetFilter(bson.M{"_id": r.RunID}).
		SetReplacement(r).
		SetUpsert(true)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := coll.BulkWrite(ctx, []mongo.WriteModel{model})
	if err != nil {
		return errors.Wrapf(err, "write run report %s", r.RunID)
	}
	logger.Debugf("Mongo BulkWrite: Match %d, Mod %d, Upsert %d", res.MatchedCount, res.ModifiedCount, res.UpsertedCount)
	return nil
}

// RecentRuns returns the latest reports, newest first.
func (m *MongoReporter) RecentRuns(ctx context.Context, limit int64) ([]RunReport, error) {
	coll := m.Client.Database(m.Database).Collection(m.Collection)

	findOpts := options.Find().SetLimit(limit).SetSort(bson.M{"started_at": -1})
	cursor, err := coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, errors.Wrap(err, "list run reports")
	}
	defer cursor.Close(ctx)

	var out []RunReport
	for cursor.Next(ctx) {
		var r RunReport
		if err := cursor.Decode(&r); err != nil {
			logger.Errorf("Error decoding run report: %v", err)
			continue
		}
		out = append(out, r)
	}
	return out, errors.Wrap(cursor.Err(), "list run reports")
}

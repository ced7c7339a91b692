package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ocppmsg/internal/config"
)

const (
	collectionLog  = "sys_log"
	defaultTimeout = 10 * time.Second
	maxLogRecords  = 1000
)

type MongoDB struct {
	clientOptions *options.ClientOptions
	database      string
}

// NewMongoClient returns nil when the database is disabled in conf.
func NewMongoClient(conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	if conf.Mongo.Database == "" {
		return nil, errors.NotValidf("mongo database name %q", conf.Mongo.Database)
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	return &MongoDB{
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}, nil
}

func (m *MongoDB) connect(ctx context.Context) (*mongo.Client, error) {
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, errors.Annotate(err, "mongodb connect")
	}
	return connection, nil
}

func (m *MongoDB) disconnect(ctx context.Context, connection *mongo.Client) {
	_ = connection.Disconnect(ctx)
}

func (m *MongoDB) WriteLogMessage(data Data) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)
	collection := connection.Database(m.database).Collection(collectionLog)
	_, err = collection.InsertOne(ctx, data)
	return errors.Trace(err)
}

// ReadLog returns the newest records first; an empty nodeId selects all nodes.
func (m *MongoDB) ReadLog(ctx context.Context, nodeId string, limit int64) ([]FeatureLogMessage, error) {
	if limit <= 0 || limit > maxLogRecords {
		limit = maxLogRecords
	}
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	filter := bson.D{}
	if nodeId != "" {
		filter = bson.D{{Key: "node_id", Value: nodeId}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	collection := connection.Database(m.database).Collection(collectionLog)
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var logMessages []FeatureLogMessage
	if err = cursor.All(ctx, &logMessages); err != nil {
		return nil, errors.Trace(err)
	}
	return logMessages, nil
}

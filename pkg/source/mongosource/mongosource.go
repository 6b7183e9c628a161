// Package mongosource fetches hierarchy records from a MongoDB collection.
//
// Each document carries the fields of a hierarchy record:
//
//	{ "id": 2, "name": "North", "type": "Region", "depth": 2, "parent_id": 1 }
//
// The root document has "parent_id": null or omits the field. Documents are
// sorted server-side by depth and then name.
package mongosource

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
)

// DefaultCollection is used when the URI does not name one.
const DefaultCollection = "units"

// connectTimeout bounds the initial handshake.
const connectTimeout = 10 * time.Second

// Config identifies the collection to read.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// ConfigFromURI splits a source URI of the form
//
//	mongodb://host/database?collection=units
//
// into a driver URI and the database and collection names. The collection
// parameter is removed before the URI reaches the driver.
func ConfigFromURI(raw string) (Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidSource, err, "parse mongodb URI")
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return Config{}, errs.New(errs.ErrCodeInvalidSource, "not a mongodb URI: %q", u.Scheme)
	}

	cfg := Config{
		Database:   strings.TrimPrefix(u.Path, "/"),
		Collection: DefaultCollection,
	}
	if cfg.Database == "" {
		return Config{}, errs.New(errs.ErrCodeInvalidSource, "mongodb URI needs a database name")
	}

	q := u.Query()
	if c := q.Get("collection"); c != "" {
		cfg.Collection = c
	}
	q.Del("collection")
	u.RawQuery = q.Encode()
	cfg.URI = u.String()
	return cfg, nil
}

// Source reads records from one collection.
type Source struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSource, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeSource, err, "ping mongodb")
	}
	return &Source{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Name returns "mongodb".
func (s *Source) Name() string { return "mongodb" }

// Fetch returns all documents ordered by depth and name.
func (s *Source) Fetch(ctx context.Context) ([]hierarchy.Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, FindOptions())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSource, err, "query %s", s.coll.Name())
	}
	var records []hierarchy.Record
	if err := cur.All(ctx, &records); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSource, err, "decode %s", s.coll.Name())
	}
	return records, nil
}

// FindOptions returns the sort and projection used by [Source.Fetch].
func FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "depth", Value: 1}, {Key: "name", Value: 1}}).
		SetProjection(bson.D{{Key: "_id", Value: 0}})
}

// Close disconnects the client.
func (s *Source) Close() error {
	return s.client.Disconnect(context.Background())
}

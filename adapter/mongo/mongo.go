// Package mongo contains a [domain.Collection] backed by a MongoDB
// collection. Every method translates its descriptors into driver documents
// and performs a single round trip. Driver errors are returned unchanged.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

const defaultConnectTimeout = 10 * time.Second

// Collection implements [domain.Collection].
type Collection struct {
	coll           *mongo.Collection
	maxTime        time.Duration
	connectTimeout time.Duration
}

var _ domain.Collection = (*Collection)(nil)

// NewCollection returns a [domain.Collection] that dispatches to coll.
func NewCollection(coll *mongo.Collection, opts ...Option) *Collection {
	c := &Collection{coll: coll, connectTimeout: defaultConnectTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens a client to uri, pings it and returns the named collection
// together with a function that disconnects the client.
func Connect(ctx context.Context, uri, database, collection string, opts ...Option) (*Collection, func(context.Context) error, error) {
	c := NewCollection(nil, opts...)

	clientOpts := mopt.Client().ApplyURI(uri).
		SetConnectTimeout(c.connectTimeout).
		SetServerSelectionTimeout(c.connectTimeout).
		SetBSONOptions(&mopt.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	c.coll = client.Database(database).Collection(collection)
	return c, client.Disconnect, nil
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, filter domain.Filter, opts domain.FindOptions) (domain.Cursor, error) {
	f, err := BuildFilter(filter)
	if err != nil {
		return nil, err
	}

	findOpts := mopt.Find()
	if p := BuildProjection(opts.Projection); p != nil {
		findOpts.SetProjection(p)
	}
	if s := BuildSort(opts.Sort); s != nil {
		findOpts.SetSort(s)
	}
	if opts.Page != nil {
		findOpts.SetSkip(opts.Page.Offset).SetLimit(opts.Page.Limit)
	}
	if c.maxTime > 0 {
		findOpts.SetMaxTime(c.maxTime)
	}

	cur, err := c.coll.Find(ctx, f, findOpts)
	if err != nil {
		return nil, err
	}
	return newCursor(ctx, cur), nil
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, filter domain.Filter, target any) (bool, error) {
	f, err := BuildFilter(filter)
	if err != nil {
		return false, err
	}

	findOpts := mopt.FindOne()
	if c.maxTime > 0 {
		findOpts.SetMaxTime(c.maxTime)
	}

	err = c.coll.FindOne(ctx, f, findOpts).Decode(target)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateOne implements [domain.Collection].
func (c *Collection) UpdateOne(ctx context.Context, filter domain.Filter, changes domain.Changes) (domain.UpdateResult, error) {
	f, err := BuildFilter(filter)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	res, err := c.coll.UpdateOne(ctx, f, BuildChanges(changes))
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return domain.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// DeleteOne implements [domain.Collection].
func (c *Collection) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	f, err := BuildFilter(filter)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	res, err := c.coll.DeleteOne(ctx, f)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// Aggregate implements [domain.Collection].
func (c *Collection) Aggregate(ctx context.Context, pipeline domain.Pipeline) (domain.Cursor, error) {
	p, err := BuildPipeline(pipeline)
	if err != nil {
		return nil, err
	}

	aggOpts := mopt.Aggregate()
	if c.maxTime > 0 {
		aggOpts.SetMaxTime(c.maxTime)
	}

	cur, err := c.coll.Aggregate(ctx, p, aggOpts)
	if err != nil {
		return nil, err
	}
	return newCursor(ctx, cur), nil
}

// CreateIndex implements [domain.Collection]. The server returns the name of
// the existing index when keys are already indexed.
func (c *Collection) CreateIndex(ctx context.Context, keys domain.IndexKeys) (string, error) {
	return c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: BuildIndexKeys(keys)})
}

// ListIndexes implements [domain.Collection].
func (c *Collection) ListIndexes(ctx context.Context) ([]domain.IndexDescriptor, error) {
	specs, err := c.coll.Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.IndexDescriptor, 0, len(specs))
	for _, spec := range specs {
		var keys bson.D
		if err := bson.Unmarshal(spec.KeysDocument, &keys); err != nil {
			return nil, err
		}
		desc := domain.IndexDescriptor{
			Name:   spec.Name,
			Keys:   make(domain.IndexKeys, 0, len(keys)),
			Unique: spec.Unique != nil && *spec.Unique,
		}
		for _, k := range keys {
			desc.Keys = append(desc.Keys, domain.IndexKey{Field: k.Key, Direction: toInt64(k.Value)})
		}
		res = append(res, desc)
	}
	return res, nil
}

// Explain implements [domain.Collection] with the explain command at
// executionStats verbosity.
func (c *Collection) Explain(ctx context.Context, filter domain.Filter) (domain.ExecutionStats, error) {
	f, err := BuildFilter(filter)
	if err != nil {
		return domain.ExecutionStats{}, err
	}

	cmd := bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: c.coll.Name()},
			{Key: "filter", Value: f},
		}},
		{Key: "verbosity", Value: "executionStats"},
	}
	var raw bson.M
	if err := c.coll.Database().RunCommand(ctx, cmd).Decode(&raw); err != nil {
		return domain.ExecutionStats{}, err
	}
	return ParseExplain(raw), nil
}

// InsertMany implements [domain.Collection]. Documents without an _id get
// one assigned by the driver.
func (c *Collection) InsertMany(ctx context.Context, docs ...any) (domain.InsertResult, error) {
	if len(docs) == 0 {
		return domain.InsertResult{InsertedIDs: []any{}}, nil
	}
	res, err := c.coll.InsertMany(ctx, docs)
	if err != nil {
		return domain.InsertResult{}, err
	}
	return domain.InsertResult{InsertedIDs: res.InsertedIDs}, nil
}

// Count implements [domain.Collection].
func (c *Collection) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	f, err := BuildFilter(filter)
	if err != nil {
		return 0, err
	}

	countOpts := mopt.Count()
	if c.maxTime > 0 {
		countOpts.SetMaxTime(c.maxTime)
	}
	return c.coll.CountDocuments(ctx, f, countOpts)
}

package tablestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo dials uri and returns the named database after a ping.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(database), nil
}

type mongoDoc struct {
	ID           string    `bson:"_id"`
	PartitionKey string    `bson:"partitionKey"`
	RowKey       string    `bson:"rowKey"`
	ETag         string    `bson:"etag"`
	Timestamp    time.Time `bson:"timestamp"`
	Data         bson.D    `bson:"data"`
}

type mongoStore struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongo keeps one collection per table. Entity payloads are stored as
// native documents so they stay queryable from the mongo shell.
func NewMongo(db *mongo.Database, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mongoStore{db: db, logger: logger}
}

func docID(pk, rk string) string {
	return pk + "/" + rk
}

func toDoc(e Entity) (mongoDoc, error) {
	var data bson.D
	raw := e.Data
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := bson.UnmarshalExtJSON(raw, false, &data); err != nil {
		return mongoDoc{}, fmt.Errorf("encode entity data: %w", err)
	}
	return mongoDoc{
		ID:           docID(e.PartitionKey, e.RowKey),
		PartitionKey: e.PartitionKey,
		RowKey:       e.RowKey,
		ETag:         e.ETag,
		Timestamp:    e.Timestamp,
		Data:         data,
	}, nil
}

func fromDoc(d mongoDoc) (*Entity, error) {
	data := d.Data
	if data == nil {
		data = bson.D{}
	}
	raw, err := bson.MarshalExtJSON(data, false, false)
	if err != nil {
		return nil, fmt.Errorf("decode entity data: %w", err)
	}
	return &Entity{
		PartitionKey: d.PartitionKey,
		RowKey:       d.RowKey,
		ETag:         d.ETag,
		Timestamp:    d.Timestamp,
		Data:         raw,
	}, nil
}

func (s *mongoStore) Get(ctx context.Context, table, pk, rk string) (*Entity, error) {
	var d mongoDoc
	err := s.db.Collection(table).FindOne(ctx, bson.M{"_id": docID(pk, rk)}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("table store: get", zap.String("table", table), zap.String("row_key", rk), zap.Error(err))
		return nil, err
	}
	return fromDoc(d)
}

func (s *mongoStore) List(ctx context.Context, table, pk string) ([]Entity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rowKey", Value: 1}})
	cur, err := s.db.Collection(table).Find(ctx, bson.M{"partitionKey": pk}, opts)
	if err != nil {
		s.logger.Error("table store: list", zap.String("table", table), zap.Error(err))
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Entity
	for cur.Next(ctx) {
		var d mongoDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		e, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, cur.Err()
}

func (s *mongoStore) Insert(ctx context.Context, table string, e Entity) (*Entity, error) {
	e.ETag = newETag()
	e.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	d, err := toDoc(e)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Collection(table).InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		s.logger.Error("table store: insert", zap.String("table", table), zap.String("row_key", e.RowKey), zap.Error(err))
		return nil, err
	}
	return &e, nil
}

func (s *mongoStore) Update(ctx context.Context, table string, e Entity, expectedETag string) (*Entity, error) {
	filter := bson.M{"_id": docID(e.PartitionKey, e.RowKey)}
	if expectedETag != AnyETag {
		filter["etag"] = expectedETag
	}
	e.ETag = newETag()
	e.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	d, err := toDoc(e)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Collection(table).ReplaceOne(ctx, filter, d)
	if err != nil {
		s.logger.Error("table store: update", zap.String("table", table), zap.String("row_key", e.RowKey), zap.Error(err))
		return nil, err
	}
	if res.MatchedCount == 0 {
		if _, getErr := s.Get(ctx, table, e.PartitionKey, e.RowKey); getErr != nil {
			return nil, getErr
		}
		return nil, ErrConflict
	}
	return &e, nil
}

func (s *mongoStore) Delete(ctx context.Context, table, pk, rk string) error {
	res, err := s.db.Collection(table).DeleteOne(ctx, bson.M{"_id": docID(pk, rk)})
	if err != nil {
		s.logger.Error("table store: delete", zap.String("table", table), zap.String("row_key", rk), zap.Error(err))
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

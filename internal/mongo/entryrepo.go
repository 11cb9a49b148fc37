package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sbgaming/cafedesk/internal/session"
)

// EntryRepo persists session entries in the entries collection. The
// collection predates this service; field names and the legacy snack shapes
// it may contain are handled by the session package's bson codecs.
type EntryRepo struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	logger     apt.Logger
	config     *apt.Config
}

func NewEntryRepo(config *apt.Config, logger apt.Logger) *EntryRepo {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EntryRepo{
		logger: logger,
		config: config,
	}
}

func (r *EntryRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "cafedesk"
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)
	r.collection = r.db.Collection("entries")

	timestampIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, timestampIndex); err != nil {
		return fmt.Errorf("cannot create timestamp index: %w", err)
	}

	smsIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "smsSent", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, smsIndex); err != nil {
		return fmt.Errorf("cannot create smsSent index: %w", err)
	}

	r.logger.Infof("Connected to MongoDB: %s, database: %s, collection: entries", mongoURL, dbName)
	return nil
}

func (r *EntryRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (r *EntryRepo) Create(ctx context.Context, e *session.Entry) error {
	_, err := r.collection.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("cannot insert entry: %w", err)
	}
	return nil
}

func (r *EntryRepo) Get(ctx context.Context, id session.EntryID) (*session.Entry, error) {
	var entry session.Entry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("cannot find entry: %w", err)
	}
	return &entry, nil
}

func (r *EntryRepo) List(ctx context.Context) ([]session.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []session.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("cannot decode entries: %w", err)
	}

	return entries, nil
}

func (r *EntryRepo) Save(ctx context.Context, e *session.Entry) error {
	filter := bson.M{"_id": e.ID}
	update := bson.M{"$set": e}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update entry: %w", err)
	}

	if result.MatchedCount == 0 {
		return session.ErrNotFound
	}

	return nil
}

// SetNotified is deliberately tolerant of a vanished id: the session may
// have been archived between the tick's read and this write.
func (r *EntryRepo) SetNotified(ctx context.Context, id session.EntryID) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"smsSent": true}}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("cannot set smsSent: %w", err)
	}
	return nil
}

func (r *EntryRepo) ListStartedBefore(ctx context.Context, cutoff time.Time) ([]session.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find stale entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []session.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("cannot decode stale entries: %w", err)
	}

	return entries, nil
}

// DeleteByIDs removes entries as a single batch. Atomicity across documents
// is whatever DeleteMany provides; no compensating rollback is attempted.
func (r *EntryRepo) DeleteByIDs(ctx context.Context, ids []session.EntryID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("cannot delete entries: %w", err)
	}
	return result.DeletedCount, nil
}

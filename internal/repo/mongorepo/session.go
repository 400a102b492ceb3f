package mongorepo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
)

const sessionCollection = "sessions"

// SessionMongoRepository implements repo.SessionStore. A TTL index lets the
// server drop expired sessions on its own; DeleteExpired covers the gap
// between expiry and the TTL monitor's next pass.
type SessionMongoRepository struct {
	db *mongo.Database
}

func NewSessionMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) *SessionMongoRepository {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("sessions_expires_at_ttl"),
	}

	if _, err := db.Collection(sessionCollection).Indexes().CreateOne(ctx, index); err != nil {
		logger.Error().Err(err).Str("collection", sessionCollection).Msg("failed to create indexes")
	}

	return &SessionMongoRepository{db: db}
}

func (r *SessionMongoRepository) Create(ctx context.Context, session *models.Session) error {
	_, err := r.db.Collection(sessionCollection).InsertOne(ctx, session)
	return err
}

func (r *SessionMongoRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	result := r.db.Collection(sessionCollection).FindOne(ctx, bson.M{"_id": id})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	var s models.Session
	if err := result.Decode(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *SessionMongoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Collection(sessionCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *SessionMongoRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Collection(sessionCollection).DeleteMany(ctx,
		bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ClientPinger adapts *mongo.Client to repo.Pinger.
type ClientPinger struct {
	Client *mongo.Client
}

func (p ClientPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, nil)
}

// NewStores wires the Mongo repositories for database db of client.
func NewStores(ctx context.Context, logger *zerolog.Logger, client *mongo.Client, db *mongo.Database) *repo.Stores {
	return &repo.Stores{
		Users:    NewUserMongoRepository(ctx, logger, db),
		Files:    NewFileMongoRepository(ctx, logger, db),
		Sessions: NewSessionMongoRepository(ctx, logger, db),
		Pinger:   ClientPinger{Client: client},
	}
}

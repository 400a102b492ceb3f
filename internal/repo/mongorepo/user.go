package mongorepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
)

const (
	userCollection = "users"

	usernameIndex = "users_username_key"
	emailIndex    = "users_email_key"
)

// UserMongoRepository implements repo.UserStore.
type UserMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository returns the repository and declares the unique
// indexes that make duplicate registrations fail atomically. Index errors are
// logged so the service can start against an unreachable server.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) *UserMongoRepository {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usernameIndex),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndex),
		},
	}

	if _, err := db.Collection(userCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Error().Err(err).Str("collection", userCollection).Msg("failed to create indexes")
	}

	return &UserMongoRepository{db: db}
}

func (r *UserMongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	_, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateFor(err)
		}
		return nil, err
	}

	return user, nil
}

// duplicateFor picks the duplicate error by the index named in the server message.
func duplicateFor(err error) error {
	if strings.Contains(err.Error(), emailIndex) {
		return repo.ErrDuplicateEmail
	}
	return repo.ErrDuplicateUsername
}

func (r *UserMongoRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"username": username})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	var user models.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserMongoRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.db.Collection(userCollection).CountDocuments(ctx, bson.M{"email": email},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserMongoRepository) GetProgress(ctx context.Context, username string) (models.Progress, error) {
	result := r.db.Collection(userCollection).FindOne(ctx,
		bson.M{"username": username},
		options.FindOne().SetProjection(bson.M{"progress": 1}),
	)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	var doc struct {
		Progress bson.Raw `bson:"progress,omitempty"`
	}
	if err := result.Decode(&doc); err != nil {
		return nil, err
	}

	return decodeProgress(doc.Progress)
}

// decodeProgress turns a stored progress document back into the JSON shape
// the client wrote. An absent document is an empty object.
func decodeProgress(raw bson.Raw) (models.Progress, error) {
	progress := models.Progress{}
	if len(raw) == 0 {
		return progress, nil
	}

	// Relaxed extended JSON keeps numbers and strings as plain JSON values.
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	if err := json.Unmarshal(ext, &progress); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return progress, nil
}

func (r *UserMongoRepository) SetProgress(ctx context.Context, username string, progress models.Progress) error {
	if progress == nil {
		progress = models.Progress{}
	}

	result, err := r.db.Collection(userCollection).UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"progress": progress}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repo.ErrNotFound
	}

	return nil
}

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

const fileCollection = "user_files"

// FileMongoRepository implements repo.FileStore.
type FileMongoRepository struct {
	db *mongo.Database
}

func NewFileMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) *FileMongoRepository {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_files_username_key"),
	}

	if _, err := db.Collection(fileCollection).Indexes().CreateOne(ctx, index); err != nil {
		logger.Error().Err(err).Str("collection", fileCollection).Msg("failed to create indexes")
	}

	return &FileMongoRepository{db: db}
}

func (r *FileMongoRepository) EnsureExists(ctx context.Context, username, content string, now time.Time) error {
	_, err := r.db.Collection(fileCollection).UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$setOnInsert": bson.M{
			"content":    content,
			"created_at": now,
			"updated_at": now,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	// A concurrent upsert won the insert; the document exists either way.
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *FileMongoRepository) Get(ctx context.Context, username string) (*models.UserFile, error) {
	result := r.db.Collection(fileCollection).FindOne(ctx, bson.M{"username": username})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	var f models.UserFile
	if err := result.Decode(&f); err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *FileMongoRepository) Upsert(ctx context.Context, username, content string, now time.Time) (*models.UserFile, error) {
	f, err := r.upsert(ctx, username, content, now)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Lost an insert race; the second attempt matches the existing document.
		return r.upsert(ctx, username, content, now)
	}
	return f, err
}

func (r *FileMongoRepository) upsert(ctx context.Context, username, content string, now time.Time) (*models.UserFile, error) {
	result := r.db.Collection(fileCollection).FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{
			"$set":         bson.M{"content": content, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if err := result.Err(); err != nil {
		return nil, err
	}

	var f models.UserFile
	if err := result.Decode(&f); err != nil {
		return nil, err
	}

	return &f, nil
}

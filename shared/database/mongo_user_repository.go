package database

import (
	"context"
	"errors"
	"user-service/shared/interfaces"
	"user-service/shared/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const usernameIndexName = "username_unique"

// Compile-time check to ensure mongoUserRepository implements UserRepository
var _ interfaces.UserRepository = (*mongoUserRepository)(nil)

type mongoUserRepository struct {
	users  *mongo.Collection
	logger *zap.Logger
}

// NewMongoUserRepository creates a new MongoDB-backed UserRepository.
// The collection's client is owned by the caller.
func NewMongoUserRepository(users *mongo.Collection, logger *zap.Logger) interfaces.UserRepository {
	return &mongoUserRepository{
		users:  users,
		logger: logger.Named("MongoUserRepo"),
	}
}

func activeUser(username string) bson.D {
	return bson.D{{Key: "username", Value: username}, {Key: "is_deprecated", Value: false}}
}

func clearedSession() bson.D {
	return bson.D{{Key: "token", Value: ""}, {Key: "valid_token_time", Value: int64(0)}}
}

// EnsureIndexes creates the unique username index.
func (r *mongoUserRepository) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(usernameIndexName),
	}
	name, err := r.users.Indexes().CreateOne(ctx, model)
	if err != nil {
		r.logger.Error("Failed to create username index", zap.Error(err))
		return models.ErrDatabase.Wrap(err)
	}
	r.logger.Info("Username index ensured", zap.String("index", name))
	return nil
}

// CreateUser inserts a new user document.
func (r *mongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.logger.Debug("Inserting user", zap.String("username", user.Username))
	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Attempted to create duplicate user by username", zap.String("username", user.Username))
			return models.ErrUserAlreadyExists
		}
		r.logger.Error("Failed to insert user", zap.Error(err), zap.String("username", user.Username))
		return models.ErrDatabase.Wrap(err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.Hex()), zap.String("username", user.Username))
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.D, username string) (*models.User, error) {
	user := &models.User{}
	err := r.users.FindOne(ctx, filter).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("User not found", zap.String("username", username))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to find user", zap.Error(err), zap.String("username", username))
		return nil, models.ErrDatabase.Wrap(err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user regardless of deprecation.
func (r *mongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}}, username)
}

// GetActiveUserByUsername retrieves a non-deprecated user.
func (r *mongoUserRepository) GetActiveUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, activeUser(username), username)
}

// SetSession stores a fresh token and its expiry.
func (r *mongoUserRepository) SetSession(ctx context.Context, username, token string, validUntil int64) (bool, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "token", Value: token},
		{Key: "valid_token_time", Value: validUntil},
	}}}
	res, err := r.users.UpdateOne(ctx, activeUser(username), update)
	if err != nil {
		r.logger.Error("Failed to set session", zap.Error(err), zap.String("username", username))
		return false, models.ErrDatabase.Wrap(err)
	}
	return res.MatchedCount > 0, nil
}

// ClearSessionByToken clears the session of whoever holds token.
func (r *mongoUserRepository) ClearSessionByToken(ctx context.Context, token string) (bool, error) {
	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "token", Value: token}}, bson.D{{Key: "$set", Value: clearedSession()}})
	if err != nil {
		r.logger.Error("Failed to clear session by token", zap.Error(err))
		return false, models.ErrDatabase.Wrap(err)
	}
	return res.MatchedCount > 0, nil
}

// ClearSessionByUsername clears the session of username.
func (r *mongoUserRepository) ClearSessionByUsername(ctx context.Context, username string) error {
	_, err := r.users.UpdateOne(ctx, bson.D{{Key: "username", Value: username}}, bson.D{{Key: "$set", Value: clearedSession()}})
	if err != nil {
		r.logger.Error("Failed to clear session by username", zap.Error(err), zap.String("username", username))
		return models.ErrDatabase.Wrap(err)
	}
	return nil
}

// UpdateProfile overwrites the profile fields and returns the new document.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, username string, profile models.Profile) (*models.User, error) {
	profile.Normalize()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	user := &models.User{}
	err := r.users.FindOneAndUpdate(ctx, activeUser(username), bson.D{{Key: "$set", Value: profile}}, opts).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("Profile update matched no user", zap.String("username", username))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to update profile", zap.Error(err), zap.String("username", username))
		return nil, models.ErrDatabase.Wrap(err)
	}
	r.logger.Info("Profile updated", zap.String("username", username))
	return user, nil
}

// DeprecateUser soft-deletes the account and drops its session.
func (r *mongoUserRepository) DeprecateUser(ctx context.Context, username, token string) (bool, error) {
	filter := append(activeUser(username), bson.E{Key: "token", Value: token})
	set := append(clearedSession(), bson.E{Key: "is_deprecated", Value: true})

	res, err := r.users.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		r.logger.Error("Failed to deprecate user", zap.Error(err), zap.String("username", username))
		return false, models.ErrDatabase.Wrap(err)
	}
	if res.MatchedCount > 0 {
		r.logger.Info("User deprecated", zap.String("username", username))
	}
	return res.MatchedCount > 0, nil
}

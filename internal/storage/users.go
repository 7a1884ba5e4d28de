package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/magabrotheeeer/elearning-api/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его ID.
//
// Нарушение уникальности email транслируется в ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.Db.Collection(CollectionUsers).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("%s: unexpected inserted id type %T", op, res.InsertedID)
	}
	return id.Hex(), nil
}

// FindUserByEmail возвращает пользователя по email или ErrNotFound.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "storage.FindUserByEmail", bson.M{"email": email})
}

// FindUserByFullName возвращает пользователя по отображаемому имени или ErrNotFound.
//
// Имя не уникально, при совпадениях возвращается первый найденный документ.
func (s *Storage) FindUserByFullName(ctx context.Context, fullName string) (*models.User, error) {
	return s.findUser(ctx, "storage.FindUserByFullName", bson.M{"full_name": fullName})
}

// FindUserByID возвращает пользователя по его идентификатору или ErrNotFound.
func (s *Storage) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.FindUserByID"
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return s.findUser(ctx, op, bson.M{"_id": oid})
}

// FindAdmin возвращает любую запись с ролью admin или ErrNotFound.
func (s *Storage) FindAdmin(ctx context.Context) (*models.User, error) {
	return s.findUser(ctx, "storage.FindAdmin", bson.M{"role": models.RoleAdmin})
}

func (s *Storage) findUser(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	u := &models.User{}
	err := s.Db.Collection(CollectionUsers).FindOne(ctx, filter).Decode(u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает пользователей, не более limit записей.
func (s *Storage) ListUsers(ctx context.Context, limit int64) ([]*models.User, error) {
	const op = "storage.ListUsers"

	cursor, err := s.Db.Collection(CollectionUsers).Find(ctx, bson.M{},
		options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result []*models.User
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

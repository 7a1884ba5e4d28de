// Package storage реализует подключение к MongoDB и служебные операции над базой.
//
// Хранилище создаётся явно при старте приложения и передаётся зависимостям,
// ленивых глобальных подключений нет.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Имена коллекций.
const (
	CollectionUsers   = "user"
	CollectionCourses = "course"
	collectionHealth  = "__health"
)

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrUserExists нарушено ограничение уникальности email.
	ErrUserExists = errors.New("user already exists")
)

// Storage хранит подключение к MongoDB.
type Storage struct {
	Client *mongo.Client
	Db     *mongo.Database
}

// New подключается к MongoDB и проверяет доступность базы.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{
		Client: client,
		Db:     client.Database(database),
	}, nil
}

// EnsureIndexes создает индексы: уникальный email для пользователей
// и базовые индексы для курсов.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	const op = "storage.EnsureIndexes"

	_, err := s.Db.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.Db.Collection(CollectionCourses).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "published", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InsertHealthProbe записывает пробный документ, подтверждая доступность базы.
func (s *Storage) InsertHealthProbe(ctx context.Context) error {
	const op = "storage.InsertHealthProbe"
	_, err := s.Db.Collection(collectionHealth).InsertOne(ctx, bson.M{
		"ok": true,
		"ts": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close разрывает подключение к базе.
func (s *Storage) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

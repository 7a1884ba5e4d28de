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

// CreateCourse сохраняет новый курс и возвращает его с заполненным ID.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	const op = "storage.CreateCourse"

	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Lessons == nil {
		course.Lessons = []string{}
	}

	res, err := s.Db.Collection(CollectionCourses).InsertOne(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected inserted id type %T", op, res.InsertedID)
	}
	course.ID = id
	return &course, nil
}

// FindCourseByID возвращает курс по идентификатору или ErrNotFound.
func (s *Storage) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	const op = "storage.FindCourseByID"

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	c := &models.Course{}
	err = s.Db.Collection(CollectionCourses).FindOne(ctx, bson.M{"_id": oid}).Decode(c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListCourses возвращает курсы каталога, не более limit записей начиная со skip.
func (s *Storage) ListCourses(ctx context.Context, skip, limit int64) ([]*models.Course, error) {
	const op = "storage.ListCourses"

	cursor, err := s.Db.Collection(CollectionCourses).Find(ctx, bson.M{},
		options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result []*models.Course
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateCourse применяет частичное обновление и возвращает число совпавших документов.
func (s *Storage) UpdateCourse(ctx context.Context, id string, fields map[string]any) (int64, error) {
	const op = "storage.UpdateCourse"

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	fields["updated_at"] = time.Now().UTC()

	res, err := s.Db.Collection(CollectionCourses).UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.MatchedCount, nil
}

// DeleteCourse удаляет курс и возвращает число удалённых документов.
func (s *Storage) DeleteCourse(ctx context.Context, id string) (int64, error) {
	const op = "storage.DeleteCourse"

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	res, err := s.Db.Collection(CollectionCourses).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}

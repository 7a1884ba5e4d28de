// Package course содержит бизнес-логику каталога курсов.
//
// Листинг каталога кешируется в redis, мутации инвалидируют кеш.
package course

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	"github.com/magabrotheeeer/elearning-api/internal/models"
	"github.com/magabrotheeeer/elearning-api/internal/storage"
)

var (
	// ErrCourseNotFound курс с указанным идентификатором отсутствует.
	ErrCourseNotFound = errors.New("course not found")
	// ErrNothingToUpdate в запросе на обновление нет ни одного поля.
	ErrNothingToUpdate = errors.New("nothing to update")
)

const (
	cacheKeyCourses = "courses:all"
	cacheTTL        = time.Minute
	// catalogFetchLimit верхняя граница выборки каталога, как и в листингах API
	catalogFetchLimit = 200
)

// CourseRepository описывает контракт для работы с курсами в базе данных.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course models.Course) (*models.Course, error)
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
	ListCourses(ctx context.Context, skip, limit int64) ([]*models.Course, error)
	UpdateCourse(ctx context.Context, id string, fields map[string]any) (int64, error)
	DeleteCourse(ctx context.Context, id string) (int64, error)
}

// Cache описывает контракт кеша листинга каталога.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует операции каталога курсов.
type Service struct {
	courses CourseRepository
	cache   Cache
	log     *slog.Logger
}

// New создает новый экземпляр Service. cache может быть nil.
func New(courses CourseRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		courses: courses,
		cache:   cache,
		log:     log,
	}
}

// List возвращает срез каталога. Полный (ограниченный) список кешируется,
// срез по skip и limit вычисляется поверх него.
//
// Ошибки кеша не прерывают запрос, каталог читается из базы.
func (s *Service) List(ctx context.Context, skip, limit int64) ([]*models.Course, error) {
	const op = "course.List"

	var all []*models.Course
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, cacheKeyCourses, &all)
		if err != nil {
			s.log.Warn("course cache read failed", slog.String("op", op), sl.Err(err))
		}
		if ok {
			return sliceCourses(all, skip, limit), nil
		}
	}

	all, err := s.courses.ListCourses(ctx, 0, catalogFetchLimit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyCourses, all, cacheTTL); err != nil {
			s.log.Warn("course cache write failed", slog.String("op", op), sl.Err(err))
		}
	}
	return sliceCourses(all, skip, limit), nil
}

// Create сохраняет новый курс и инвалидирует кеш каталога.
func (s *Service) Create(ctx context.Context, course models.Course) (*models.Course, error) {
	created, err := s.courses.CreateCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Get возвращает курс по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (*models.Course, error) {
	c, err := s.courses.FindCourseByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update применяет частичное обновление и возвращает обновленный курс.
func (s *Service) Update(ctx context.Context, id string, upd models.CourseUpdate) (*models.Course, error) {
	fields := upd.Fields()
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}
	matched, err := s.courses.UpdateCourse(ctx, id, fields)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && matched == 0) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.courses.FindCourseByID(ctx, id)
}

// Remove удаляет курс по идентификатору.
func (s *Service) Remove(ctx context.Context, id string) error {
	deleted, err := s.courses.DeleteCourse(ctx, id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && deleted == 0) {
		return ErrCourseNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKeyCourses); err != nil {
		s.log.Warn("course cache invalidation failed", sl.Err(err))
	}
}

func sliceCourses(all []*models.Course, skip, limit int64) []*models.Course {
	if skip >= int64(len(all)) {
		return []*models.Course{}
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end]
}

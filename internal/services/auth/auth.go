// Package auth содержит бизнес-логику регистрации, аутентификации
// и первичного создания администратора.
package auth

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/elearning-api/internal/config"
	"github.com/magabrotheeeer/elearning-api/internal/lib/jwt"
	"github.com/magabrotheeeer/elearning-api/internal/lib/password"
	"github.com/magabrotheeeer/elearning-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/elearning-api/internal/models"
	"github.com/magabrotheeeer/elearning-api/internal/storage"
)

var (
	// ErrInvalidCredentials единый отказ входа: несуществующий пользователь
	// и неверный пароль снаружи неразличимы.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByFullName(ctx context.Context, fullName string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindAdmin(ctx context.Context) (*models.User, error)
	ListUsers(ctx context.Context, limit int64) ([]*models.User, error)
}

// EventPublisher публикует доменные события. Может отсутствовать.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// BootstrapResult итог проверки наличия администратора по умолчанию.
type BootstrapResult int

const (
	// BootstrapUnavailable хранилище недоступно, итог неизвестен
	BootstrapUnavailable BootstrapResult = iota
	// BootstrapAlreadyExists администратор уже существует
	BootstrapAlreadyExists
	// BootstrapCreated администратор создан этим вызовом
	BootstrapCreated
)

func (r BootstrapResult) String() string {
	switch r {
	case BootstrapAlreadyExists:
		return "already_exists"
	case BootstrapCreated:
		return "created"
	default:
		return "unavailable"
	}
}

// Service отвечает за регистрацию, вход и выдачу JWT.
type Service struct {
	users        UserRepository
	jwtMaker     jwt.Maker
	events       EventPublisher
	defaultAdmin config.DefaultAdmin
}

// UserRegisteredEvent сообщение, публикуемое при успешной регистрации.
type UserRegisteredEvent struct {
	UserID   string      `json:"user_id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

// New создает новый экземпляр Service. events может быть nil.
func New(users UserRepository, jwtMaker jwt.Maker, events EventPublisher, defaultAdmin config.DefaultAdmin) *Service {
	return &Service{
		users:        users,
		jwtMaker:     jwtMaker,
		events:       events,
		defaultAdmin: defaultAdmin,
	}
}

// Register создает нового пользователя с хэшированием пароля.
//
// Конфликт по email возвращается как ErrEmailTaken. Событие регистрации
// публикуется по принципу fire-and-forget, его ошибка не влияет на результат.
func (s *Service) Register(ctx context.Context, email, fullName, rawPassword string, role models.Role) (*models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
	}
	id, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrUserExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	created, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		_ = s.events.Publish(rabbitmq.RoutingKeyUserRegistered, UserRegisteredEvent{
			UserID:   id,
			Email:    created.Email,
			FullName: created.FullName,
			Role:     created.Role,
		})
	}
	return created, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
//
// Идентификатором служит email, а при его отсутствии — отображаемое имя
// (имя не уникально, берется первый найденный документ). Все причины
// отказа сведены к ErrInvalidCredentials.
//
// Поле IsActive при входе не проверяется.
func (s *Service) Login(ctx context.Context, identifier, rawPassword string) (string, *models.User, error) {
	user, err := s.users.FindUserByEmail(ctx, identifier)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = s.users.FindUserByFullName(ctx, identifier)
	}
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// EnsureDefaultAdmin гарантирует наличие хотя бы одного администратора.
//
// Вызывается перед каждой попыткой входа, после первого запуска сводится
// к дешевой проверке существования. Гонка check-then-create схлопывается
// уникальным индексом email: конфликт вставки считается успешным no-op.
// Ошибки хранилища не прерывают вход, решение остается за вызывающей стороной.
func (s *Service) EnsureDefaultAdmin(ctx context.Context) (BootstrapResult, error) {
	_, err := s.users.FindAdmin(ctx)
	if err == nil {
		return BootstrapAlreadyExists, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return BootstrapUnavailable, err
	}

	hashed, err := password.GetHash(s.defaultAdmin.Password)
	if err != nil {
		return BootstrapUnavailable, err
	}
	admin := models.User{
		Email:        s.defaultAdmin.Email,
		FullName:     s.defaultAdmin.FullName,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	_, err = s.users.CreateUser(ctx, admin)
	if errors.Is(err, storage.ErrUserExists) {
		return BootstrapAlreadyExists, nil
	}
	if err != nil {
		return BootstrapUnavailable, err
	}
	return BootstrapCreated, nil
}

// GetUserByID возвращает пользователя для проверки доступа.
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindUserByID(ctx, id)
}

// ListUsers возвращает пользователей для административного списка.
func (s *Service) ListUsers(ctx context.Context, limit int64) ([]*models.User, error) {
	return s.users.ListUsers(ctx, limit)
}

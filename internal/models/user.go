// Package models содержит доменные модели системы: пользователей и курсы.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role роль пользователя, закрытый набор значений.
type Role string

const (
	// RoleStudent роль по умолчанию при регистрации
	RoleStudent Role = "student"
	// RoleInstructor роль преподавателя
	RoleInstructor Role = "instructor"
	// RoleAdmin роль администратора, открывает доступ к /admin маршрутам
	RoleAdmin Role = "admin"
)

// ParseRole приводит произвольную строку к одной из известных ролей.
// Неизвестное или пустое значение трактуется как RoleStudent.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return Role(s)
	default:
		return RoleStudent
	}
}

// User представляет зарегистрированного пользователя системы.
//
// PasswordHash никогда не сериализуется во внешние ответы.
// IsActive хранится, но при аутентификации не проверяется.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Email        string        `bson:"email" json:"email"`
	FullName     string        `bson:"full_name" json:"full_name"`
	PasswordHash string        `bson:"hashed_password" json:"-"`
	Role         Role          `bson:"role" json:"role"`
	IsActive     bool          `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time     `bson:"created_at" json:"-"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"-"`
}

// PublicUser публичное представление пользователя для HTTP-ответов.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Public возвращает представление пользователя без чувствительных полей.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

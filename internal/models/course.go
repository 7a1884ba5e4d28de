package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Course представляет курс в каталоге.
type Course struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string        `bson:"title" json:"title"`
	Description  string        `bson:"description" json:"description"`
	Level        string        `bson:"level" json:"level"`
	Price        float64       `bson:"price" json:"price"`
	Published    bool          `bson:"published" json:"published"`
	ThumbnailURL string        `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	Lessons      []string      `bson:"lessons" json:"lessons"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// CourseUpdate частичное обновление курса, nil-поля не изменяются.
type CourseUpdate struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Level        *string   `json:"level,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	Published    *bool     `json:"published,omitempty"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Lessons      *[]string `json:"lessons,omitempty"`
}

// Fields собирает map изменяемых полей для $set. Пустой map означает,
// что обновлять нечего.
func (c *CourseUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	if c.Title != nil {
		fields["title"] = *c.Title
	}
	if c.Description != nil {
		fields["description"] = *c.Description
	}
	if c.Level != nil {
		fields["level"] = *c.Level
	}
	if c.Price != nil {
		fields["price"] = *c.Price
	}
	if c.Published != nil {
		fields["published"] = *c.Published
	}
	if c.ThumbnailURL != nil {
		fields["thumbnail_url"] = *c.ThumbnailURL
	}
	if c.Lessons != nil {
		fields["lessons"] = *c.Lessons
	}
	return fields
}

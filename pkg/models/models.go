package models

import (
	"time"
)

type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Category  string    `gorm:"size:100;not null" json:"category"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	OwnerID   string    `gorm:"size:80;not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"not null;index" json:"book_id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Rate      int       `gorm:"not null;check:rate >= 1 AND rate <= 5" json:"rate"`
	OwnerID   string    `gorm:"size:80;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Reviews go away with their book.
	Book Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

// RatedBook is a Book together with the mean rate of its reviews.
// AvgRating is nil when the book has no reviews.
type RatedBook struct {
	Book      `gorm:"embedded"`
	AvgRating *float64 `gorm:"column:avg_rating" json:"avg_rating"`
}

// All returns every model the catalog migrates.
func All() []interface{} {
	return []interface{}{&Book{}, &Review{}}
}

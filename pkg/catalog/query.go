package catalog

import (
	"bookshelf/pkg/models"
	"strings"

	"gorm.io/gorm"
)

type SortOption string

const (
	SortNewest SortOption = "newest"
	SortOldest SortOption = "oldest"
	SortRating SortOption = "rating"
)

// RankingSize is the length of the top-rated list.
const RankingSize = 5

const avgRate = "AVG(reviews.rate)"

// ParseSort maps a request value onto a SortOption. Values must match
// exactly; anything else, including the empty string, means newest first.
func ParseSort(raw string) SortOption {
	switch s := SortOption(raw); s {
	case SortNewest, SortOldest, SortRating:
		return s
	default:
		return SortNewest
	}
}

// Query describes one read of the catalog. Its parts are independent gorm
// scopes, so filter and order may be applied in any order.
type Query struct {
	Sort    SortOption
	Keyword string
	Limit   int
}

// RankingQuery is the top-rated list, which ignores any search state.
func RankingQuery() Query {
	return Query{Sort: SortRating, Limit: RankingSize}
}

func (q Query) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{WithAverageRating, OrderBy(q.Sort)}
	if q.Keyword != "" {
		scopes = append(scopes, TitleContains(q.Keyword))
	}
	if q.Limit > 0 {
		scopes = append(scopes, Limit(q.Limit))
	}
	return scopes
}

// Find runs the query against db.
func (q Query) Find(db *gorm.DB) ([]models.RatedBook, error) {
	var out []models.RatedBook
	err := db.Model(&models.Book{}).Scopes(q.Scopes()...).Scan(&out).Error
	return out, err
}

// WithAverageRating selects every book column plus avg_rating, NULL for
// books without reviews.
func WithAverageRating(db *gorm.DB) *gorm.DB {
	return db.Select("books.*, CAST(" + avgRate + " AS FLOAT) AS avg_rating").
		Joins("LEFT JOIN reviews ON reviews.book_id = books.id").
		Group("books.id")
}

// OrderBy applies the ordering for s. Rating order puts unrated books last
// and breaks ties by id, newest first.
func OrderBy(s SortOption) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch s {
		case SortOldest:
			return db.Order("books.id ASC")
		case SortRating:
			return db.Order(avgRate + " IS NULL").
				Order(avgRate + " DESC").
				Order("books.id DESC")
		default:
			return db.Order("books.id DESC")
		}
	}
}

// TitleContains keeps books whose title contains keyword, ignoring case.
// Both sides are folded by the database so they always agree.
func TitleContains(keyword string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(keyword) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(books.title) LIKE LOWER(?) ESCAPE '\'`, pattern)
	}
}

func Limit(n int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

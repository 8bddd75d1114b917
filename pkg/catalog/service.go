package catalog

import (
	"bookshelf/pkg/models"
	"bookshelf/pkg/paginator"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an id does not resolve to a book.
var ErrNotFound = errors.New("book not found")

// Service answers catalog reads and writes against one gorm handle.
type Service struct {
	db           *gorm.DB
	itemsPerPage int
	validate     *validator.Validate
}

func NewService(db *gorm.DB, itemsPerPage int) *Service {
	return &Service{
		db:           db,
		itemsPerPage: itemsPerPage,
		validate:     validator.New(),
	}
}

type ListRequest struct {
	Sort    string
	Keyword string
	Page    string
}

// SearchForm is the validated keyword state. The keyword is trimmed before
// validation. An invalid keyword is kept for redisplay but never used as a
// filter.
type SearchForm struct {
	Keyword string            `json:"keyword" validate:"max=100"`
	Valid   bool              `json:"valid"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Listing carries two independently shaped results: the full keyword/sort
// list and one page of the ranking.
type Listing struct {
	ObjectList  []models.RatedBook               `json:"object_list"`
	RankingList []models.RatedBook               `json:"ranking_list"`
	SearchForm  SearchForm                       `json:"searchForm"`
	SortOption  SortOption                       `json:"sort_option"`
	PageObj     paginator.Page[models.RatedBook] `json:"page_obj"`
}

type BookDetail struct {
	models.RatedBook
	Reviews []models.Review `json:"reviews"`
}

func (s *Service) bindSearchForm(keyword string) SearchForm {
	form := SearchForm{Keyword: strings.TrimSpace(keyword)}
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		form.Errors = map[string]string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				form.Errors["keyword"] = fmt.Sprintf("must not exceed %s characters", fe.Param())
			}
		}
		return form
	}
	form.Valid = true
	return form
}

// ListCatalog runs the search/sort list and pages the top-rated ranking.
func (s *Service) ListCatalog(ctx context.Context, req ListRequest) (Listing, error) {
	sort := ParseSort(req.Sort)
	form := s.bindSearchForm(req.Keyword)

	q := Query{Sort: sort}
	if form.Valid {
		q.Keyword = form.Keyword
	}

	db := s.db.WithContext(ctx)
	results, err := q.Find(db)
	if err != nil {
		return Listing{}, fmt.Errorf("search books: %w", err)
	}

	ranking, err := RankingQuery().Find(db)
	if err != nil {
		return Listing{}, fmt.Errorf("rank books: %w", err)
	}

	page, err := paginator.New(ranking, s.itemsPerPage).Page(paginator.ParsePageNumber(req.Page))
	if err != nil {
		return Listing{}, err
	}

	return Listing{
		ObjectList:  nonNil(results),
		RankingList: nonNil(ranking),
		SearchForm:  form,
		SortOption:  sort,
		PageObj:     page,
	}, nil
}

// ListBooks returns every book, oldest first.
func (s *Service) ListBooks(ctx context.Context) ([]models.Book, error) {
	books := []models.Book{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns a book with its average rating and its reviews, newest first.
func (s *Service) GetBook(ctx context.Context, id uint) (BookDetail, error) {
	db := s.db.WithContext(ctx)

	var rated []models.RatedBook
	err := db.Model(&models.Book{}).
		Scopes(WithAverageRating).
		Where("books.id = ?", id).
		Scan(&rated).Error
	if err != nil {
		return BookDetail{}, fmt.Errorf("get book %d: %w", id, err)
	}
	if len(rated) == 0 {
		return BookDetail{}, fmt.Errorf("get book %d: %w", id, ErrNotFound)
	}

	reviews := []models.Review{}
	if err := db.Where("book_id = ?", id).Order("id DESC").Find(&reviews).Error; err != nil {
		return BookDetail{}, fmt.Errorf("list reviews of book %d: %w", id, err)
	}
	return BookDetail{RatedBook: rated[0], Reviews: reviews}, nil
}

func (s *Service) loadBook(db *gorm.DB, id uint) (models.Book, error) {
	var book models.Book
	if err := db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book, fmt.Errorf("book %d: %w", id, ErrNotFound)
		}
		return book, fmt.Errorf("load book %d: %w", id, err)
	}
	return book, nil
}

func nonNil(books []models.RatedBook) []models.RatedBook {
	if books == nil {
		return []models.RatedBook{}
	}
	return books
}

package catalog

import (
	"bookshelf/pkg/access"
	"bookshelf/pkg/auth"
	"bookshelf/pkg/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrUnauthenticated guards the service against callers that skipped the
// login gate.
var ErrUnauthenticated = errors.New("authentication required")

// BookInput holds the editable book fields.
type BookInput struct {
	Title     string `json:"title" form:"title" binding:"required,max=100"`
	Text      string `json:"text" form:"text" binding:"required"`
	Category  string `json:"category" form:"category" binding:"required,max=100"`
	Thumbnail string `json:"thumbnail" form:"thumbnail" binding:"omitempty,max=255"`
}

type ReviewInput struct {
	Title string `json:"title" form:"title" binding:"required,max=100"`
	Text  string `json:"text" form:"text" binding:"required"`
	Rate  int    `json:"rate" form:"rate" binding:"required,min=1,max=5"`
}

var editableBookFields = []string{"Title", "Text", "Category", "Thumbnail"}

func (s *Service) CreateBook(ctx context.Context, actor auth.Identity, in BookInput) (models.Book, error) {
	if !actor.Authenticated() {
		return models.Book{}, ErrUnauthenticated
	}
	book := models.Book{
		Title:     in.Title,
		Text:      in.Text,
		Category:  in.Category,
		Thumbnail: in.Thumbnail,
		OwnerID:   actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(&book).Error; err != nil {
		return models.Book{}, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// UpdateBook writes the editable fields of book id after the owner check.
// A denied request writes nothing.
func (s *Service) UpdateBook(ctx context.Context, actor auth.Identity, id uint, in BookInput) (models.Book, error) {
	db := s.db.WithContext(ctx)
	book, err := s.loadBook(db, id)
	if err != nil {
		return models.Book{}, err
	}
	if err := access.AuthorizeMutation(actor, book, access.OpUpdate); err != nil {
		return models.Book{}, err
	}

	book.Title = in.Title
	book.Text = in.Text
	book.Category = in.Category
	book.Thumbnail = in.Thumbnail
	// Select so that empty values such as a cleared thumbnail are written too
	// and OwnerID can never change.
	if err := db.Model(&book).Select(editableBookFields).Updates(&book).Error; err != nil {
		return models.Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	return book, nil
}

// DeleteBook removes book id and its reviews after the owner check.
func (s *Service) DeleteBook(ctx context.Context, actor auth.Identity, id uint) error {
	db := s.db.WithContext(ctx)
	book, err := s.loadBook(db, id)
	if err != nil {
		return err
	}
	if err := access.AuthorizeMutation(actor, book, access.OpDelete); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", book.ID).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete reviews of book %d: %w", id, err)
		}
		if err := tx.Delete(&book).Error; err != nil {
			return fmt.Errorf("delete book %d: %w", id, err)
		}
		return nil
	})
}

// CreateReview adds a review by actor to an existing book.
func (s *Service) CreateReview(ctx context.Context, actor auth.Identity, bookID uint, in ReviewInput) (models.Review, error) {
	if !actor.Authenticated() {
		return models.Review{}, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)
	if _, err := s.loadBook(db, bookID); err != nil {
		return models.Review{}, err
	}

	review := models.Review{
		BookID:  bookID,
		Title:   in.Title,
		Text:    in.Text,
		Rate:    in.Rate,
		OwnerID: actor.ID,
	}
	if err := db.Create(&review).Error; err != nil {
		return models.Review{}, fmt.Errorf("create review for book %d: %w", bookID, err)
	}
	return review, nil
}

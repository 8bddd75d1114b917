package access

import (
	"bookshelf/pkg/auth"
	"bookshelf/pkg/models"
	"errors"
	"fmt"
)

type Operation string

const (
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ErrDenied matches every DeniedError.
var ErrDenied = errors.New("permission denied")

type DeniedError struct {
	Op     Operation
	BookID uint
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("you do not have permission to %s this book", e.Op)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// AuthorizeMutation allows op on book only for its authenticated owner.
func AuthorizeMutation(actor auth.Identity, book models.Book, op Operation) error {
	if !actor.Authenticated() || book.OwnerID != actor.ID {
		return &DeniedError{Op: op, BookID: book.ID}
	}
	return nil
}

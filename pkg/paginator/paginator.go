package paginator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPageOutOfRange is returned for integer page numbers below 1 or past
// the last page.
var ErrPageOutOfRange = errors.New("page out of range")

type Paginator[T any] struct {
	items   []T
	perPage int
}

type Page[T any] struct {
	Number      int  `json:"number"`
	NumPages    int  `json:"num_pages"`
	Count       int  `json:"count"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	ObjectList  []T  `json:"object_list"`
}

// New slices items into pages of perPage. A non-positive perPage is treated
// as 1.
func New[T any](items []T, perPage int) *Paginator[T] {
	if perPage < 1 {
		perPage = 1
	}
	return &Paginator[T]{items: items, perPage: perPage}
}

func (p *Paginator[T]) Count() int {
	return len(p.items)
}

// NumPages is never below 1: an empty sequence still has an empty first page.
func (p *Paginator[T]) NumPages() int {
	if len(p.items) == 0 {
		return 1
	}
	return (len(p.items) + p.perPage - 1) / p.perPage
}

func (p *Paginator[T]) Page(number int) (Page[T], error) {
	numPages := p.NumPages()
	if number < 1 || number > numPages {
		return Page[T]{}, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, number, numPages)
	}

	start := (number - 1) * p.perPage
	end := min(start+p.perPage, len(p.items))

	list := make([]T, end-start)
	copy(list, p.items[start:end])

	return Page[T]{
		Number:      number,
		NumPages:    numPages,
		Count:       p.Count(),
		HasNext:     number < numPages,
		HasPrevious: number > 1,
		ObjectList:  list,
	}, nil
}

// ParsePageNumber reads a page token from a query string. Missing or
// non-integer tokens mean page 1; integers are returned as is so that Page
// can reject them when out of range.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

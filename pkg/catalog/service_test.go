package catalog

import (
	"bookshelf/pkg/paginator"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCatalogScenario(t *testing.T) {
	db := setupTestDB(t)
	a, b, c := seedScenario(t, db)
	svc := NewService(db, 5)

	listing, err := svc.ListCatalog(context.Background(), ListRequest{Sort: "rating"})
	require.NoError(t, err)
	assert.Equal(t, SortRating, listing.SortOption)
	assert.Equal(t, []uint{b.ID, c.ID, a.ID}, ids(listing.ObjectList))
	assert.Equal(t, []uint{b.ID, c.ID, a.ID}, ids(listing.RankingList))
	assert.True(t, listing.SearchForm.Valid)

	assert.Equal(t, 1, listing.PageObj.Number)
	assert.Equal(t, 1, listing.PageObj.NumPages)
	assert.Equal(t, ids(listing.RankingList), ids(listing.PageObj.ObjectList))
}

func TestListCatalogKeywordDoesNotTouchRanking(t *testing.T) {
	db := setupTestDB(t)
	a, b, c := seedScenario(t, db)
	svc := NewService(db, 5)

	listing, err := svc.ListCatalog(context.Background(), ListRequest{Sort: "newest", Keyword: "a"})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids(listing.ObjectList))
	assert.Equal(t, []uint{b.ID, c.ID, a.ID}, ids(listing.RankingList))
	assert.Equal(t, "a", listing.SearchForm.Keyword)
}

func TestListCatalogTrimsKeyword(t *testing.T) {
	db := setupTestDB(t)
	a, b, c := seedScenario(t, db)
	svc := NewService(db, 5)

	listing, err := svc.ListCatalog(context.Background(), ListRequest{Keyword: "   "})
	require.NoError(t, err)
	assert.True(t, listing.SearchForm.Valid)
	assert.Equal(t, "", listing.SearchForm.Keyword)
	assert.Equal(t, []uint{c.ID, b.ID, a.ID}, ids(listing.ObjectList))

	listing, err = svc.ListCatalog(context.Background(), ListRequest{Keyword: " dune\t"})
	require.NoError(t, err)
	assert.Equal(t, "dune", listing.SearchForm.Keyword)
	assert.Equal(t, []uint{b.ID}, ids(listing.ObjectList))

	padded := "  " + strings.Repeat("x", 100) + "  "
	listing, err = svc.ListCatalog(context.Background(), ListRequest{Keyword: padded})
	require.NoError(t, err)
	assert.True(t, listing.SearchForm.Valid)
}

func TestListCatalogUnknownSortDefaultsToNewest(t *testing.T) {
	db := setupTestDB(t)
	a, b, c := seedScenario(t, db)
	svc := NewService(db, 5)

	for _, raw := range []string{"", "popular", "Rating"} {
		listing, err := svc.ListCatalog(context.Background(), ListRequest{Sort: raw})
		require.NoError(t, err)
		assert.Equal(t, SortNewest, listing.SortOption)
		assert.Equal(t, []uint{c.ID, b.ID, a.ID}, ids(listing.ObjectList))
	}
}

func TestListCatalogInvalidKeywordSkipsFilter(t *testing.T) {
	db := setupTestDB(t)
	seedScenario(t, db)
	svc := NewService(db, 5)

	long := strings.Repeat("x", 101)
	listing, err := svc.ListCatalog(context.Background(), ListRequest{Keyword: long})
	require.NoError(t, err)
	assert.False(t, listing.SearchForm.Valid)
	assert.Contains(t, listing.SearchForm.Errors, "keyword")
	assert.Len(t, listing.ObjectList, 3)

	exact := strings.Repeat("x", 100)
	listing, err = svc.ListCatalog(context.Background(), ListRequest{Keyword: exact})
	require.NoError(t, err)
	assert.True(t, listing.SearchForm.Valid)
	assert.Empty(t, listing.ObjectList)
}

func TestListCatalogKeywordLengthCountsCharacters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 5)

	listing, err := svc.ListCatalog(context.Background(), ListRequest{Keyword: strings.Repeat("本", 100)})
	require.NoError(t, err)
	assert.True(t, listing.SearchForm.Valid)
}

func TestListCatalogPagesOnlyTheRanking(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 7; i++ {
		createBook(t, db, fmt.Sprintf("book %d", i), "u1", (i%5)+1)
	}
	svc := NewService(db, 2)

	listing, err := svc.ListCatalog(context.Background(), ListRequest{Page: "3"})
	require.NoError(t, err)
	assert.Len(t, listing.ObjectList, 7)
	assert.Len(t, listing.RankingList, RankingSize)
	assert.Equal(t, 3, listing.PageObj.Number)
	assert.Equal(t, 3, listing.PageObj.NumPages)
	assert.Equal(t, ids(listing.RankingList[4:]), ids(listing.PageObj.ObjectList))
	assert.False(t, listing.PageObj.HasNext)
}

func TestListCatalogPageTokens(t *testing.T) {
	db := setupTestDB(t)
	seedScenario(t, db)
	svc := NewService(db, 5)

	for _, raw := range []string{"", "abc", "2.5"} {
		listing, err := svc.ListCatalog(context.Background(), ListRequest{Page: raw})
		require.NoError(t, err, "page %q", raw)
		assert.Equal(t, 1, listing.PageObj.Number)
	}

	for _, raw := range []string{"99", "0", "-1", "2"} {
		_, err := svc.ListCatalog(context.Background(), ListRequest{Page: raw})
		assert.ErrorIs(t, err, paginator.ErrPageOutOfRange, "page %q", raw)
	}
}

func TestListCatalogEmpty(t *testing.T) {
	svc := NewService(setupTestDB(t), 5)

	listing, err := svc.ListCatalog(context.Background(), ListRequest{})
	require.NoError(t, err)
	assert.NotNil(t, listing.ObjectList)
	assert.NotNil(t, listing.RankingList)
	assert.Equal(t, 1, listing.PageObj.NumPages)
}

func TestListBooks(t *testing.T) {
	db := setupTestDB(t)
	a, b, c := seedScenario(t, db)
	svc := NewService(db, 5)

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, []uint{a.ID, b.ID, c.ID}, []uint{books[0].ID, books[1].ID, books[2].ID})
}

func TestGetBook(t *testing.T) {
	db := setupTestDB(t)
	a, b, _ := seedScenario(t, db)
	svc := NewService(db, 5)

	detail, err := svc.GetBook(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", detail.Title)
	require.NotNil(t, detail.AvgRating)
	assert.InDelta(t, 4.5, *detail.AvgRating, 1e-9)
	require.Len(t, detail.Reviews, 2)
	assert.Greater(t, detail.Reviews[0].ID, detail.Reviews[1].ID)

	unrated, err := svc.GetBook(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, unrated.AvgRating)
	assert.Empty(t, unrated.Reviews)

	_, err = svc.GetBook(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

package catalog

import (
	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func createBook(t *testing.T, db *gorm.DB, title, owner string, rates ...int) models.Book {
	t.Helper()
	book := models.Book{Title: title, Text: title + " text", Category: "novel", OwnerID: owner}
	require.NoError(t, db.Create(&book).Error)
	for _, rate := range rates {
		review := models.Review{BookID: book.ID, Title: "review", Text: "text", Rate: rate, OwnerID: "reviewer"}
		require.NoError(t, db.Create(&review).Error)
	}
	return book
}

// seedScenario creates A (no reviews), B (4 and 5) and C (2), in that order.
func seedScenario(t *testing.T, db *gorm.DB) (a, b, c models.Book) {
	t.Helper()
	a = createBook(t, db, "Alice in Wonderland", "u1")
	b = createBook(t, db, "Dune", "u1", 4, 5)
	c = createBook(t, db, "The Hobbit", "u2", 2)
	return a, b, c
}

func ids(books []models.RatedBook) []uint {
	out := make([]uint, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

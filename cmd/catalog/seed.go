package main

import (
	"bookshelf/pkg/auth"
	"bookshelf/pkg/catalog"
	"bookshelf/pkg/models"
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type demoBook struct {
	input   catalog.BookInput
	owner   auth.Identity
	reviews []catalog.ReviewInput
}

var (
	demoAlice = auth.Identity{ID: "demo-alice", Username: "alice"}
	demoBob   = auth.Identity{ID: "demo-bob", Username: "bob"}
)

var demoBooks = []demoBook{
	{
		input: catalog.BookInput{Title: "The Left Hand of Darkness", Text: "Envoy Genly Ai on the planet Gethen.", Category: "science fiction"},
		owner: demoAlice,
		reviews: []catalog.ReviewInput{
			{Title: "A classic", Text: "Still fresh decades later.", Rate: 5},
			{Title: "Slow start", Text: "Worth the patience.", Rate: 4},
		},
	},
	{
		input:   catalog.BookInput{Title: "Kitchen", Text: "Grief, food and found family in Tokyo.", Category: "literary fiction"},
		owner:   demoBob,
		reviews: []catalog.ReviewInput{{Title: "Tender", Text: "Short and lovely.", Rate: 4}},
	},
	{
		input: catalog.BookInput{Title: "Structure and Interpretation of Computer Programs", Text: "Programs as a way of thinking.", Category: "computing"},
		owner: demoAlice,
	},
}

// seedDemoData fills an empty catalog with a few books and reviews. It does
// nothing once any book exists.
func seedDemoData(ctx context.Context, db *gorm.DB, svc *catalog.Service, log *logrus.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.WithField("books", count).Info("Catalog not empty, skipping demo data")
		return nil
	}

	for _, demo := range demoBooks {
		book, err := svc.CreateBook(ctx, demo.owner, demo.input)
		if err != nil {
			return err
		}
		reviewer := demoBob
		if demo.owner == demoBob {
			reviewer = demoAlice
		}
		for _, review := range demo.reviews {
			if _, err := svc.CreateReview(ctx, reviewer, book.ID, review); err != nil {
				return err
			}
		}
		log.WithField("book_id", book.ID).Infof("Created demo book: %s", book.Title)
	}
	log.Println("Demo data seeded")
	return nil
}

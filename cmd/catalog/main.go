package main

import (
	"bookshelf/pkg/catalog"
	"bookshelf/pkg/config"
	"bookshelf/pkg/database"
	"bookshelf/pkg/logging"
	"bookshelf/pkg/metrics"
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logging.New(cfg.LogLevel)
	log.Info("Starting catalog service...")

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	gin.SetMode(cfg.GinMode)
	svc := catalog.NewService(db, cfg.ItemsPerPage)

	if cfg.SeedDemo {
		if err := seedDemoData(context.Background(), db, svc, log); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	server := newRouter(db, svc, cfg.JWTSecret, logging.Middleware(log), metrics.Middleware())

	log.Infof("Catalog service starting on :%s", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"astroseva/internal/config"
	"astroseva/internal/database"
	"astroseva/internal/repository"
)

func main() {
	retention := flag.Duration("retention", 30*24*time.Hour, "keep revoked tokens this long before purging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := repository.NewRefreshTokenRepository(db).DeleteStale(ctx, time.Now().UTC().Add(-*retention))
	if err != nil {
		log.Fatalf("cleanup refresh_tokens failed: %v", err)
	}
	log.Printf("auth cleanup completed: refresh_tokens=%d", n)
}

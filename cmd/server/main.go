package main

import (
	"context"
	"log"
	"time"

	"forumcore/internal/config"
	"forumcore/internal/entity"
	"forumcore/internal/server"
	"forumcore/pkg/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)
	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Category{},
		&entity.Thread{},
		&entity.Post{},
		&entity.ThreadRead{},
		&entity.ThreadFollow{},
		&entity.PostLike{},
		&entity.SearchIndex{},
		&entity.UserSignature{},
	)
}

// connectRedis returns nil when no REDIS_URL is configured or the instance is
// unreachable; the server falls back to the in-process cache.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, using in-process cache")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, using in-process cache: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable, using in-process cache: %v", err)
		return nil
	}
	return client
}

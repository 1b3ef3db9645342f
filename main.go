package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/ai"
	"github.com/flavian-jumba/peerly-BE/internal/config"
	"github.com/flavian-jumba/peerly-BE/internal/database"
	"github.com/flavian-jumba/peerly-BE/internal/events"
	"github.com/flavian-jumba/peerly-BE/internal/logging"
	"github.com/flavian-jumba/peerly-BE/internal/presence"
	"github.com/flavian-jumba/peerly-BE/internal/router"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.Log.Level, cfg.Log.Pretty)

	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatal().Err(err).Msg("create data dir")
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	deps := router.Deps{DB: db}

	// Redis backs presence and broadcasting; without it the in-memory store
	// and log broadcaster keep a single-node deployment working.
	var mirror presence.ProfileMirror = presence.NewGormProfileMirror(db)
	if rdb := connectRedis(cfg.Redis); rdb != nil {
		deps.Presence = presence.NewTracker(presence.NewRedisStore(rdb), mirror, events.NewRedisBroadcaster(rdb))
		deps.Broadcaster = events.NewRedisBroadcaster(rdb)
	} else {
		log.Warn().Msg("redis unavailable, using in-memory presence and log broadcaster")
		deps.Broadcaster = events.LogBroadcaster{}
		deps.Presence = presence.NewTracker(presence.NewMemoryStore(), mirror, deps.Broadcaster)
	}

	client, err := ai.NewProviderClient(cfg.AI)
	if err != nil {
		log.Warn().Err(err).Msg("ai chat disabled")
	} else {
		deps.AIClient = client
	}

	r := router.SetupRouter(cfg, deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("run server")
	}
}

func connectRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis ping failed")
		return nil
	}
	return rdb
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

package main

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"casino_platform/internal/account"
	"casino_platform/internal/api"
	"casino_platform/internal/audit"
	"casino_platform/internal/bet"
	"casino_platform/internal/bonus"
	"casino_platform/internal/config"
	"casino_platform/internal/db"
	"casino_platform/internal/game"
	"casino_platform/internal/ledger"
	"casino_platform/internal/logging"
	"casino_platform/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalln(err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalln(err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalln(err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("redis unavailable, continuing without game cache")
		rdb = nil
	}

	accounts := account.NewRepository(conn)
	entries := ledger.NewRepository(conn)
	mutator := ledger.NewMutator(conn)
	adjustments := ledger.NewService(entries, mutator)

	games := game.NewRepository(conn)
	catalog := game.NewCatalog(games, rdb, cfg.GameCacheTTL)

	bonusRepo := bonus.NewRepository(conn)
	bonuses := bonus.NewService(conn, bonusRepo, accounts, mutator)

	betRepo := bet.NewRepository(conn)
	bets := bet.NewService(conn, betRepo, accounts, catalog, games, mutator, bonuses)

	sweeper := worker.NewExpirySweeper(bonuses, cfg.ClaimExpiryInterval)
	if err := sweeper.Start(); err != nil {
		logrus.Fatalln(err)
	}
	defer func() {
		if err := sweeper.Stop(); err != nil {
			logrus.WithError(err).Warn("failed to stop expiry sweeper")
		}
	}()

	r := api.NewRouter(api.Deps{
		JWTSecret:   cfg.JWTSecret,
		TokenExpiry: cfg.TokenExpiry,
		Accounts:    accounts,
		Games:       games,
		Catalog:     catalog,
		Bets:        bets,
		Bonuses:     bonuses,
		Adjustments: adjustments,
		Entries:     entries,
		Auditor:     audit.NewRecorder(conn),
	})

	logrus.WithField("addr", cfg.ListenAddr).Info("server started")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logrus.Fatalln(err)
	}
}

package main

import (
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "unit_booking/internal/adapters/http_server"
	"unit_booking/internal/adapters/observability"
	redisad "unit_booking/internal/adapters/redis"
	"unit_booking/internal/app"
	"unit_booking/internal/shared"
	mysqlrepo "unit_booking/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL)
	bookings := app.NewBookingService(repo, cache, cfg.ExpiryWindow)
	availability := app.NewAvailabilityService(repo, cache)
	units := app.NewUnitService(repo)

	sweeper := app.NewExpirySweeper(bookings, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// http
	srv := server.New(cfg.HTTPRate)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Bookings:     bookings,
		Availability: availability,
		Units:        units,
		Sweeper:      sweeper,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")
	_ = httpSrv.Close()
}

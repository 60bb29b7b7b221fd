package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"unit_booking/internal/adapters/observability"
	"unit_booking/internal/domain"
	"unit_booking/internal/shared"
	mysqlrepo "unit_booking/internal/storage/mysql"
)

const seedUnits = 90

var unitTypes = []domain.UnitType{domain.UnitHome, domain.UnitFlat, domain.UnitApartments}

// Seeds one owner plus a batch of generated units, skipping when the catalog
// is already populated.
func main() {
	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	repo := mysqlrepo.New(db)

	existing, err := repo.ListUnits(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list units failed")
	}
	if len(existing) >= seedUnits {
		log.Info().Int("units", len(existing)).Msg("seeding skipped, catalog already populated")
		return
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email) VALUES ('owner', 'owner@example.com')
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`)
	if err != nil {
		log.Fatal().Err(err).Msg("seed owner failed")
	}
	ownerID, _ := res.LastInsertId()

	sem := semaphore.NewWeighted(8)
	var wg sync.WaitGroup

	for i := 0; i < seedUnits; i++ {
		i := i
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			u := domain.Unit{
				OwnerID:       ownerID,
				Title:         fmt.Sprintf("Unit %d", i+1),
				Description:   "Generated unit",
				Type:          unitTypes[rand.Intn(len(unitTypes))],
				CostPerDay:    decimal.NewFromInt(int64(50 + rand.Intn(300))),
				NumberOfRooms: 1 + rand.Intn(5),
				Floor:         1 + rand.Intn(15),
			}
			created, err := repo.CreateUnit(ctx, u)
			if err != nil {
				log.Warn().Err(err).Str("title", u.Title).Msg("seed unit failed")
				return
			}
			log.Info().Int64("unit_id", created.ID).Str("title", created.Title).Msg("seeded unit")
		}()
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}

package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/beerpong/internal/audit"
	"github.com/AdamBeresnev/beerpong/internal/config"
	"github.com/AdamBeresnev/beerpong/internal/db"
	"github.com/AdamBeresnev/beerpong/internal/service"
	"github.com/AdamBeresnev/beerpong/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

type application struct {
	cfg            *config.Config
	sessionManager *scs.SessionManager
	tournaments    *service.TournamentService
	registry       *service.TeamRegistry
}

func newApplication(cfg *config.Config, database *sqlx.DB, sessionManager *scs.SessionManager) *application {
	participants := store.NewParticipantStore(database)
	consumptions := store.NewConsumptionStore(database)
	credits := store.NewCreditStore(database)

	registry := service.NewTeamRegistry(database, store.NewTeamStore(database), participants)
	ledger := service.NewCreditLedger(credits, consumptions)
	sink := audit.Multi{
		audit.NewStoreSink(store.NewActivityStore(database)),
		audit.NewLogSink(slog.Default()),
	}

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		tournaments:    service.NewTournamentService(database, store.NewTournamentStore(database), credits, registry, ledger, sink),
		registry:       registry,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	router := newRouter(newApplication(cfg, database, sessionManager))

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Printf("Server starting on http://localhost%s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal(err)
	}
}

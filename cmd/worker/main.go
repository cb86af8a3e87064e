package main

import (
	"context"
	"log"
	"time"

	"studydesk/internal/activities"
	"studydesk/internal/config"
	"studydesk/internal/ledger"
	"studydesk/internal/storage"
	"studydesk/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)

	var store ledger.Store
	var history *storage.HistoryRepo
	if cfg.StoreBackend == "postgres" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err := storage.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		store = storage.NewKVRepo(db)
		history = storage.NewHistoryRepo(db)
	} else {
		store = storage.NewFileStore(cfg.StatePath)
	}

	a, err := activities.New(cfg, store, history)
	if err != nil {
		log.Fatal(err)
	}
	activities.Register(w, a)

	log.Printf("studydesk worker listening on %s queue=%s store=%s providers=%q", cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.StoreBackend, cfg.Providers)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"
	"net/http"

	"studydesk/internal/api"
	"studydesk/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("studydesk api listening on %s store=%s providers=%q", cfg.APIAddr, cfg.StoreBackend, cfg.Providers)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/quietroom/noticing/internal/config"
	"github.com/quietroom/noticing/internal/core"
	"github.com/quietroom/noticing/internal/llm"
	"github.com/quietroom/noticing/internal/server"
	"github.com/quietroom/noticing/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	kv, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	// A missing provider just disables reflection; everything else works
	// without an LLM.
	var client llm.Client
	if cfg.LLM.Provider != "" {
		client, err = llm.NewClient(context.Background(), cfg.LLM)
		if err != nil {
			log.Printf("LLM disabled: %v", err)
			client = nil
		}
	}

	nb := core.NewNotebook(kv, client)
	srv := server.NewServer(nb)
	r := srv.SetupRouter()

	port := cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

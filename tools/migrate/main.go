package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|status|version]")
	}
	command := os.Args[1]

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	h, err := db.Open(ctx, db.Options{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		DSN:    cfg.GetDSN(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer h.Close()

	dir := h.LocalMigrations()
	fmt.Printf("Running %s on %s store (%s)\n", command, h.Dialect, dir)

	if err := db.RunGoose(ctx, h, dir, command, log.New(os.Stdout, "", 0)); err != nil {
		log.Fatalf("Migrate %s failed: %v", command, err)
	}

	switch command {
	case "up":
		fmt.Println("Migrations applied successfully")
	case "down":
		fmt.Println("Migration rollback successful")
	}
}

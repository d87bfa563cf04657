// Command migrate applies or reverts the embedded database migrations.
//
//	migrate up
//	migrate down -steps 1
//	migrate version
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go-headhunter-backend/config"
	"go-headhunter-backend/migrations"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up | down [-steps N] | version")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DBUrl == "" {
		log.Fatal("DATABASE_URL is required")
	}

	switch os.Args[1] {
	case "up":
		if err := migrations.Up(cfg.DBUrl); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations applied")
	case "down":
		fs := flag.NewFlagSet("down", flag.ExitOnError)
		steps := fs.Int("steps", 1, "number of migrations to revert")
		_ = fs.Parse(os.Args[2:])
		if err := migrations.Down(cfg.DBUrl, *steps); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Printf("Reverted %d migration(s)", *steps)
	case "version":
		version, dirty, err := migrations.Version(cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to read version: %v", err)
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

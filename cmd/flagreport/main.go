package main

import (
	"context"
	"flag"
	"io"
	"os"

	"eumenides/internal/config"
	"eumenides/internal/infrastructure/report"
	"eumenides/internal/infrastructure/storage"
	"eumenides/pkg/logger"
)

func main() {
	var (
		out   = flag.String("o", "", "output file (defaults to stdout)")
		limit = flag.Int("limit", 1000, "maximum accounts to include")
	)
	flag.Parse()

	log := logger.New("flagreport")
	ctx := context.Background()

	cfg := config.Load()
	if cfg.Database.DSN == "" {
		log.Fatal("DATABASE_DSN is not configured")
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	accounts, err := repo.ListTop(ctx, *limit)
	if err != nil {
		log.Fatalf("list flagged accounts: %v", err)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	if err := report.WriteCSV(w, accounts); err != nil {
		log.Fatalf("write report: %v", err)
	}

	if *out != "" {
		log.Printf("CSV report written to %s (%d accounts)", *out, len(accounts))
	}
}

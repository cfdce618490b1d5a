package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/openwaterdata/waterrights/internal/config"
	"github.com/openwaterdata/waterrights/internal/logger"
	"github.com/openwaterdata/waterrights/internal/wrimport"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		csvPath   = flag.String("csv", "", "path to water rights CSV")
		dbURL     = flag.String("db", os.Getenv("DATABASE_URL"), "DATABASE_URL")
		namespace = flag.String("namespace", wrimport.DefaultNamespace.String(), "UUID namespace for derived ids (stable forever)")
		wipe      = flag.Bool("wipe", false, "DANGER: truncates waterrights tables before importing")
		migrate   = flag.Bool("migrate", false, "create the schema and tables first")
	)
	flag.Parse()

	if *csvPath == "" || *dbURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.NewLogger("local", "info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	base := config.Config{Database: config.DatabaseConfig{Driver: config.DriverPostgres, URL: *dbURL}}
	base.ApplyDefaults()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := wrimport.Config{
		CSVPath:   *csvPath,
		Namespace: *namespace,
		Wipe:      *wipe,
		Migrate:   *migrate,
		Database:  base.Database,
	}
	if err := wrimport.Run(ctx, cfg, log); err != nil {
		log.Fatal("import failed", zap.Error(err))
	}
}

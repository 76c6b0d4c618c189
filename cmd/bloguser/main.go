package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/pitstop/internal/admin"
	"github.com/dmitrijs2005/pitstop/internal/server/config"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pitstop/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	app := admin.NewApp(services.NewUserService(db, rm, cfg), os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Printf("%v", err)
		db.Close()
		os.Exit(1)
	}

}

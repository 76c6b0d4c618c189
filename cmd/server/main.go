package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pitstop/internal/server"
	"github.com/dmitrijs2005/pitstop/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	gin.SetMode(gin.ReleaseMode)

	app, err := server.NewApp(cfg, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}

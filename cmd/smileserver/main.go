// Command smileserver serves smile calibrations over HTTP.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/lyase/quantlib/api"
	"github.com/lyase/quantlib/config"
	"github.com/lyase/quantlib/logger"
)

func main() {
	// A .env file is optional; variables already in the shell win.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(log, cfg.EndCriteria())
	log.Info().
		Str("address", cfg.Server.Address).
		Str("environment", cfg.Environment).
		Msg("starting smile server")

	if err := server.Start(cfg.Server.Address, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package main

import (
	"flag"
	"log"
	"os"

	"aiwealth/internal/di"
	"aiwealth/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	log.Printf("starting: env=%s backend=%s", cfg.Environment, cfg.Backend.Type)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("wiring failed: %v", err)
	}
	log.Printf("clickhouse ready: db=%s", cfg.ClickHouse.Database)
	log.Printf("kafka ready: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)

	// blocks until SIGINT/SIGTERM
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

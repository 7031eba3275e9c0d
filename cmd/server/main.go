package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"lipseyocr/internal/config"
	"lipseyocr/internal/handler"
	"lipseyocr/internal/parser/openai"
	"lipseyocr/internal/render"
	"lipseyocr/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	renderer := render.NewRenderer(&cfg.Render)
	receiptParser := openai.NewParser(&cfg.Parser, &cfg.Prompt)

	processH := handler.NewProcessHandler(
		renderer,
		receiptParser,
		cfg.Render.MaxPages,
		cfg.Render.DefaultPages,
		cfg.Coverage.Threshold,
	)
	healthH := handler.NewHealthHandler()

	r := router.Setup(cfg.Auth.ServiceKey, processH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

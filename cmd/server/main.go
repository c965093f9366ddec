package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"simclinic/internal/auth"
	"simclinic/internal/config"
	"simclinic/internal/evaluation"
	"simclinic/internal/gemini"
	"simclinic/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.Load(); err != nil {
		log.Println("no .env loaded:", err)
	}
	if config.GeminiAPIKey() == "" {
		log.Println("warning: GEMINI_API_KEY not set; evaluations will use neutral default scores")
	}
	if os.Getenv("SIMCLINIC_AUTH_SECRET") == "" {
		log.Println("warning: SIMCLINIC_AUTH_SECRET not set; using dev default")
	}
	if config.ServiceKey() == "" {
		log.Println("warning: SIMCLINIC_SERVICE_KEY not set; internal routes will reject all requests")
	}

	store, err := storage.Connect(config.DatabaseDSN())
	if err != nil {
		log.Fatal("database:", err)
	}

	svc := evaluation.NewService(store, gemini.NewClient())

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "error", "error": "database unreachable"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----- Student API, bearer-token gated -----
	api := r.Group("/api")
	api.Use(auth.Bearer())
	{
		api.POST("/sessions/:id/evaluation", evaluation.EvaluateHandler(svc))
		api.GET("/sessions/:id/evaluation", evaluation.ReportHandler(svc))
	}

	// ----- Internal routes gated by service key -----
	internalRoutes := r.Group("/internal")
	internalRoutes.Use(auth.ServiceKey())
	{
		internalRoutes.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})
	}

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		if strings.HasPrefix(port, ":") {
			addr = port
		} else {
			addr = ":" + port
		}
	}

	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

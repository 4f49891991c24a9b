package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/NaoufalLabrihmi/EMP-Gestion/config"
	"github.com/NaoufalLabrihmi/EMP-Gestion/controllers"
	"github.com/NaoufalLabrihmi/EMP-Gestion/mindee"
	"github.com/NaoufalLabrihmi/EMP-Gestion/store"
)

func main() {
	cfg := config.Load()

	db := store.New(cfg.DBDriver, cfg.DBDSN)
	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("schema migration failed", "err", err)
		os.Exit(1)
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	handlers := &controllers.Employees{
		Store:     db,
		Extractor: mindee.New(cfg.MindeeAPIKey, cfg.MindeeTimeout),
		Redis:     cache,
	}

	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	if cfg.AllowAllOrigins() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.POST("/employees/add", handlers.Add)
	r.GET("/employees/list", handlers.List)
	r.DELETE("/employees/delete/:id", handlers.Delete)
	r.PATCH("/employees/edit/:id", handlers.Edit)
	r.GET("/employees/pdf/:id", handlers.Pdf)

	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

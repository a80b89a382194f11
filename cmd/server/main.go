package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"modulehost/internal/config"
	"modulehost/internal/database"
	"modulehost/internal/handler"
	"modulehost/internal/registry"
	"modulehost/internal/repository"
	"modulehost/internal/router"

	// Registered module implementations. The manifest selects one by
	// name at startup.
	_ "modulehost/internal/plugins/echo"
	_ "modulehost/internal/plugins/ollama"
)

func main() {
	_ = godotenv.Load()

	gin.SetMode(gin.ReleaseMode)

	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Resolve the configured module directory. Every fault from here
	// until the listener binds is startup-fatal: exit non-zero, never
	// start serving.
	manifest, err := registry.ReadManifest(cfg.ModulePath)
	if err != nil {
		log.Fatalf("module load failed: %v", err)
	}

	if cfg.BackendURL != "" {
		manifest.Settings["backend_url"] = cfg.BackendURL
	}
	if cfg.BackendModel != "" {
		manifest.Settings["model"] = cfg.BackendModel
	}
	if _, ok := manifest.Settings["startup_grace_ms"]; !ok {
		manifest.Settings["startup_grace_ms"] = strconv.Itoa(cfg.StartupGraceMs)
	}

	mod, err := registry.New(manifest.Name, manifest.Settings)
	if err != nil {
		log.Fatalf("module load failed: %v", err)
	}

	if err := database.Init(cfg.DBPath); err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer database.Close()

	logRepo := repository.NewRequestLogRepository()
	logWriter := handler.NewLogWriter(logRepo, 1024, 32, time.Second)
	defer logWriter.Stop()

	// One-time initialization; no request is dispatched before this
	// returns.
	if err := mod.Initialize(context.Background()); err != nil {
		log.Fatalf("module %s initialize failed: %v", manifest.Name, err)
	}

	h := handler.NewModuleHandler(mod, logWriter, logRepo)
	r := router.Setup(h)

	port := cfg.ServerPort
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	log.Infof("module host serving %s on http://0.0.0.0:%s", manifest.Name, port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

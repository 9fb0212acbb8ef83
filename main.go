package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"p9e.in/qac/config"
	"p9e.in/qac/middleware"
	"p9e.in/qac/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	cfg, envErr := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.InitLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	log := config.Log
	defer log.Sync()

	if envErr != nil {
		log.Info("No .env file found, using system environment variables")
	}
	log.Info("Starting QAC service", zap.String("version", Version), zap.String("build_time", BuildTime))

	middleware.SetJWTSecret(cfg.JWTSecret)

	if err := config.Connect(cfg); err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	if err := config.Migrations(config.DB); err != nil {
		log.Fatal("could not run migrations", zap.Error(err))
	}
	if cfg.SeedReference {
		if err := config.SeedReferenceData(config.DB); err != nil {
			log.Warn("reference seeding encountered issues", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           enableCORS(cfg.CORSOrigin, routes.RegisterRoutes(log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := config.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func enableCORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

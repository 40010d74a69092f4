package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"esgishoma-backend-go/internal/blob"
	"esgishoma-backend-go/internal/config"
	httpapi "esgishoma-backend-go/internal/http"
	"esgishoma-backend-go/internal/services"
	"esgishoma-backend-go/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	cleanupLogs, err := setupLogger()
	if err != nil {
		log.Printf("logger setup failed: %v", err)
	} else {
		defer cleanupLogs()
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}
	records, err := store.Open(filepath.Join(cfg.DataDir, "records.db"))
	if err != nil {
		log.Fatalf("record store: %v", err)
	}
	defer records.Close()
	blobs, err := blob.Open(filepath.Join(cfg.DataDir, "blobs.db"))
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	defer blobs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := services.TokenService{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTTL,
	}
	auth := &services.AuthService{
		Store:         records,
		Tokens:        tokens,
		Threshold:     cfg.LockoutThreshold,
		LockoutWindow: cfg.LockoutWindow,
		MinDelay:      cfg.LoginDelayMin,
		MaxDelay:      cfg.LoginDelayMax,
		HoneypotDelay: cfg.HoneypotDelay,
	}
	if err := auth.SeedAdmin(); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	hub := services.NewTrafficHub()
	go hub.Run(ctx)

	registry := services.NewRegistry(records, blobs, services.RegistryOptions{
		Tokens: tokens,
		Auth:   auth,
		Mailer: services.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			FromName: cfg.SMTPFromName,
		},
		Suggester: &services.GenAIClient{
			Endpoint: cfg.SuggestAPIURL,
			APIKey:   cfg.SuggestAPIKey,
		},
		Hub:      hub,
		DiskPath: cfg.DataDir,
	})

	server := httpapi.NewServer(cfg, registry)

	addr := ":8080"
	if value := os.Getenv("PORT"); value != "" {
		addr = ":" + value
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	log.Printf("shutdown complete")
}

const logFilePrefix = "server-"

// logRotation keeps log output going to one dated file per day, mirrored to
// stdout, and prunes files older than the retention window.
type logRotation struct {
	dir       string
	retention int

	mu   sync.Mutex
	day  string
	file *os.File
}

func setupLogger() (func(), error) {
	rot := &logRotation{
		dir:       envDefault("LOG_DIR", "storage/logs"),
		retention: 7,
	}
	if value := os.Getenv("LOG_RETENTION_DAYS"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 && parsed <= 7 {
			rot.retention = parsed
		}
	}
	if err := os.MkdirAll(rot.dir, 0o755); err != nil {
		return nil, err
	}
	if err := rot.rotate(time.Now()); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rot.rotate(time.Now()); err != nil {
					log.Printf("log rotation: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		rot.mu.Lock()
		_ = rot.file.Close()
		rot.mu.Unlock()
	}, nil
}

func (r *logRotation) rotate(now time.Time) error {
	day := now.Format("2006-01-02")
	r.mu.Lock()
	defer r.mu.Unlock()
	if day == r.day && r.file != nil {
		return nil
	}
	path := filepath.Join(r.dir, logFilePrefix+day+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	if r.file != nil {
		_ = r.file.Close()
	}
	r.file = file
	r.day = day
	r.prune(now)
	return nil
}

func (r *logRotation) prune(now time.Time) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -(r.retention - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), ".log"))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(r.dir, name))
		}
	}
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"thelastshow.org/internal/ai"
	"thelastshow.org/internal/auth"
	"thelastshow.org/internal/config"
	"thelastshow.org/internal/httpapi"
	"thelastshow.org/internal/media"
	"thelastshow.org/internal/obituary"
	"thelastshow.org/internal/obs"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("LASTSHOW_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Postgres when configured, in-memory stores otherwise (local runs).
	var db *sql.DB
	var users auth.UserStore
	var records obituary.Store
	if cfg.DatabaseDSN != "" {
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		users = auth.NewPGStore(db)
		records = obituary.NewPGStore(db)
	} else {
		log.Println("LASTSHOW_PG_DSN not set, using in-memory stores")
		users = auth.NewInMemory()
		records = obituary.NewInMemory()
	}

	tokens, err := auth.NewTokens(cfg.AuthSecret,
		auth.WithIssuer(cfg.TokenIssuer),
		auth.WithTTL(cfg.TokenTTL),
	)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	authSvc := auth.NewService(users, tokens)

	writer := ai.NewGroq(ai.GroqConfig{
		APIKey: cfg.GroqAPIKey,
		Model:  cfg.GroqModel,
	})

	var images obituary.ImageUploader
	switch {
	case cfg.S3Bucket != "":
		images, err = media.NewS3Uploader(context.Background(), media.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			log.Fatalf("s3 uploader: %v", err)
		}
	case cfg.ImageUploadURL != "":
		images = media.NewHTTPImageUploader(cfg.ImageUploadURL, nil)
	}

	var speech obituary.SpeechSynthesizer
	if cfg.TTSURL != "" {
		speech = media.NewHTTPSpeechSynthesizer(cfg.TTSURL, nil)
	}

	obits := obituary.NewService(records, writer, images, speech)

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, obits)
	api.SetMaxBodyBytes(cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      90 * time.Second, // obituary creation waits on model and media calls
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting lastshow-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

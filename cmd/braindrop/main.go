package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"braindrop/internal/config"
	"braindrop/internal/domain"
	"braindrop/internal/session"
	"braindrop/internal/storage"
	"braindrop/internal/sync"
	"braindrop/internal/web"
)

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		slog.Error("parsing flags", "error", err)
		os.Exit(2)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.Database)
	if err != nil {
		slog.Error("opening database", "path", cfg.Database, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database)

	state, err := sync.Run(db, sync.Options{
		Dir:      cfg.Catalog.Dir,
		GitURL:   cfg.Catalog.GitURL,
		CacheDir: cfg.Catalog.CacheDir,
		Defaults: domain.Settings{
			NewPerDay:     cfg.Study.NewPerDay,
			ReviewsPerDay: cfg.Study.ReviewsPerDay,
			ExamDate:      time.Now().AddDate(0, 0, cfg.Study.ExamDays),
		},
	}, time.Now())
	if err != nil {
		slog.Error("syncing catalog", "error", err)
		os.Exit(1)
	}

	ctrl := session.NewController(state, db)
	defer ctrl.Close()
	ctrl.SetTiming(
		time.Duration(cfg.Session.CorrectDelayMS)*time.Millisecond,
		time.Duration(cfg.Session.WrongDelayMS)*time.Millisecond,
	)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      web.NewServer(ctrl),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	slog.Info("listening", "addr", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"path/filepath"

	"journey/internal/catalog"
	"journey/internal/journey"
	"journey/internal/platform/config"
	"journey/internal/platform/logger"
	"journey/internal/storage"
	"journey/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.LogMode, cfg.LogRedact)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		lg.Fatal("load catalog", "path", cfg.CatalogPath, "error", err)
	}

	var progress storage.Store
	switch cfg.Store {
	case "sqlite":
		db, err := storage.NewSQLite(cfg.SQLitePath)
		if err != nil {
			lg.Fatal("open sqlite", "path", cfg.SQLitePath, "error", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(context.Background()); err != nil {
			lg.Fatal("sqlite schema", "error", err)
		}
		progress = db
	default:
		progress = storage.NewMemoryStore()
	}

	tmpl := template.Must(template.ParseFiles(
		filepath.Join(cfg.TemplatesDir, "layout.html"),
		filepath.Join(cfg.TemplatesDir, "journey.html"),
	))

	var video journey.VideoSource = journey.EmbeddedPlayer{}
	if cfg.VideoMode == "timer" {
		video = journey.TimerFallback{Default: cfg.DefaultDuration}
	}

	srv := &web.Server{
		Catalog:  cat,
		Sessions: web.NewSessions(),
		Progress: progress,
		Tmpl:     tmpl,
		Log:      lg,
		Journey: journey.Options{
			StateKey:            cfg.StateKey,
			Video:               video,
			CelebrationInterval: cfg.CelebrationInterval,
			Strict:              cfg.Strict,
		},
		MediaDir:    cfg.MediaDir,
		VisitorIdle: cfg.VisitorIdle,
	}
	go srv.RunSweeper(context.Background(), cfg.VisitorIdle/4)

	lg.Info("listening", "addr", cfg.Addr, "chapters", cat.Count(), "store", cfg.Store, "video", cfg.VideoMode)
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		lg.Fatal("server stopped", "error", err)
	}
}

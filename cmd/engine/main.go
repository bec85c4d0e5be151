package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"starz-engine/internal/config"
	"starz-engine/internal/events"
	"starz-engine/internal/httpapi"
	"starz-engine/internal/intake"
	"starz-engine/internal/poll"
	"starz-engine/internal/presence"
	"starz-engine/internal/scheduler"
	"starz-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided (the desktop shell passes one),
	// else local folder.
	dataDir := os.Getenv("STARZ_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// Two engines on one data dir would fight over sqlite and the mailbox.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock %s: %v", lock.Path(), err)
	}
	if !locked {
		log.Fatalf("another engine instance already holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayIndustries(&cfg, filepath.Join(dataDir, "industries.yml")); err != nil {
			return cfg, fmt.Errorf("industries overlay: %w", err)
		}
		norm, vr := config.NormalizeAndValidate(cfg)
		for _, w := range vr.Warnings {
			log.Printf("[config] warn: %s", w)
		}
		if !vr.OK() {
			return cfg, fmt.Errorf("config invalid: %s", strings.Join(vr.Errors, "; "))
		}
		return norm, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	db, err := store.Open(filepath.Join(dataDir, "starz.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()
	researcher := presence.NewResearcher(db.Pool)

	var intakeStatus atomic.Value // stores intake.Status
	intakeStatus.Store(intake.Status{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poll.StartPoller(db.Pool, &cfgVal, &intakeStatus, hub)

	cleanupEvery := time.Duration(cfg.Polling.CleanupHours) * time.Hour
	go scheduler.Every(ctx, cleanupEvery, "cleanup", func(ctx context.Context) error {
		n, err := store.CleanupOldLeads(db.Pool)
		if err == nil && n > 0 {
			log.Printf("[cleanup] deleted=%d", n)
		}
		return err
	})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db.Pool,
		Hub:          hub,
		CfgVal:       &cfgVal,
		IntakeStatus: &intakeStatus,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		DeleteLead:   store.DeleteLead,
		RunIntake: func(db *sql.DB, cfg config.Config, onNewLead func(id int64, company string)) (int, error) {
			return poll.PollOnce(db, cfg, researcher, onNewLead)
		},
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Shutdown needs srv, so the route is attached here rather than in NewMux.
	// Token keeps random localhost processes from stopping the engine.
	shutdownToken := newToken()
	mux.HandleFunc("/shutdown", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("X-Shutdown-Token") != shutdownToken {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
		go func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	})

	log.Printf("[engine] listening on http://%s data_dir=%s", addr, dataDir)
	log.Printf("[engine] shutdown token: %s", shutdownToken)

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Printf("[engine] stopped")
}

func newToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

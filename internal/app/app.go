// Package app is the application layer between the CLI and the HTTP
// server. It constructs all dependencies from config and manages their
// lifecycle on Close.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"groundcms/internal/activity"
	"groundcms/internal/auth"
	"groundcms/internal/blob"
	"groundcms/internal/config"
	"groundcms/internal/content"
	"groundcms/internal/logging"
	"groundcms/internal/server"
	"groundcms/internal/store"
)

const shutdownTimeout = 10 * time.Second

// BackendStatus is one backend's health as reported by Status.
type BackendStatus struct {
	Name    string
	Backend string
	Err     error
}

// App wires the storage, blob, audit and HTTP layers from config.
// The caller must call Close when done.
type App struct {
	cfg     *config.Config
	store   store.Store
	blobs   blob.Store
	log     *activity.Log
	handler *server.Server
	logger  logging.Logger
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.NewStoreFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	blobs, err := blob.NewStoreFromConfig(ctx, cfg.Blob)
	if err != nil {
		closeQuiet(st)
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	slogger, logFile, err := newLogger(cfg.LogDir)
	if err != nil {
		closeQuiet(st)
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := logging.NewSlogLogger(slogger)

	actLog := activity.NewLog(st, nil, nil)

	deps := content.Deps{
		Store:   st,
		Blobs:   blobs,
		Changes: actLog,
		Logger:  logger,
	}

	uploadsDir := ""
	if cfg.Blob.Type == "filesystem" {
		uploadsDir = cfg.Blob.UploadsDir
	}

	handler := server.New(server.Deps{
		Auth:       auth.NewAuthenticator(cfg.Admin.Username, cfg.Admin.Password, cfg.IsProduction(), nil),
		Machines:   content.NewMachines(deps),
		Services:   content.NewServices(deps),
		Projects:   content.NewProjects(deps),
		Pages:      content.NewPages(deps),
		Activity:   actLog,
		Blobs:      blobs,
		Store:      st,
		Logger:     logger,
		UploadsDir: uploadsDir,
	})

	return &App{
		cfg:     cfg,
		store:   st,
		blobs:   blobs,
		log:     actLog,
		handler: handler,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.cfg.ListenAddr,
		Handler: a.handler,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("server listening",
			"addr", a.cfg.ListenAddr,
			"environment", a.cfg.Environment,
			"storage", a.store.Backend(),
			"blobs", a.blobs.Backend())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Status pings each configured backend and reports the results.
func (a *App) Status(ctx context.Context) []BackendStatus {
	return []BackendStatus{
		{Name: "storage", Backend: a.store.Backend(), Err: a.store.Ping(ctx)},
		{Name: "blobs", Backend: a.blobs.Backend(), Err: a.blobs.Ping(ctx)},
	}
}

// Close releases backend connections and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := closeQuiet(a.store); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if err := closeQuiet(a.blobs); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing blob store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// closeQuiet closes v when its backend holds a connection.
func closeQuiet(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Package ui provides the leaplua playground: a local web UI and JSON API
// for compiling snippets against any Lua target and browsing the project's
// source files, the capability matrix and the compile run history.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaplua/internal/state"
	"github.com/leapstack-labs/leaplua/pkg/core"
)

// Server is the playground server.
type Server struct {
	handlers *Handlers
	port     int
	watch    bool
	root     string
	logger   *slog.Logger
	events   *broadcaster
}

// Config holds configuration for the playground server.
type Config struct {
	// Options are the compile options used until a visitor picks others
	Options core.CompileOptions
	// Store provides the compile run history (optional)
	Store state.Store
	// Root is the project directory whose sources are listed and watched
	Root          string
	Port          int
	Watch         bool
	SessionSecret string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// NewServer creates a new playground server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "ui")

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	events := newBroadcaster()
	return &Server{
		handlers: NewHandlers(HandlersConfig{
			Defaults: cfg.Options,
			Store:    cfg.Store,
			Sessions: sessionStore,
			Events:   events,
			Root:     cfg.Root,
			Logger:   logger,
		}),
		port:   cfg.Port,
		watch:  cfg.Watch,
		root:   cfg.Root,
		logger: logger,
		events: events,
	}
}

// Handler returns the playground's routes without request logging.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.handlers.Routes(r)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting playground", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: middleware.Logger(s.Handler()),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.root != "" {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down playground")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchFiles broadcasts changes to source files below the project root.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.root); err != nil {
		// Keep serving without live updates.
		s.logger.Error("failed to watch project directory", "error", err)
	}

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && isWatchedDir(event.Name) {
				_ = watcher.Add(event.Name)
			}
			if !isSourceFile(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("source changed", "file", name)
				s.events.Broadcast(name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all non-hidden subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isWatchedDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir() && !skipDir(filepath.Base(path))
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

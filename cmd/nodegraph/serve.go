package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/live"
)

func newServeCommand(g *globals) *cobra.Command {
	var port int
	var host string
	var engine string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live editor server",
		Long: `Serves editor sessions over WebSocket at /live, the component catalog at
/api/catalog, Prometheus metrics at /metrics and a health check at /healthz.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(); err != nil {
				return err
			}
			cfg := g.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("layout") {
				cfg.Layout.Engine = engine
			}
			if cmd.Flags().Changed("watch") {
				cfg.Catalog.Watch = watch
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(g)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "Host to bind to")
	cmd.Flags().StringVar(&engine, "layout", "force", "Layout engine: force or grid")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the catalog when its file changes")

	return cmd
}

func runServe(g *globals) error {
	cfg := g.cfg
	cat, err := g.loadCatalog()
	if err != nil {
		return err
	}

	opts := &live.Options{
		Layout:        cfg.Layout.Engine,
		LayoutOptions: cfg.Layout.Options,
		Geometry:      cfg.Geometry,
		FrameInterval: time.Second / time.Duration(cfg.Server.FrameRate),
		Logger:        g.log,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		allowed := cfg.Server.AllowedOrigins
		opts.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(allowed, r.Header.Get("Origin"))
		}
	}
	liveServer := live.NewServer(cat, opts)

	if cfg.Catalog.Watch {
		stop, err := watchCatalog(g, liveServer)
		if err != nil {
			return err
		}
		defer stop()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           liveServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		g.log.Info("listening", zap.String("addr", "http://"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	}

	g.log.Info("shutting down")
	liveServer.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// watchCatalog reloads the catalog into srv when its file changes. Bursts
// of events are coalesced with a 100ms debounce. A catalog that fails to
// load leaves the previous one in place.
func watchCatalog(g *globals, srv *live.Server) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	path, err := filepath.Abs(g.cfg.Catalog.Path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	g.log.Info("watching catalog", zap.String("path", path))

	done := make(chan struct{})
	go func() {
		debounce := time.NewTimer(0)
		<-debounce.C
		pending := false

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || event.Has(fsnotify.Chmod) {
					continue
				}
				pending = true
				debounce.Reset(100 * time.Millisecond)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				g.log.Warn("watcher error", zap.Error(err))

			case <-debounce.C:
				if !pending {
					continue
				}
				pending = false
				cat, err := g.loadCatalog()
				if err != nil {
					g.log.Warn("catalog reload failed, keeping previous", zap.Error(err))
					continue
				}
				srv.SetCatalog(cat)

			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}

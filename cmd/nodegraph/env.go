package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/recera/nodegraph/internal/config"
	"github.com/recera/nodegraph/internal/logging"
	"github.com/recera/nodegraph/pkg/catalog"
	"github.com/recera/nodegraph/pkg/editor"
	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/recipe"
)

// maxSettleTicks bounds headless layout runs.
const maxSettleTicks = 2000

// globals are the persistent flags shared by every command.
type globals struct {
	configPath  string
	logLevel    string
	dev         bool
	catalogPath string

	cfg *config.Config
	log *zap.Logger
}

// setup loads the config and builds the logger. Flags take precedence
// over the config file.
func (g *globals) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}

	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.dev {
		cfg.Log.Development = true
	}
	if g.catalogPath != "" {
		cfg.Catalog.Path = g.catalogPath
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	g.cfg = cfg
	g.log = logger
	return nil
}

func (g *globals) loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.LoadFile(g.cfg.Catalog.Path, catalog.WithLogger(g.log))
	if err != nil {
		return nil, err
	}
	g.log.Debug("catalog loaded", zap.String("path", g.cfg.Catalog.Path), zap.Int("components", cat.Len()))
	return cat, nil
}

func (g *globals) graphOptions() []graph.Option {
	var opts []graph.Option
	if g.cfg.Geometry != nil {
		opts = append(opts, graph.WithMetrics(*g.cfg.Geometry))
	}
	return opts
}

// openRecipe builds a headless editor session from a recipe file.
func (g *globals) openRecipe(path, engine string) (*editor.Session, *recipe.Result, error) {
	cat, err := g.loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if engine == "" {
		engine = g.cfg.Layout.Engine
	}

	sess := editor.New(cat,
		editor.WithLogger(g.log),
		editor.WithLayout(engine),
		editor.WithLayoutOptions(g.cfg.Layout.Options),
		editor.WithGraphOptions(g.graphOptions()...),
	)
	res, err := sess.LoadRecipe(string(data), true)
	if err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return sess, res, nil
}

// settle ticks the layout until it stops moving and returns the tick count.
func settle(sess *editor.Session, limit int) int {
	if limit <= 0 {
		limit = maxSettleTicks
	}
	for i := 0; i < limit; i++ {
		if !sess.Tick() {
			return i
		}
	}
	return limit
}

func printWarnings(res *recipe.Result) {
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

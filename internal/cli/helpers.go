package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/picklr-io/slsloop/internal/config"
	"github.com/picklr-io/slsloop/internal/ir"
	"github.com/picklr-io/slsloop/internal/lifecycle"
	"github.com/picklr-io/slsloop/internal/loader"
	"github.com/picklr-io/slsloop/internal/logging"
	"github.com/picklr-io/slsloop/internal/naming"
	"github.com/picklr-io/slsloop/internal/plugin/recursiveloop"
	"github.com/picklr-io/slsloop/internal/schema"
)

// project is a loaded service together with the host capabilities the
// plugins are wired to.
type project struct {
	dir     string
	cfg     *config.Config
	loader  *loader.Loader
	service *ir.Service
	schema  *schema.Handler
	hooks   *lifecycle.Registry
}

// projectDir resolves the optional directory argument, defaulting to the
// working directory.
func projectDir(args []string) (string, error) {
	if len(args) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}

	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", args[0], err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat path %s: %w", args[0], err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", args[0])
	}
	return absPath, nil
}

// loadConfig resolves settings for dir, applies flag overrides and
// initializes logging.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// openProject loads the service descriptor of dir and registers the plugins.
func openProject(ctx context.Context, dir string, cfg *config.Config) (*project, error) {
	l := loader.New(dir)

	servicePath := cfg.ServiceFile
	if servicePath == "" {
		found, err := l.FindService()
		if err != nil {
			return nil, err
		}
		servicePath = found
	}

	svc, err := l.LoadService(ctx, servicePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	logging.Debug("loaded service", "path", servicePath, "service", svc.Name, "functions", len(svc.Functions))

	p := &project{
		dir:     dir,
		cfg:     cfg,
		loader:  l,
		service: svc,
		schema:  schema.NewHandler(),
		hooks:   lifecycle.NewRegistry(),
	}
	if err := p.registerPlugins(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *project) registerPlugins() error {
	plugin, err := recursiveloop.New(recursiveloop.Options{
		Service: p.service,
		Naming:  naming.AWS{},
		Schema:  p.schema,
	})
	if err != nil {
		return fmt.Errorf("failed to load plugin %s: %w", recursiveloop.Name, err)
	}
	return p.hooks.Register(recursiveloop.Name, plugin)
}

// Package bootstrap turns CLI flags into a configured site module.
package bootstrap

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	site "github.com/eureka-automation/eureka-site"
	"github.com/eureka-automation/eureka-site/internal/di"
)

// Options carries the global CLI flags. Empty values keep what site.yaml and
// the environment configured.
type Options struct {
	ConfigFile string
	Workdir    string
	OutputDir  string
	BasePath   string
	SiteURL    string
	Endpoint   string
	Addr       string
	LogLevel   string
	LogFormat  string
	LogOutput  io.Writer
	Version    string
}

// Resources is what the CLI commands run against.
type Resources struct {
	Module *site.Module
	Config site.Config
}

// LoadConfig resolves site.yaml under the working directory and applies the
// flag overrides on top of it.
func LoadConfig(opts Options) (site.Config, error) {
	workdir := workdirOf(opts)
	cfg, err := site.LoadConfig(site.LoadOptions{
		File:  opts.ConfigFile,
		Paths: []string{workdir, filepath.Join(workdir, "site")},
	})
	if err != nil {
		return site.Config{}, err
	}

	if v := strings.TrimSpace(opts.OutputDir); v != "" {
		cfg.Generator.OutputDir = v
	}
	if v := strings.TrimSpace(opts.BasePath); v != "" {
		cfg.Site.BasePath = v
	}
	if v := strings.TrimSpace(opts.SiteURL); v != "" {
		cfg.Site.URL = v
	}
	if v := strings.TrimSpace(opts.Endpoint); v != "" {
		cfg.Careers.Endpoint = v
	}
	if v := strings.TrimSpace(opts.Addr); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.Logging.Level = v
	}
	switch v := strings.TrimSpace(opts.LogFormat); {
	case v != "":
		cfg.Logging.Format = v
	case interactive(opts.LogOutput):
		cfg.Logging.Format = "pretty"
	}
	if !filepath.IsAbs(cfg.Generator.OutputDir) {
		cfg.Generator.OutputDir = filepath.Join(workdir, cfg.Generator.OutputDir)
	}
	return cfg, cfg.Validate()
}

// BuildModule loads the configuration and wires the site module over the
// working directory.
func BuildModule(ctx context.Context, opts Options) (*Resources, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	diOpts := []di.Option{
		di.WithFS(os.DirFS(workdirOf(opts))),
		di.WithVersion(opts.Version),
	}
	if opts.LogOutput != nil {
		diOpts = append(diOpts, di.WithLogOutput(opts.LogOutput))
	}
	module, err := site.New(ctx, cfg, diOpts...)
	if err != nil {
		return nil, err
	}
	return &Resources{Module: module, Config: cfg}, nil
}

func workdirOf(opts Options) string {
	if dir := strings.TrimSpace(opts.Workdir); dir != "" {
		return dir
	}
	return "."
}

// interactive reports whether w is a terminal; a nil writer means stderr.
func interactive(w io.Writer) bool {
	if w == nil {
		w = os.Stderr
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

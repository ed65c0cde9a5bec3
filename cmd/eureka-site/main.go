// Command eureka-site builds the static site and runs the preview and relay
// server.
package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	command "github.com/goliatone/go-command"

	"github.com/eureka-automation/eureka-site/cmd/eureka-site/internal/bootstrap"
	"github.com/eureka-automation/eureka-site/internal/careers"
	careerscmd "github.com/eureka-automation/eureka-site/internal/commands/careers"
	staticcmd "github.com/eureka-automation/eureka-site/internal/commands/static"
	"github.com/eureka-automation/eureka-site/internal/generator"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

var version = "dev"

// CLI defines the global flags and subcommands.
type CLI struct {
	Config    string `short:"c" help:"Path to site.yaml (default: search the working directory and site/)."`
	Workdir   string `short:"C" default:"." help:"Directory holding the site/ tree."`
	Output    string `short:"o" help:"Override generator.output_dir."`
	BasePath  string `help:"Override the deployment sub-path (BASE_PATH)."`
	SiteURL   string `help:"Override the absolute site URL (SITE_URL)."`
	LogLevel  string `short:"l" help:"Log level (trace, debug, info, warn, error)."`
	LogFormat string `help:"Log format (json, console, pretty)."`

	Build    BuildCmd    `cmd:"" help:"Render every locale and route into the output directory."`
	Diff     DiffCmd     `cmd:"" help:"Dry-run a build and report what would change."`
	Validate ValidateCmd `cmd:"" help:"Check translation parity, required keys and video URLs."`
	Sitemap  SitemapCmd  `cmd:"" help:"Rewrite sitemap.xml and robots.txt."`
	Clean    CleanCmd    `cmd:"" help:"Remove generated artifacts."`
	Serve    ServeCmd    `cmd:"" help:"Serve the output directory and the careers relay."`
	Apply    ApplyCmd    `cmd:"" help:"Submit a careers application through the relay pipeline."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// BuildCmd renders the site.
type BuildCmd struct {
	Locale       []string `short:"L" help:"Limit the build to these locales."`
	Route        []string `short:"r" help:"Limit the build to these route names."`
	Force        bool     `short:"f" help:"Re-render pages the manifest reports as unchanged."`
	DryRun       bool     `help:"Render without writing."`
	AllowMissing bool     `help:"Build even when validation reports missing keys."`
}

// DiffCmd runs a dry-run build.
type DiffCmd struct {
	Locale []string `short:"L" help:"Limit the diff to these locales."`
	Route  []string `short:"r" help:"Limit the diff to these route names."`
	Force  bool     `short:"f" help:"Ignore the manifest."`
}

// ValidateCmd runs the content checks.
type ValidateCmd struct{}

// SitemapCmd rewrites the auxiliary files.
type SitemapCmd struct{}

// CleanCmd removes generated artifacts.
type CleanCmd struct{}

// ServeCmd runs the preview and relay server.
type ServeCmd struct {
	Addr     string `short:"a" help:"Listen address (default: server.addr)."`
	Build    bool   `short:"b" help:"Build the site before serving."`
	Endpoint string `help:"Override careers.endpoint for the relay."`
}

// ApplyCmd submits one application.
type ApplyCmd struct {
	FirstName string `required:"" help:"Applicant first name."`
	LastName  string `required:"" help:"Applicant last name."`
	Email     string `required:"" help:"Applicant email."`
	Phone     string `required:"" help:"Applicant phone."`
	Position  string `required:"" help:"Desired position."`
	Message   string `help:"Optional message."`
	Resume    string `required:"" type:"existingfile" help:"Path to the resume file."`
	Consent   bool   `help:"Confirm the PDPA consent."`
	Locale    string `help:"Locale of the confirmation message."`
	Endpoint  string `help:"Override careers.endpoint."`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

type handlerSet struct {
	build    command.Commander[staticcmd.BuildSiteCommand]
	diff     command.Commander[staticcmd.DiffSiteCommand]
	validate command.Commander[staticcmd.ValidateSiteCommand]
	sitemap  command.Commander[staticcmd.BuildSitemapCommand]
	clean    command.Commander[staticcmd.CleanSiteCommand]
	apply    command.Commander[careerscmd.SubmitApplicationCommand]
}

type serverRunner interface {
	Run(ctx context.Context) error
}

type moduleResources struct {
	handlers handlerSet
	server   serverRunner
	logger   interfaces.Logger
}

type moduleOptions struct {
	bootstrap.Options
}

var moduleBuilder = buildModule

func buildModule(ctx context.Context, opts moduleOptions) (*moduleResources, error) {
	resources, err := bootstrap.BuildModule(ctx, opts.Options)
	if err != nil {
		return nil, err
	}
	container := resources.Module.Container()
	static := container.StaticHandlers()
	careersHandlers := container.CareersHandlers()
	return &moduleResources{
		handlers: handlerSet{
			build:    static.Build,
			diff:     static.Diff,
			validate: static.Validate,
			sitemap:  static.Sitemap,
			clean:    static.Clean,
			apply:    careersHandlers.Apply,
		},
		server: resources.Module.Server(),
		logger: logging.ModuleLogger(container.LoggerProvider(), "site.cli"),
	}, nil
}

// app is bound into every command's Run method.
type app struct {
	ctx    context.Context
	cli    *CLI
	stdout io.Writer
	stderr io.Writer
}

func (a *app) module(overrides func(*bootstrap.Options)) (*moduleResources, error) {
	opts := bootstrap.Options{
		ConfigFile: a.cli.Config,
		Workdir:    a.cli.Workdir,
		OutputDir:  a.cli.Output,
		BasePath:   a.cli.BasePath,
		SiteURL:    a.cli.SiteURL,
		LogLevel:   a.cli.LogLevel,
		LogFormat:  a.cli.LogFormat,
		LogOutput:  a.stderr,
		Version:    version,
	}
	if overrides != nil {
		overrides(&opts)
	}
	resources, err := moduleBuilder(a.ctx, moduleOptions{Options: opts})
	if err != nil {
		return nil, err
	}
	if resources.logger == nil {
		resources.logger = logging.NoOp()
	}
	return resources, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWith(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "eureka-site:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return runWith(context.Background(), args, io.Discard, io.Discard)
}

func runWith(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("eureka-site"),
		kong.Description("Build and serve the bilingual Eureka Automation site."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&app{ctx: ctx, cli: &cli, stdout: stdout, stderr: stderr})
}

// Run executes the build command.
func (c *BuildCmd) Run(a *app) error {
	res, err := a.module(nil)
	if err != nil {
		return err
	}
	if res.handlers.build == nil {
		return fmt.Errorf("build handler not configured")
	}
	return res.handlers.build.Execute(a.ctx, staticcmd.BuildSiteCommand{
		Locales:        c.Locale,
		Routes:         c.Route,
		Force:          c.Force,
		DryRun:         c.DryRun,
		AllowMissing:   c.AllowMissing,
		ResultCallback: logResult(res.logger),
	})
}

// Run executes the diff command.
func (c *DiffCmd) Run(a *app) error {
	res, err := a.module(nil)
	if err != nil {
		return err
	}
	if res.handlers.diff == nil {
		return fmt.Errorf("diff handler not configured")
	}
	return res.handlers.diff.Execute(a.ctx, staticcmd.DiffSiteCommand{
		Locales:        c.Locale,
		Routes:         c.Route,
		Force:          c.Force,
		ResultCallback: logResult(res.logger),
	})
}

// Run executes the validate command.
func (c *ValidateCmd) Run(a *app) error {
	res, err := a.module(nil)
	if err != nil {
		return err
	}
	if res.handlers.validate == nil {
		return fmt.Errorf("validate handler not configured")
	}
	return res.handlers.validate.Execute(a.ctx, staticcmd.ValidateSiteCommand{
		ReportCallback: func(report *generator.ValidationReport) {
			if report.OK() {
				fmt.Fprintln(a.stdout, "site content is valid")
				return
			}
			fmt.Fprintln(a.stdout, report.Err())
		},
	})
}

// Run executes the sitemap command.
func (c *SitemapCmd) Run(a *app) error {
	res, err := a.module(nil)
	if err != nil {
		return err
	}
	if res.handlers.sitemap == nil {
		return fmt.Errorf("sitemap handler not configured")
	}
	if err := res.handlers.sitemap.Execute(a.ctx, staticcmd.BuildSitemapCommand{}); err != nil {
		return err
	}
	res.logger.Info("cli.completed", "operation", "build_sitemap")
	return nil
}

// Run executes the clean command.
func (c *CleanCmd) Run(a *app) error {
	res, err := a.module(nil)
	if err != nil {
		return err
	}
	if res.handlers.clean == nil {
		return fmt.Errorf("clean handler not configured")
	}
	if err := res.handlers.clean.Execute(a.ctx, staticcmd.CleanSiteCommand{}); err != nil {
		return err
	}
	res.logger.Info("cli.completed", "operation", "clean")
	return nil
}

// Run executes the serve command.
func (c *ServeCmd) Run(a *app) error {
	res, err := a.module(func(opts *bootstrap.Options) {
		opts.Addr = c.Addr
		opts.Endpoint = c.Endpoint
	})
	if err != nil {
		return err
	}
	if c.Build {
		if res.handlers.build == nil {
			return fmt.Errorf("build handler not configured")
		}
		if err := res.handlers.build.Execute(a.ctx, staticcmd.BuildSiteCommand{ResultCallback: logResult(res.logger)}); err != nil {
			return err
		}
	}
	if res.server == nil {
		return fmt.Errorf("server not configured")
	}
	return res.server.Run(a.ctx)
}

// Run executes the apply command.
func (c *ApplyCmd) Run(a *app) error {
	res, err := a.module(func(opts *bootstrap.Options) {
		opts.Endpoint = c.Endpoint
	})
	if err != nil {
		return err
	}
	if res.handlers.apply == nil {
		return fmt.Errorf("apply handler not configured")
	}

	resume, file, err := openResume(c.Resume)
	if err != nil {
		return err
	}
	defer file.Close()

	return res.handlers.apply.Execute(a.ctx, careerscmd.SubmitApplicationCommand{
		Application: careers.Application{
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			Email:        c.Email,
			Phone:        c.Phone,
			Position:     c.Position,
			Message:      c.Message,
			PDPAAccepted: c.Consent,
		},
		Resume: resume,
		Locale: c.Locale,
		ReceiptCallback: func(receipt careers.Receipt) {
			res.logger.Info("cli.completed",
				"operation", "apply",
				"transport", string(receipt.Transport),
				"confirmed", receipt.Confirmed,
				"status", receipt.StatusCode,
			)
			fmt.Fprintf(a.stdout, "application sent (confirmed=%t)\n", receipt.Confirmed)
		},
	})
}

// Run prints the version.
func (c *VersionCmd) Run(a *app) error {
	fmt.Fprintf(a.stdout, "eureka-site %s\n", version)
	return nil
}

// openResume opens path and sniffs its content type, preferring the
// extension's registered type.
func openResume(path string) (*careers.Attachment, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open resume: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat resume: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("rewind resume: %w", err)
		}
	}
	return &careers.Attachment{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Reader:      f,
	}, f, nil
}

func logResult(logger interfaces.Logger) staticcmd.ResultCallback {
	return func(env staticcmd.ResultEnvelope) {
		operation, _ := env.Metadata["operation"].(string)
		switch {
		case env.Result != nil:
			logger.Info("cli.summary",
				"operation", operation,
				"pages_built", env.Result.PagesBuilt,
				"pages_skipped", env.Result.PagesSkipped,
				"assets_built", env.Result.AssetsBuilt,
				"dry_run", env.Result.DryRun,
				"duration", env.Result.Duration,
				"errors", len(env.Result.Errors),
			)
		case env.Page != nil:
			logger.Info("cli.summary",
				"operation", operation,
				"locale", env.Metadata["locale"],
				"route", env.Metadata["route"],
			)
		default:
			logger.Info("cli.summary", "operation", operation)
		}
	}
}

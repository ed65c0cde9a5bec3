package staticcmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/generator"
)

func TestBuildSiteHandler_Execute_Build(t *testing.T) {
	cmd := loadBuildFixture(t, "build_basic.json")

	var capturedOpts generator.BuildOptions
	callbackInvoked := false

	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			capturedOpts = opts
			return &generator.BuildResult{PagesBuilt: 3}, nil
		},
	}

	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})

	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Result == nil {
			t.Fatalf("expected build result, got nil")
		}
		if env.Result.PagesBuilt != 3 {
			t.Fatalf("expected PagesBuilt 3, got %d", env.Result.PagesBuilt)
		}
		if env.Metadata["operation"] != "build" {
			t.Fatalf("expected operation build, got %v", env.Metadata["operation"])
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute build: %v", err)
	}

	if !capturedOpts.Force {
		t.Fatalf("expected Force true")
	}
	if capturedOpts.DryRun {
		t.Fatalf("expected DryRun false")
	}
	if len(capturedOpts.Locales) != 2 || len(capturedOpts.Routes) != 3 {
		t.Fatalf("unexpected scope %v %v", capturedOpts.Locales, capturedOpts.Routes)
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandler_Execute_PageBuild(t *testing.T) {
	cmd := BuildSiteCommand{
		Locales: []string{" TH "},
		Routes:  []string{"careers"},
	}

	pageCalled := false
	svc := &fakeGeneratorService{
		buildPageFunc: func(ctx context.Context, locale, route string) (*generator.RenderedPage, error) {
			pageCalled = true
			if locale != "th" || route != "careers" {
				t.Fatalf("unexpected page %s/%s", locale, route)
			}
			return &generator.RenderedPage{Locale: locale, Route: route, Output: "th/careers/index.html"}, nil
		},
	}

	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})

	callbackInvoked := false
	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Metadata["operation"] != "build_page" {
			t.Fatalf("expected operation build_page, got %v", env.Metadata["operation"])
		}
		if env.Page == nil || env.Page.Output != "th/careers/index.html" {
			t.Fatalf("expected rendered page in envelope, got %#v", env.Page)
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute page build: %v", err)
	}
	if !pageCalled {
		t.Fatal("expected BuildPage to be called")
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandler_Execute_GeneratorDisabled(t *testing.T) {
	handler := NewBuildSiteHandler(&fakeGeneratorService{}, nil, FeatureGates{GeneratorEnabled: alwaysFalse})
	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestBuildSiteHandler_Execute_PropagatesBuildError(t *testing.T) {
	buildErr := errors.New("render failed")
	var envelope ResultEnvelope
	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			return &generator.BuildResult{PagesBuilt: 5}, buildErr
		},
	}
	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})

	err := handler.Execute(context.Background(), BuildSiteCommand{ResultCallback: func(env ResultEnvelope) { envelope = env }})
	if !errors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
	if envelope.Result == nil || envelope.Result.PagesBuilt != 5 {
		t.Fatalf("partial result should still reach the callback: %#v", envelope.Result)
	}
}

func TestDiffSiteHandler_Execute(t *testing.T) {
	cmd := loadDiffFixture(t, "diff_basic.json")

	var capturedOpts generator.BuildOptions
	callbackInvoked := false

	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			capturedOpts = opts
			return &generator.BuildResult{PagesBuilt: 2, DryRun: true}, nil
		},
	}

	handler := NewDiffSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Metadata["operation"] != "diff" {
			t.Fatalf("expected diff operation, got %v", env.Metadata["operation"])
		}
		if env.Result == nil || env.Result.PagesBuilt != 2 {
			t.Fatalf("unexpected diff result: %#v", env.Result)
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute diff: %v", err)
	}
	if !capturedOpts.DryRun {
		t.Fatal("expected DryRun to be true for diff")
	}
	if len(capturedOpts.Locales) != 1 || capturedOpts.Locales[0] != "th" {
		t.Fatalf("unexpected locales %v", capturedOpts.Locales)
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestValidateSiteHandler_Execute(t *testing.T) {
	failing := &generator.ValidationReport{Videos: errors.New("bad video url")}
	svc := &fakeGeneratorService{
		validateFunc: func(context.Context) (*generator.ValidationReport, error) {
			return failing, nil
		},
	}
	var received *generator.ValidationReport
	handler := NewValidateSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})

	err := handler.Execute(context.Background(), ValidateSiteCommand{
		ReportCallback: func(report *generator.ValidationReport) { received = report },
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if received != failing {
		t.Fatal("expected report callback to receive the report")
	}

	svc.validateFunc = func(context.Context) (*generator.ValidationReport, error) {
		return &generator.ValidationReport{}, nil
	}
	if err := handler.Execute(context.Background(), ValidateSiteCommand{}); err != nil {
		t.Fatalf("clean report should pass, got %v", err)
	}
}

func TestBuildSitemapHandler_Execute(t *testing.T) {
	called := false
	svc := &fakeGeneratorService{
		buildSitemapFunc: func(context.Context) error {
			called = true
			return nil
		},
	}
	handler := NewBuildSitemapHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	if err := handler.Execute(context.Background(), BuildSitemapCommand{}); err != nil {
		t.Fatalf("execute sitemap: %v", err)
	}
	if !called {
		t.Fatal("expected BuildSitemap to be called")
	}
}

func TestCleanSiteHandler_Execute(t *testing.T) {
	cleanCalled := false
	svc := &fakeGeneratorService{
		cleanFunc: func(ctx context.Context) error {
			cleanCalled = true
			return nil
		},
	}

	handler := NewCleanSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	if err := handler.Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute clean: %v", err)
	}
	if !cleanCalled {
		t.Fatal("expected Clean to be called")
	}
}

func TestCleanSiteHandler_Execute_GeneratorDisabled(t *testing.T) {
	handler := NewCleanSiteHandler(&fakeGeneratorService{}, nil, FeatureGates{GeneratorEnabled: alwaysFalse})
	err := handler.Execute(context.Background(), CleanSiteCommand{})
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestBuildSiteCommandValidate(t *testing.T) {
	cmd := loadBuildFixture(t, "build_invalid_locale.json")
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error for invalid locales")
	}
	if err := (BuildSiteCommand{Routes: []string{"../etc"}}).Validate(); err == nil {
		t.Fatal("expected validation error for invalid route")
	}
	if err := (BuildSiteCommand{Locales: []string{"th"}, Routes: []string{"custom-machines"}}).Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}

func TestBuildSiteHandlerRejectsInvalidCommand(t *testing.T) {
	called := false
	svc := &fakeGeneratorService{
		buildFunc: func(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
			called = true
			return nil, nil
		},
	}
	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	err := handler.Execute(context.Background(), loadBuildFixture(t, "build_invalid_locale.json"))
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("generator must not run for an invalid command")
	}
}

func loadBuildFixture(t *testing.T, name string) BuildSiteCommand {
	t.Helper()
	var cmd BuildSiteCommand
	loadFixture(t, name, &cmd)
	return cmd
}

func loadDiffFixture(t *testing.T, name string) DiffSiteCommand {
	t.Helper()
	var cmd DiffSiteCommand
	loadFixture(t, name, &cmd)
	return cmd
}

func loadFixture(t *testing.T, name string, target any) {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("unmarshal fixture %s: %v", name, err)
	}
}

type fakeGeneratorService struct {
	buildFunc        func(context.Context, generator.BuildOptions) (*generator.BuildResult, error)
	buildPageFunc    func(context.Context, string, string) (*generator.RenderedPage, error)
	buildSitemapFunc func(context.Context) error
	validateFunc     func(context.Context) (*generator.ValidationReport, error)
	cleanFunc        func(context.Context) error
}

func (f *fakeGeneratorService) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	if f.buildFunc != nil {
		return f.buildFunc(ctx, opts)
	}
	return &generator.BuildResult{}, nil
}

func (f *fakeGeneratorService) BuildPage(ctx context.Context, locale, route string) (*generator.RenderedPage, error) {
	if f.buildPageFunc != nil {
		return f.buildPageFunc(ctx, locale, route)
	}
	return nil, generator.ErrPageNotRendered
}

func (f *fakeGeneratorService) BuildSitemap(ctx context.Context) error {
	if f.buildSitemapFunc != nil {
		return f.buildSitemapFunc(ctx)
	}
	return nil
}

func (f *fakeGeneratorService) Validate(ctx context.Context) (*generator.ValidationReport, error) {
	if f.validateFunc != nil {
		return f.validateFunc(ctx)
	}
	return &generator.ValidationReport{}, nil
}

func (f *fakeGeneratorService) Clean(ctx context.Context) error {
	if f.cleanFunc != nil {
		return f.cleanFunc(ctx)
	}
	return nil
}

func alwaysTrue() bool  { return true }
func alwaysFalse() bool { return false }

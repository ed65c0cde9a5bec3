package logging

import (
	"context"

	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

const (
	rootModule      = "site"
	generatorModule = "site.generator"
	careersModule   = "site.careers"
	galleryModule   = "site.gallery"
	contentModule   = "site.content"
	serverModule    = "site.server"
)

const (
	fieldLocale = "locale"
	fieldRoute  = "route"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// returns nil, yields NoOp. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// GeneratorLogger returns the logger used by static builds.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// CareersLogger returns the logger used by the application form and relay.
func CareersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, careersModule)
}

// GalleryLogger returns the logger used by the video gallery.
func GalleryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, galleryModule)
}

// ContentLogger returns the logger used by content loaders.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// ServerLogger returns the logger used by the preview server.
func ServerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, serverModule)
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

package logging

import (
	"maps"
	"strings"

	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// WithFields attaches structured fields when the logger supports
// interfaces.FieldsLogger. Other loggers are returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithPageContext tags entries emitted while rendering one locale/route pair.
func WithPageContext(logger interfaces.Logger, locale, route string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(route); trimmed != "" {
		fields[fieldRoute] = trimmed
	}
	return WithFields(logger, fields)
}

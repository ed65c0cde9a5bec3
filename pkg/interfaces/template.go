package interfaces

import "io"

// TemplateRenderer renders named page templates. When a writer is supplied the
// output is streamed to it and the returned string is empty.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}

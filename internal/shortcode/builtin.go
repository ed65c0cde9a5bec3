package shortcode

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/gallery"
)

var (
	youtubeTemplate = template.Must(template.New("youtube").Parse(
		`<div class="shortcode shortcode--youtube"><iframe src="{{ .Src }}" title="{{ .Title }}" loading="lazy" allow="accelerometer; autoplay; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe></div>`))
	alertTemplate = template.Must(template.New("alert").Parse(
		`<div class="shortcode shortcode--alert shortcode--alert-{{ .Type }}">{{ if .Title }}<div class="shortcode__title">{{ .Title }}</div>{{ end }}<div class="shortcode__body">{{ .Inner }}</div></div>`))
)

var alertTypes = map[string]struct{}{"info": {}, "success": {}, "warning": {}, "danger": {}}

func builtins() map[string]Func {
	return map[string]Func{
		"youtube": youtube,
		"alert":   alert,
	}
}

// youtube embeds a player. The first argument (or url=/id=) accepts anything
// the gallery accepts: share, watch and embed URLs, or a bare id.
func youtube(call Call) (template.HTML, error) {
	raw := strings.TrimSpace(call.Param("url", 0))
	if raw == "" {
		raw = strings.TrimSpace(call.Params["id"])
	}
	src, ok := gallery.EmbedURL(raw)
	if !ok {
		src, ok = gallery.EmbedURL("https://youtu.be/" + raw)
	}
	if !ok {
		return "", fmt.Errorf("%w: no embeddable video id in %q", ErrParams, raw)
	}
	title := call.Param("title", 1)
	if title == "" {
		title = "YouTube video"
	}
	return execute(youtubeTemplate, map[string]any{
		"Src":   template.URL(src),
		"Title": title,
	})
}

func alert(call Call) (template.HTML, error) {
	kind := strings.ToLower(call.Param("type", 0))
	if kind == "" {
		kind = "info"
	}
	if _, ok := alertTypes[kind]; !ok {
		return "", fmt.Errorf("%w: alert type %q", ErrParams, kind)
	}
	return execute(alertTemplate, map[string]any{
		"Type":  kind,
		"Title": call.Param("title", 1),
		"Inner": call.Inner,
	})
}

func execute(tmpl *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

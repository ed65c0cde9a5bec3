package generator

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eureka-automation/eureka-site/internal/routes"
)

type sitemapEntry struct {
	Location   string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
	Alternates []routes.Alternate
}

func buildSitemap(entries []sitemapEntry) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">` + "\n")
	seen := map[string]struct{}{}
	for _, entry := range entries {
		if _, ok := seen[entry.Location]; ok {
			continue
		}
		seen[entry.Location] = struct{}{}

		builder.WriteString("  <url>\n")
		fmt.Fprintf(&builder, "    <loc>%s</loc>\n", escapeXML(entry.Location))
		if !entry.LastMod.IsZero() {
			fmt.Fprintf(&builder, "    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339))
		}
		if entry.ChangeFreq != "" {
			fmt.Fprintf(&builder, "    <changefreq>%s</changefreq>\n", entry.ChangeFreq)
		}
		fmt.Fprintf(&builder, "    <priority>%s</priority>\n", strconv.FormatFloat(entry.Priority, 'f', 1, 64))
		for _, alt := range entry.Alternates {
			fmt.Fprintf(&builder, "    <xhtml:link rel=\"alternate\" hreflang=\"%s\" href=\"%s\"/>\n",
				escapeXML(alt.Locale), escapeXML(alt.Href))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func buildRobots(siteRoot string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		base := strings.TrimRight(strings.TrimSpace(siteRoot), "/")
		if base == "" {
			base = "http://localhost"
		}
		builder.WriteString("\n")
		fmt.Fprintf(&builder, "Sitemap: %s/sitemap.xml\n", base)
	}
	return builder.String()
}

func escapeXML(value string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(value)); err != nil {
		return value
	}
	return b.String()
}

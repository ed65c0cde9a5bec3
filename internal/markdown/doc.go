// Package markdown loads the long-form page bodies that sit under each
// localized route (about, services, solutions). Files live at
// pages/{locale}/{route}.md with optional YAML front matter and are rendered
// to HTML once at load time.
package markdown

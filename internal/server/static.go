package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eureka-automation/eureka-site/internal/i18n"
)

const notFoundPage = "404.html"

// serveStatic serves the generated tree. A path whose first segment is not a
// supported locale redirects to the default locale's home page; the bare base
// path redirects to the locale negotiated from Accept-Language. A locale
// segment in another case, like /EN/, redirects to the lowercase path.
func (s *Server) serveStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	requestPath := c.Request.URL.Path
	rel, ok := s.relative(requestPath)
	if !ok {
		c.String(http.StatusNotFound, "not found")
		return
	}

	if rel == "/" {
		locale := s.deps.Resolver.Negotiate(c.GetHeader("Accept-Language"))
		c.Redirect(http.StatusFound, s.deps.Resolver.HomePath(locale))
		return
	}

	if res, err := s.deps.Resolver.Resolve(requestPath); err == nil && res.Alias {
		c.Redirect(http.StatusMovedPermanently, s.canonical(c, res))
		return
	}

	if file, isDir := s.lookup(rel); file != "" {
		if isDir && !strings.HasSuffix(requestPath, "/") {
			c.Redirect(http.StatusMovedPermanently, requestPath+"/")
			return
		}
		c.File(file)
		return
	}

	res, err := s.deps.Resolver.Resolve(requestPath)
	if err != nil {
		fallback := s.deps.Resolver.Fallback()
		c.Redirect(http.StatusFound, s.deps.Resolver.HomePath(fallback.Locale))
		return
	}
	s.notFound(c, res.Locale)
}

func (s *Server) canonical(c *gin.Context, res i18n.Resolution) string {
	target := s.deps.Resolver.LocalePath(res.Locale, res.Rest)
	if strings.HasSuffix(c.Request.URL.Path, "/") && !strings.HasSuffix(target, "/") {
		target += "/"
	}
	if query := c.Request.URL.RawQuery; query != "" {
		target += "?" + query
	}
	return target
}

// relative strips the base path. ok is false for paths outside it.
func (s *Server) relative(requestPath string) (string, bool) {
	if s.cfg.BasePath == "" {
		return cleanURLPath(requestPath), true
	}
	if requestPath == s.cfg.BasePath {
		return "/", true
	}
	if !strings.HasPrefix(requestPath, s.cfg.BasePath+"/") {
		return "", false
	}
	return cleanURLPath(strings.TrimPrefix(requestPath, s.cfg.BasePath)), true
}

// lookup maps rel onto the output dir. Directories resolve to their
// index.html; isDir reports that case.
func (s *Server) lookup(rel string) (file string, isDir bool) {
	if s.cfg.OutputDir == "" {
		return "", false
	}
	full := filepath.Join(s.cfg.OutputDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return "", false
	}
	if !info.IsDir() {
		return full, false
	}
	index := filepath.Join(full, "index.html")
	if info, err := os.Stat(index); err == nil && !info.IsDir() {
		return index, true
	}
	return "", false
}

func (s *Server) notFound(c *gin.Context, locale string) {
	if s.cfg.OutputDir != "" {
		page := filepath.Join(s.cfg.OutputDir, locale, notFoundPage)
		if data, err := os.ReadFile(page); err == nil {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", data)
			return
		}
	}
	c.String(http.StatusNotFound, "not found")
}

func cleanURLPath(p string) string {
	cleaned := path.Clean("/" + p)
	if cleaned == "." {
		return "/"
	}
	return cleaned
}

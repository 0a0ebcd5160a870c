package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// assetResolver rewrites local asset paths to the server's addressing
// scheme. Identical inputs always produce identical URIs.
type assetResolver struct {
	root string
}

func (a assetResolver) ResolveAsset(path string) string {
	rel, err := filepath.Rel(a.root, path)
	if err != nil {
		rel = path
	}
	return "/assets/" + filepath.ToSlash(rel)
}

// handleAsset serves one static asset from the bundle tree.
func (s *Server) handleAsset(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	// Clean against the root so ".." cannot escape the bundle tree.
	path := filepath.Join(s.assetRoot, filepath.FromSlash(filepath.Clean("/"+rel)))

	c.Header("Content-Type", assetContentType(path))
	c.File(path)
}

// assetContentType prefers the well-known bundle extensions; content
// sniffing covers the rest.
func assetContentType(path string) string {
	switch filepath.Ext(path) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".map", ".json":
		return "application/json"
	}
	if mt, err := mimetype.DetectFile(path); err == nil {
		return mt.String()
	}
	return http.DetectContentType(nil)
}

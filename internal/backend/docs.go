package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/studiowebux/apiconsole/internal/config"
	"github.com/studiowebux/apiconsole/internal/types"
)

// Documentation formats the backend can render
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

var docExtensions = map[string]string{
	FormatMarkdown: "md",
	FormatHTML:     "html",
	FormatJSON:     "json",
}

// DownloadDocs fetches a rendered copy of the API documentation.
// JSON documents are checked as OpenAPI 3; a document that fails the check
// is still returned.
func (c *Client) DownloadDocs(ctx context.Context, format string) (types.Document, error) {
	ext, ok := docExtensions[format]
	if !ok {
		return types.Document{}, &types.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unsupported format %q (want markdown, html or json)", format),
		}
	}

	resp, err := c.do(ctx, "GET", "docs", "/docs/download/"+format, nil, nil)
	if err != nil {
		return types.Document{}, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Document{}, &types.FetchError{Resource: "docs", Err: fmt.Errorf("reading response: %w", err)}
	}

	doc := types.Document{
		Format:      format,
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition"), "api-docs."+ext),
		ContentType: resp.Header.Get("Content-Type"),
		Content:     content,
	}

	if format == FormatJSON {
		inspectOpenAPI(ctx, &doc)
	}
	return doc, nil
}

func filenameFrom(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}

func inspectOpenAPI(ctx context.Context, doc *types.Document) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(doc.Content)
	if err != nil {
		slog.Warn("Documentation is not an OpenAPI document", "error", err)
		return
	}
	if err := spec.Validate(ctx); err != nil {
		slog.Warn("OpenAPI document failed validation", "error", err)
	}
	if spec.Info != nil {
		doc.Title = spec.Info.Title
		doc.Version = spec.Info.Version
	}
	if spec.Paths != nil {
		for _, item := range spec.Paths.Map() {
			doc.Operations += len(item.Operations())
		}
	}
}

// SaveDocument writes doc into dir under its filename and returns the path
func SaveDocument(doc types.Document, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Content, config.FilePermissions); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

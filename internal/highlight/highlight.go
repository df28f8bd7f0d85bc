// Package highlight colours response bodies for the terminal and caches the
// result, since the viewport re-renders the same body on every frame.
package highlight

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultStyle     = "monokai"
	DefaultFormatter = "terminal256"
	DefaultCacheSize = 64
)

// Highlighter renders source text with ANSI colours
type Highlighter struct {
	cache     *lru.Cache[string, string]
	style     *chroma.Style
	formatter chroma.Formatter
}

// New creates a highlighter holding up to cacheSize rendered bodies
func New(cacheSize int, styleName string) (*Highlighter, error) {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	c, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	formatter := formatters.Get(DefaultFormatter)
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &Highlighter{
		cache:     c,
		style:     styles.Get(styleName),
		formatter: formatter,
	}, nil
}

// Language guesses the lexer name for a body from its content type,
// falling back to sniffing for JSON
func Language(contentType, body string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "xml"):
		return "xml"
	case strings.Contains(ct, "yaml"):
		return "yaml"
	}
	if json.Valid([]byte(strings.TrimSpace(body))) {
		return "json"
	}
	return ""
}

// Render highlights source as language. Unknown languages and lexer
// failures return source unchanged.
func (h *Highlighter) Render(source, language string) string {
	if source == "" || language == "" {
		return source
	}

	key := language + "\x00" + source
	if out, ok := h.cache.Get(key); ok {
		return out
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return source
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return source
	}

	out := buf.String()
	h.cache.Add(key, out)
	return out
}

// Len returns the number of cached renderings
func (h *Highlighter) Len() int {
	return h.cache.Len()
}

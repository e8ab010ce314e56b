package assistant

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"chat-assistant/internal/domain/model"
)

//go:embed replies
var repliesFS embed.FS

// Catalog holds the reply bodies and follow-up suggestions a Composer draws
// from. Templates are keyed category -> intent.
type Catalog struct {
	Templates   map[string]map[string][]string `yaml:"templates"`
	Suggestions map[string][]string            `yaml:"suggestions"`
}

var defaultCatalog = mustLoadDefaultCatalog()

func builtinReplies() fs.FS {
	sub, err := fs.Sub(repliesFS, "replies")
	if err != nil {
		panic(err)
	}
	return sub
}

func mustLoadDefaultCatalog() *Catalog {
	c, err := LoadCatalog(builtinReplies(), "en")
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the built-in English catalog. Callers must not
// modify it.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// LoadCatalog reads <lang>.yaml from fsys. Works with any fs.FS, so a
// directory on disk (os.DirFS) can replace the built-in replies.
func LoadCatalog(fsys fs.FS, lang string) (*Catalog, error) {
	name := lang + ".yaml"
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply catalog %s: %w", name, err)
	}
	return parseCatalog(data)
}

// OpenCatalog loads lang from dir, or from the built-in replies when dir is
// empty.
func OpenCatalog(dir, lang string) (*Catalog, error) {
	if dir == "" {
		if lang == "" || lang == "en" {
			return defaultCatalog, nil
		}
		return LoadCatalog(builtinReplies(), lang)
	}
	return LoadCatalog(os.DirFS(dir), lang)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse reply catalog: %w", err)
	}
	// every lookup ends at general.default
	if len(c.Templates[model.CategoryGeneral]["default"]) == 0 {
		return nil, errors.New("reply catalog: general.default has no templates")
	}
	if c.Suggestions == nil {
		c.Suggestions = map[string][]string{}
	}
	return &c, nil
}

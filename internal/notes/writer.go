package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/storage"
)

// Writer persists a saved article as a note and returns its location.
// Implementations must be idempotent: re-saving an article whose note
// already exists returns the existing location without rewriting it.
type Writer interface {
	Write(article *storage.Article) (string, error)
}

// MarkdownWriter writes one markdown file per saved article, yaml front
// matter first, into a flat notes directory.
type MarkdownWriter struct {
	dir  string
	opts config.NotesConfig
}

func NewMarkdownWriter(opts config.NotesConfig) *MarkdownWriter {
	return &MarkdownWriter{dir: opts.Directory, opts: opts}
}

// frontMatter is the metadata block at the top of every note.
type frontMatter struct {
	Title   string   `yaml:"title"`
	Authors []string `yaml:"authors,omitempty"`
	Journal string   `yaml:"journal,omitempty"`
	Date    string   `yaml:"date,omitempty"`
	DOI     string   `yaml:"doi"`
	URL     string   `yaml:"url"`
	OAURL   string   `yaml:"open_access_url,omitempty"`
	Tags    []string `yaml:"tags,omitempty"`
}

func (w *MarkdownWriter) Write(article *storage.Article) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating notes directory: %w", err)
	}

	path := filepath.Join(w.dir, noteFileName(article))
	if _, err := os.Stat(path); err == nil {
		// Already saved once; keep whatever the user has edited since.
		return path, nil
	}

	content, err := w.render(article)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}
	return path, nil
}

func (w *MarkdownWriter) render(article *storage.Article) ([]byte, error) {
	fm := frontMatter{
		Title:   article.Title,
		Authors: article.Authors,
		Journal: article.JournalName,
		Date:    article.PublishedDate,
		DOI:     article.ID,
		URL:     article.CanonicalURL,
		OAURL:   article.OpenAccessURL,
		Tags:    w.opts.Tags,
	}

	meta, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("rendering front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString("# " + article.Title + "\n\n")

	if len(article.Authors) > 0 {
		b.WriteString(strings.Join(article.Authors, "; ") + "\n\n")
	}

	ref := article.JournalName
	if article.Volume != "" {
		ref += " " + article.Volume
		if article.Issue != "" {
			ref += "(" + article.Issue + ")"
		}
	}
	if article.Pages != "" {
		ref += ", " + article.Pages
	}
	if ref != "" {
		b.WriteString("*" + ref + "*\n\n")
	}

	if w.opts.IncludeAbstract && article.Abstract != "" {
		b.WriteString("## Abstract\n\n" + article.Abstract + "\n\n")
	}

	if w.opts.IncludeKeywords && len(article.Keywords) > 0 {
		b.WriteString("## Keywords\n\n" + strings.Join(article.Keywords, ", ") + "\n\n")
	}

	b.WriteString("## Notes\n\n")

	return []byte(b.String()), nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// noteFileName derives a filesystem-safe name from the identifier. DOIs
// contain slashes and other characters that cannot appear in a file name.
func noteFileName(article *storage.Article) string {
	name := unsafeFileChars.ReplaceAllString(strings.ToLower(article.ID), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "article"
	}
	return name + ".md"
}

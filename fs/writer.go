// Package fs exports posts as Markdown files with YAML front matter.
package fs

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/feedgen"
	"gopkg.in/yaml.v3"
)

// PostPath converts a post URL to a relative file path.
// Example: https://blog.example.com/2024/05/hello → 2024/05/hello.md
func PostPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", feedgen.Errorf(feedgen.EINVALID, "invalid post URL %q: %v", rawURL, err)
	}

	p := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if p == "" {
		return "index.md", nil
	}
	if strings.HasSuffix(u.Path, "/") {
		return p + "/index.md", nil
	}
	return strings.TrimSuffix(p, path.Ext(p)) + ".md", nil
}

type frontMatter struct {
	Title   string    `yaml:"title"`
	Link    string    `yaml:"link"`
	Updated time.Time `yaml:"updated"`
}

// FormatPost formats a post with YAML front matter.
func FormatPost(post *feedgen.Post) (string, error) {
	meta, err := yaml.Marshal(frontMatter{
		Title:   post.Title,
		Link:    post.Link,
		Updated: post.UpdatedAt.UTC(),
	})
	if err != nil {
		return "", feedgen.Errorf(feedgen.EINTERNAL, "encode front matter: %v", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(post.Content)
	b.WriteString("\n")
	return b.String(), nil
}

// Ensure Writer implements feedgen.PostWriter at compile time.
var _ feedgen.PostWriter = (*Writer)(nil)

// Writer writes posts into dir.
// Files are written to dir.tmp and moved to dir on Commit, replacing any
// previous export.
type Writer struct {
	dir string
}

// NewWriter creates a new Writer that exports to dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: filepath.Clean(dir)}
}

func (w *Writer) tempDir() string {
	return w.dir + ".tmp"
}

// WritePost writes a post to the temporary directory.
func (w *Writer) WritePost(ctx context.Context, post *feedgen.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}

	relPath, err := PostPath(post.Link)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(w.tempDir(), filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	content, err := FormatPost(post)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// Commit replaces dir with the written posts.
func (w *Writer) Commit() error {
	if err := os.MkdirAll(w.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return err
	}
	return os.Rename(w.tempDir(), w.dir)
}

// Abort discards written posts and leaves dir untouched.
func (w *Writer) Abort() error {
	return os.RemoveAll(w.tempDir())
}

// Package corpus loads the static document set that legalqa answers from.
// The corpus is a flat folder of .txt files read once at startup and never
// mutated afterwards.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/54b3r/legalqa-go/internal/logging"
)

// DefaultDir is the corpus folder used when CORPUS_DIR is not set.
const DefaultDir = "documents"

// extension is the only file suffix picked up by Load.
const extension = ".txt"

// Document is a single corpus file.
type Document struct {
	// Filename is the base name of the source file (e.g. "negligence.txt").
	Filename string
	// Text is the full file content.
	Text string
}

// Corpus is the immutable, filename-ordered document set.
type Corpus struct {
	// Dir is the folder the documents were read from.
	Dir string
	// Documents is sorted by Filename.
	Documents []Document
}

// Len returns the number of loaded documents.
func (c *Corpus) Len() int { return len(c.Documents) }

// Texts returns the document bodies in corpus order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		out[i] = d.Text
	}
	return out
}

// Load reads every *.txt file directly inside dir. Subdirectories and other
// file types are ignored. A missing or unreadable directory is an error; an
// empty one is not, so the caller decides whether zero documents is fatal.
func Load(ctx context.Context, dir string) (*Corpus, error) {
	log := logging.FromContext(ctx)

	if dir == "" {
		dir = DefaultDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: failed to read directory %s: %w", dir, err)
	}

	c := &Corpus{Dir: dir}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), extension) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("corpus: failed to read %s: %w", path, err)
		}
		c.Documents = append(c.Documents, Document{
			Filename: e.Name(),
			Text:     string(content),
		})
	}

	sort.Slice(c.Documents, func(i, j int) bool {
		return c.Documents[i].Filename < c.Documents[j].Filename
	})

	if len(c.Documents) == 0 {
		log.Warn("corpus: no documents found", slog.String("dir", dir))
	} else {
		log.Info("corpus: documents loaded",
			slog.String("dir", dir),
			slog.Int("documents", len(c.Documents)),
		)
	}

	return c, nil
}

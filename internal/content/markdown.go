// Package content renders lesson text for the step pages
package content

import (
	"bytes"
	"fmt"

	"github.com/coursepath/backend/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts lesson markdown to HTML
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a GitHub-flavoured markdown renderer.
// Raw HTML in lesson text is kept since lessons are authored by staff.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts a markdown source to HTML
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderBlocks renders the blocks shown on a step page, in order.
// completed holds the ids of blocks the learner finished.
func (r *Renderer) RenderBlocks(blocks []models.LessonContent, completed map[int]bool) ([]models.RenderedBlock, error) {
	out := make([]models.RenderedBlock, 0, len(blocks))
	for _, b := range blocks {
		rendered, err := r.Render(b.Content)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", b.ID, err)
		}
		out = append(out, models.RenderedBlock{
			ID:          b.ID,
			ContentType: b.ContentType,
			Title:       b.Title,
			HTML:        rendered,
			VideoURL:    b.VideoURL,
			Completed:   completed[b.ID],
		})
	}
	return out, nil
}

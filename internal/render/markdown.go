package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const maxMarkdownWidth = 100

var (
	markdownOnce sync.Once
	markdown     *glamour.TermRenderer
	markdownErr  error
)

// ColorsEnabled reports whether styled output should be written. Setting
// NO_COLOR (to any value) or TERM=dumb turns it off.
func ColorsEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// RenderMarkdown renders an issue description or comment body wrapped to
// the terminal width. Without colors the trimmed text is returned as is.
func RenderMarkdown(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" || !ColorsEnabled() {
		return content, nil
	}

	r, err := markdownRenderer()
	if err != nil {
		return content, err
	}
	out, err := r.Render(content)
	if err != nil {
		return content, fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func markdownRenderer() (*glamour.TermRenderer, error) {
	markdownOnce.Do(func() {
		markdown, markdownErr = glamour.NewTermRenderer(
			glamour.WithEnvironmentConfig(),
			glamour.WithWordWrap(min(terminalWidth()-4, maxMarkdownWidth)),
		)
		if markdownErr != nil {
			markdownErr = fmt.Errorf("creating markdown renderer: %w", markdownErr)
		}
	})
	return markdown, markdownErr
}

package cliui

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

type rendererKey struct {
	style string
	width int
}

var (
	renderersMu sync.Mutex
	renderers   = map[rendererKey]*glamour.TermRenderer{}
)

// RenderMarkdown renders an assistant answer for the terminal. Renderers
// are built once per style and width and reused across turns. On failure
// the content is returned unchanged alongside the error.
func RenderMarkdown(content string) (string, error) {
	key := rendererKey{style: glamourStyle(), width: TerminalWidth()}

	renderersMu.Lock()
	defer renderersMu.Unlock()

	r, ok := renderers[key]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(key.style),
			glamour.WithWordWrap(key.width),
		)
		if err != nil {
			return content, err
		}
		renderers[key] = r
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}

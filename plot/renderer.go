package plot

import (
	"fmt"
)

// Renderer writes a chart to a file
type Renderer interface {
	Render(path string, c *Chart) error

	// Extension is the file extension including the leading dot
	Extension() string
}

// NewRenderer returns the renderer for a format
func NewRenderer(f Format) (Renderer, error) {
	switch f {
	case FormatHTML:
		return NewEChartsRenderer(), nil
	case FormatPNG:
		return NewPNGRenderer(), nil
	}
	return nil, fmt.Errorf("%q, %w", f, ErrUnknownFormat)
}

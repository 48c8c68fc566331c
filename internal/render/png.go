// Package render draws a diagram to a PNG image.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
)

var (
	// ErrNothingToRender is returned for a diagram without nodes.
	ErrNothingToRender = errors.New("nothing to render")

	// ErrTooLarge is returned when the diagram spans more pixels than
	// Options.MaxPixels allows.
	ErrTooLarge = errors.New("diagram too large to render")
)

// DefaultMaxPixels bounds the canvas at 4096x4096.
const DefaultMaxPixels = 4096 * 4096

// Options tune the image.
type Options struct {
	// Padding is the margin around the diagram, in pixels.
	Padding float64
	// Background is a hex color. Empty means white.
	Background string
	// CornerRadius rounds node boxes.
	CornerRadius float64
	// MaxPixels caps width*height of the canvas. Zero means DefaultMaxPixels.
	MaxPixels int
}

// DefaultOptions returns the stock image settings.
func DefaultOptions() Options {
	return Options{Padding: 40, Background: "#ffffff", CornerRadius: 8, MaxPixels: DefaultMaxPixels}
}

var (
	fontsOnce sync.Once
	regular   *truetype.Font
	bold      *truetype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regular, fontsErr = truetype.Parse(gomono.TTF)
		if fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gomonobold.TTF)
	})
	if fontsErr != nil {
		return fmt.Errorf("failed to parse font: %w", fontsErr)
	}
	return nil
}

func face(size float64, isBold bool) font.Face {
	f := regular
	if isBold {
		f = bold
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// box is a node laid out in image space before the canvas offset.
type box struct {
	visual      diagram.Visual
	x, y, w, h  float64
	label, desc []string
}

func (b box) center() (float64, float64) {
	return b.x + b.w/2, b.y + b.h/2
}

// PNG writes nodes and edges as a PNG image. Node positions are the top-left
// corners of their boxes. Edges are drawn under the nodes; transient edges
// are dashed.
func PNG(w io.Writer, nodes []diagram.Node, edges []diagram.Edge, opts Options) error {
	if len(nodes) == 0 {
		return ErrNothingToRender
	}
	if err := loadFonts(); err != nil {
		return err
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}

	// Measuring needs a context; 1x1 is enough.
	measure := gg.NewContext(1, 1)
	boxes := make([]box, len(nodes))
	byID := make(map[string]int, len(nodes))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, n := range nodes {
		boxes[i] = measureNode(measure, n)
		if _, dup := byID[n.ID]; !dup {
			byID[n.ID] = i
		}
		b := boxes[i]
		minX, minY = math.Min(minX, b.x), math.Min(minY, b.y)
		maxX, maxY = math.Max(maxX, b.x+b.w), math.Max(maxY, b.y+b.h)
	}

	width, height, err := canvasSize(maxX-minX, maxY-minY, opts)
	if err != nil {
		return err
	}
	offX, offY := opts.Padding-minX, opts.Padding-minY

	dc := gg.NewContext(width, height)
	dc.SetColor(parseColor(opts.Background, color.White))
	dc.Clear()
	dc.Translate(offX, offY)

	for _, e := range edges {
		si, ok1 := byID[e.Source]
		ti, ok2 := byID[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		drawEdge(dc, boxes[si], boxes[ti], e.Transient)
	}

	for _, b := range boxes {
		drawBox(dc, b, opts.CornerRadius)
	}

	return dc.EncodePNG(w)
}

// canvasSize checks the extent in float space so that huge or non-finite
// coordinates never reach the allocator.
func canvasSize(spanX, spanY float64, opts Options) (int, int, error) {
	w := math.Ceil(spanX+2*opts.Padding) + 1
	h := math.Ceil(spanY+2*opts.Padding) + 1
	if math.IsNaN(w) || math.IsNaN(h) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return 0, 0, fmt.Errorf("%w: non-finite node position", ErrTooLarge)
	}
	if w*h > float64(opts.MaxPixels) {
		return 0, 0, fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", ErrTooLarge, w, h, opts.MaxPixels)
	}
	return int(w), int(h), nil
}

func measureNode(dc *gg.Context, n diagram.Node) box {
	v := n.Visual()
	b := box{visual: v, x: n.Position.X, y: n.Position.Y}

	dc.SetFontFace(face(v.FontSize, v.Bold))
	b.label = dc.WordWrap(v.Label, v.MaxWidth)
	textW := widest(dc, b.label)
	textH := float64(len(b.label)) * v.FontSize * 1.4

	if v.Description != "" {
		dc.SetFontFace(face(v.DescriptionSize, false))
		b.desc = dc.WordWrap(v.Description, v.MaxWidth)
		textW = math.Max(textW, widest(dc, b.desc))
		textH += float64(len(b.desc))*v.DescriptionSize*1.4 + 4
	}

	b.w = math.Min(textW, v.MaxWidth) + 2*v.PaddingX
	b.h = textH + 2*v.PaddingY
	return b
}

func widest(dc *gg.Context, lines []string) float64 {
	w := 0.0
	for _, l := range lines {
		lw, _ := dc.MeasureString(l)
		w = math.Max(w, lw)
	}
	return w
}

func drawEdge(dc *gg.Context, from, to box, transient bool) {
	x1, y1 := from.center()
	x2, y2 := to.center()

	dc.SetLineWidth(2)
	dc.SetColor(parseColor("#94a3b8", color.Gray{Y: 0x99}))
	if transient {
		dc.SetDash(6, 4)
	}
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
	dc.SetDash()
}

func drawBox(dc *gg.Context, b box, radius float64) {
	v := b.visual

	dc.SetColor(parseColor(v.Background, color.Gray{Y: 0xf0}))
	dc.DrawRoundedRectangle(b.x, b.y, b.w, b.h, radius)
	dc.Fill()

	textColor := parseColor(v.TextColor, color.Black)
	dc.SetColor(textColor)
	dc.SetFontFace(face(v.FontSize, v.Bold))

	cx := b.x + b.w/2
	y := b.y + v.PaddingY
	for _, line := range b.label {
		dc.DrawStringAnchored(line, cx, y+v.FontSize*0.7, 0.5, 0.5)
		y += v.FontSize * 1.4
	}

	if len(b.desc) > 0 {
		y += 4
		dc.SetFontFace(face(v.DescriptionSize, false))
		for _, line := range b.desc {
			dc.DrawStringAnchored(line, cx, y+v.DescriptionSize*0.7, 0.5, 0.5)
			y += v.DescriptionSize * 1.4
		}
	}
}

func parseColor(hex string, fallback color.Color) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	return c
}

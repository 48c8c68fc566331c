package diagram

// Visual describes how a node is drawn.
type Visual struct {
	Background string  `json:"background"`
	TextColor  string  `json:"text_color"`
	FontSize   float64 `json:"font_size"`
	Bold       bool    `json:"bold"`
	PaddingX   float64 `json:"padding_x"`
	PaddingY   float64 `json:"padding_y"`
	MaxWidth   float64 `json:"max_width"`
	// DescriptionSize is zero when the node has no description.
	DescriptionSize float64 `json:"description_size,omitempty"`
	Label           string  `json:"label"`
	Description     string  `json:"description,omitempty"`
}

const (
	rootBackground = "#1a1a1a"
	deepBackground = "#f0f0f0"
	lightText      = "#fff"
	darkText       = "#333"
)

// Render returns the visual for a node at tier with the given color, label
// and description. There is a single node kind, so no type dispatch.
func Render(tier int, color, label, description string) Visual {
	v := Visual{
		Background: color,
		TextColor:  lightText,
		FontSize:   14,
		PaddingX:   20,
		PaddingY:   12,
		Label:      label,
	}

	switch {
	case tier == 0:
		v.Background = rootBackground
		v.FontSize = 24
		v.Bold = true
		v.PaddingX, v.PaddingY = 30, 20
		v.MaxWidth = 300
	case tier == 1:
		v.MaxWidth = 200
	default:
		v.Background = deepBackground
		v.TextColor = darkText
		v.FontSize = 13
		v.PaddingX, v.PaddingY = 15, 10
		v.MaxWidth = 280
	}

	if description != "" {
		v.Description = description
		v.DescriptionSize = 12
	}
	return v
}

// Visual returns the visual for n.
func (n Node) Visual() Visual {
	return Render(n.Tier, n.Color, n.Label, n.Description)
}

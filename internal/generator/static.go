package generator

import (
	"context"

	"github.com/fyrsmithlabs/mindmapd/internal/outline"
)

// Static returns the same raw response for every request. It backs the
// offline provider and tests.
type Static struct {
	raw string
}

// NewStatic creates a Static generator answering with raw.
func NewStatic(raw string) *Static {
	return &Static{raw: raw}
}

// Generate parses the configured response, cut to req.MaxDepth tiers.
func (s *Static) Generate(ctx context.Context, req Request) (*outline.Structure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := outline.Parse(s.raw)
	if err != nil {
		return nil, err
	}
	out.Prune(req.MaxDepth)
	return out, nil
}

var _ Generator = (*Static)(nil)

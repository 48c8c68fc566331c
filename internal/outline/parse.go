package outline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrGenerationFailure indicates the generator returned text that is not an
// outline of the expected shape.
var ErrGenerationFailure = errors.New("generator output is not a valid outline")

// Parse decodes generator output of the exact shape
// {"nodes": [{"title": string, "children"?: [...]}]}.
//
// A single markdown code fence around the payload is tolerated. Unknown
// fields are rejected so that a different shape does not slip through as an
// empty outline.
func Parse(raw string) (*Structure, error) {
	body := stripFence(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailure)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var wire struct {
		Nodes *[]Node `json:"nodes"`
	}
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrGenerationFailure)
	}
	if wire.Nodes == nil {
		return nil, fmt.Errorf("%w: missing \"nodes\"", ErrGenerationFailure)
	}

	s := &Structure{Nodes: *wire.Nodes}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}
	return s, nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Package mcp exposes mind map generation and lookup as Model Context
// Protocol tools over stdio.
//
// Tools:
//   - mindmap_generate: build and store a mind map from a title and content
//   - mindmap_get: fetch a stored mind map as an indented outline
//   - mindmap_layout: fetch the positioned diagram nodes of a mind map
//   - mindmap_search: list stored mind maps, fuzzy-matching titles
package mcp

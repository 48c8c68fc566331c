// Package outline defines the hierarchical outline produced by the outline
// generator and the per-map settings stored alongside it.
//
// An outline is a finite tree of titled nodes wrapped as {"nodes": [...]}.
// Exactly one top-level node is expected; it becomes the diagram root.
package outline

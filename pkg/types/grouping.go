package types

import "sort"

// Grouping maps scene name to layer name to file path.
type Grouping map[string]map[string]string

// Add records path as layer of scene, replacing any earlier entry.
func (g Grouping) Add(scene, layer, path string) {
	layers, ok := g[scene]
	if !ok {
		layers = make(map[string]string)
		g[scene] = layers
	}
	layers[layer] = path
}

// Lookup returns the path of a scene layer.
func (g Grouping) Lookup(scene, layer string) (string, bool) {
	layers, ok := g[scene]
	if !ok {
		return "", false
	}
	path, ok := layers[layer]
	return path, ok
}

// SceneNames returns scene names in lexical order.
func (g Grouping) SceneNames() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LayerNames returns the layer names of scene in lexical order.
func (g Grouping) LayerNames(scene string) []string {
	layers := g[scene]
	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileCount returns the number of grouped files.
func (g Grouping) FileCount() int {
	n := 0
	for _, layers := range g {
		n += len(layers)
	}
	return n
}

// MatchResult explains how a single path was classified.
type MatchResult struct {
	Path     string            `json:"path"`
	Matched  bool              `json:"matched"`
	Pattern  string            `json:"pattern,omitempty"`  // TagString that matched
	Scene    string            `json:"scene,omitempty"`    // Captured {scene}
	Layer    string            `json:"layer,omitempty"`    // Layer name after aliasing
	Captures map[string]string `json:"captures,omitempty"` // All captured tokens
	Reason   string            `json:"reason,omitempty"`   // Why the path was skipped
}

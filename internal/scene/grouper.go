// Package scene applies an import definition to a directory tree and groups
// the matching files into scenes of named layers.
package scene

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"scenefuse/internal/channel"
	"scenefuse/internal/config"
	"scenefuse/internal/definition"
	serr "scenefuse/internal/errors"
	"scenefuse/internal/log"
	"scenefuse/internal/tagstring"
	"scenefuse/pkg/types"

	"github.com/gobwas/glob"
)

// Grouper groups file paths into scenes. It holds no mutable state after
// construction and may be reused.
type Grouper struct {
	compiled     *definition.Compiled
	include      []glob.Glob
	duplicates   string
	channelNames bool
}

// Option configures a Grouper.
type Option func(*Grouper) error

// WithInclude restricts grouping to files whose base name matches one of the
// glob patterns. Without it every file is considered.
func WithInclude(patterns ...string) Option {
	return func(g *Grouper) error {
		g.include = g.include[:0]
		for _, p := range patterns {
			compiled, err := glob.Compile(p)
			if err != nil {
				return serr.NewConfigError("bad include glob", p, serr.InvalidConfig, err)
			}
			g.include = append(g.include, compiled)
		}
		return nil
	}
}

// WithDuplicates sets the policy for two files resolving to the same scene
// and layer: config.DuplicatesReject or config.DuplicatesLast.
func WithDuplicates(policy string) Option {
	return func(g *Grouper) error {
		switch policy {
		case config.DuplicatesReject, config.DuplicatesLast:
			g.duplicates = policy
			return nil
		default:
			return serr.NewConfigError("invalid duplicates setting", policy, serr.InvalidConfig, nil)
		}
	}
}

// WithIMCChannelNames rewrites captured IMC column headers before layer
// names are resolved.
func WithIMCChannelNames(enabled bool) Option {
	return func(g *Grouper) error {
		g.channelNames = enabled
		return nil
	}
}

// New compiles def and creates a Grouper. Duplicates are rejected unless
// WithDuplicates says otherwise.
func New(def types.ImportDefinition, opts ...Option) (*Grouper, error) {
	compiled, err := definition.Compile(def)
	if err != nil {
		return nil, err
	}
	g := &Grouper{
		compiled:   compiled,
		duplicates: config.DuplicatesReject,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// NewWithConfig creates a Grouper using the include, duplicates and channel
// name settings of cfg.
func NewWithConfig(cfg *config.Config, def types.ImportDefinition) (*Grouper, error) {
	return New(def,
		WithInclude(cfg.Include...),
		WithDuplicates(cfg.Settings.Duplicates),
		WithIMCChannelNames(cfg.Settings.IMCChannelNames),
	)
}

// Definition returns the import definition the grouper applies.
func (g *Grouper) Definition() types.ImportDefinition {
	return g.compiled.Definition
}

// Classify reports how a single path is treated: which pattern matched it
// and the scene and layer it belongs to, or why it was skipped.
func (g *Grouper) Classify(root, path string) (types.MatchResult, error) {
	res := types.MatchResult{Path: path}

	parts := tagstring.SplitPath(path)
	if len(parts) == 0 {
		res.Reason = "empty path"
		return res, nil
	}
	if !g.included(parts[len(parts)-1]) {
		res.Reason = "file name not included"
		return res, nil
	}

	for i, p := range g.compiled.Patterns {
		caps, ok := p.Match(root, path)
		if !ok {
			continue
		}
		if g.channelNames {
			if name, ok := channel.Normalize(caps.Layer()); ok {
				caps[tagstring.Layer] = name
			}
		}
		layer, ok, err := g.compiled.LayerName(caps)
		if err != nil {
			return res, err
		}
		res.Pattern = g.compiled.Definition.SceneSearch.TagStrings[i].Value
		res.Captures = caps
		res.Scene = caps.Scene()
		if !ok {
			res.Reason = fmt.Sprintf("layer %q is not declared by any ImageLayer", caps.Layer())
			return res, nil
		}
		res.Layer = layer
		res.Matched = true
		return res, nil
	}

	res.Reason = "no TagString matched"
	return res, nil
}

func (g *Grouper) included(name string) bool {
	if len(g.include) == 0 {
		return true
	}
	for _, inc := range g.include {
		if inc.Match(name) {
			return true
		}
	}
	return false
}

// Group assigns paths to scenes. Paths are processed in lexical order so the
// result is the same for any ordering of the input. Paths that match no
// pattern are skipped. Two paths resolving to the same scene and layer are an
// AmbiguousLayer error under the reject policy; under the last policy the
// lexically last path wins.
func (g *Grouper) Group(root string, paths []string) (types.Grouping, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	grouping := make(types.Grouping)
	skipped := 0
	for _, path := range sorted {
		res, err := g.Classify(root, path)
		if err != nil {
			return nil, err
		}
		if !res.Matched {
			skipped++
			log.LogWithFields(log.F("path", path), log.F("reason", res.Reason)).Debug("Skipped file")
			continue
		}

		if prev, exists := grouping.Lookup(res.Scene, res.Layer); exists {
			if g.duplicates == config.DuplicatesReject {
				return nil, serr.NewAmbiguityError(res.Scene, res.Layer, prev, path)
			}
			log.LogWithFields(log.F("scene", res.Scene), log.F("layer", res.Layer),
				log.F("replaced", prev), log.F("path", path)).Warn("Duplicate layer, keeping last match")
		}
		grouping.Add(res.Scene, res.Layer, path)
	}

	log.LogWithFields(log.F("root", root), log.F("scenes", len(grouping)),
		log.F("files", grouping.FileCount()), log.F("skipped", skipped)).Debug("Grouped files")
	return grouping, nil
}

// ListFiles returns every regular file below root.
func ListFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewFileError("directory not found", root, serr.FileNotFound, err)
		}
		return nil, serr.NewFileError("error accessing directory", root, serr.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return nil, serr.NewFileError("path is not a directory", root, serr.InvalidPath, nil)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, serr.NewFileError("error listing directory", root, serr.FileOperationFailed, err)
	}
	return files, nil
}

// ScanDirectory lists root and groups its files.
func (g *Grouper) ScanDirectory(root string) (types.Grouping, error) {
	files, err := ListFiles(root)
	if err != nil {
		return nil, err
	}
	return g.Group(root, files)
}

// Package definition loads, validates and saves import definition documents
// and compiles their TagString rules.
package definition

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	serr "scenefuse/internal/errors"
	"scenefuse/internal/log"
	"scenefuse/internal/tagstring"
	"scenefuse/pkg/types"

	"github.com/google/renameio/v2"
)

// Compiled is an import definition whose TagStrings have been parsed.
// It is immutable after Compile returns.
type Compiled struct {
	Definition types.ImportDefinition
	Patterns   []*tagstring.Pattern
}

// Load reads and validates an import definition document from path.
func Load(path string) (*types.ImportDefinitions, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewFileError("import definition file not found", path, serr.FileNotFound, err)
		}
		return nil, serr.NewFileError("error opening import definition file", path, serr.FileAccessDenied, err)
	}
	defer f.Close()

	defs, err := Parse(f)
	if err != nil {
		return nil, serr.Wrapf(err, "loading %s", path)
	}
	log.LogWithFields(log.F("path", path), log.F("definitions", len(defs.Definitions))).Debug("Loaded import definitions")
	return defs, nil
}

// Parse decodes an import definition document, fills defaults and validates
// every definition in it.
func Parse(r io.Reader) (*types.ImportDefinitions, error) {
	var defs types.ImportDefinitions
	if err := xml.NewDecoder(r).Decode(&defs); err != nil {
		return nil, serr.NewDefinitionError("error parsing import definitions", "", serr.InvalidDefinition, err)
	}
	for i := range defs.Definitions {
		applyDefaults(&defs.Definitions[i])
	}
	if err := Validate(&defs); err != nil {
		return nil, err
	}
	return &defs, nil
}

func applyDefaults(def *types.ImportDefinition) {
	sd := &def.SceneDefinition
	if sd.Extent == "" {
		sd.Extent = types.ExtentUnion
	}
	if sd.Unit == "" {
		sd.Unit = types.UnitMicrometers
	}
	for i := range def.SceneSearch.TagStrings {
		ts := &def.SceneSearch.TagStrings[i]
		ts.Value = strings.TrimSpace(ts.Value)
	}
}

// Validate checks every definition in defs. Definition names must be unique.
func Validate(defs *types.ImportDefinitions) error {
	if defs == nil || len(defs.Definitions) == 0 {
		return serr.NewDefinitionError("invalid import definitions", "", serr.InvalidDefinition, fmt.Errorf("no ImportDefinition elements"))
	}
	seen := make(map[string]bool, len(defs.Definitions))
	for _, def := range defs.Definitions {
		if seen[def.Name] {
			return serr.NewDefinitionError("invalid import definition", def.Name, serr.InvalidDefinition, fmt.Errorf("duplicate name"))
		}
		seen[def.Name] = true
		if _, err := Compile(def); err != nil {
			return err
		}
	}
	return nil
}

// Compile validates a single definition and parses its TagStrings.
// TagString and ImageLayer token problems are MalformedPattern errors; other
// problems are InvalidDefinition errors.
func Compile(def types.ImportDefinition) (*Compiled, error) {
	invalid := func(format string, args ...interface{}) error {
		return serr.NewDefinitionError("invalid import definition", def.Name, serr.InvalidDefinition, fmt.Errorf(format, args...))
	}

	if def.Name == "" {
		return nil, invalid("name is required")
	}
	if len(def.SceneSearch.TagStrings) == 0 {
		return nil, invalid("SceneSearch needs at least one TagString")
	}

	sd := def.SceneDefinition
	switch sd.Extent {
	case types.ExtentUnion, types.ExtentIntersection:
	default:
		return nil, invalid("unknown extent %q", sd.Extent)
	}
	switch sd.Unit {
	case types.UnitMicrometers, types.UnitNanometers, types.UnitMillimeters, types.UnitPixels:
	default:
		return nil, invalid("unknown unit %q", sd.Unit)
	}
	if sd.PixelSize <= 0 {
		return nil, invalid("pixel size must be > 0, got %g", sd.PixelSize)
	}
	if len(sd.Layers) == 0 {
		return nil, invalid("SceneDefinition needs at least one ImageLayer")
	}

	c := &Compiled{Definition: def}
	for _, ts := range def.SceneSearch.TagStrings {
		p, err := tagstring.Parse(ts.Value)
		if err != nil {
			return nil, serr.NewDefinitionError("invalid import definition", def.Name, serr.MalformedPattern, err)
		}
		c.Patterns = append(c.Patterns, p)
	}

	// Every layer token must be built from captures all patterns provide,
	// otherwise files would group differently depending on which pattern
	// matched them.
	for i, layer := range sd.Layers {
		token := layer.LayerToken()
		names, err := tagstring.TemplateCaptures(token)
		if err != nil {
			return nil, serr.NewDefinitionError("invalid import definition", def.Name, serr.MalformedPattern, err)
		}
		if !contains(names, tagstring.Layer) {
			return nil, serr.NewDefinitionError("invalid import definition", def.Name, serr.MalformedPattern,
				serr.NewPatternError("ImageLayer token must reference {layer}", token, nil))
		}
		aliasNames, err := tagstring.TemplateCaptures(layer.Name)
		if err != nil {
			return nil, serr.NewDefinitionError("invalid import definition", def.Name, serr.MalformedPattern, err)
		}
		for _, name := range append(names, aliasNames...) {
			for _, p := range c.Patterns {
				if !p.HasCapture(name) {
					return nil, serr.NewDefinitionError("invalid import definition", def.Name, serr.MalformedPattern,
						serr.NewPatternError(fmt.Sprintf("ImageLayer %d uses {%s} which is not captured by", i+1, name), p.String(), nil))
				}
			}
		}
	}
	return c, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Select returns the definition called name, or the first one when name is
// empty.
func Select(defs *types.ImportDefinitions, name string) (types.ImportDefinition, error) {
	if defs == nil || len(defs.Definitions) == 0 {
		return types.ImportDefinition{}, serr.NewDefinitionError("import definition not found", name, serr.DefinitionNotFound, nil)
	}
	if name == "" {
		return defs.Definitions[0], nil
	}
	for _, def := range defs.Definitions {
		if def.Name == name {
			return def, nil
		}
	}
	return types.ImportDefinition{}, serr.NewDefinitionError("import definition not found", name, serr.DefinitionNotFound, nil)
}

// LayerName resolves the layer name for a set of captures using the first
// ImageLayer that accepts them. ok is false when no layer accepts them.
func (c *Compiled) LayerName(caps tagstring.Captures) (string, bool, error) {
	for _, layer := range c.Definition.SceneDefinition.Layers {
		key, err := tagstring.Expand(layer.LayerToken(), caps)
		if err != nil {
			return "", false, err
		}
		if layer.Match != "" && layer.Match != key {
			continue
		}
		if layer.Name == "" {
			return key, true, nil
		}
		alias, err := tagstring.Expand(layer.Name, caps)
		if err != nil {
			return "", false, err
		}
		return alias, true, nil
	}
	return "", false, nil
}

// Encode writes defs as indented XML with a declaration header.
func Encode(w io.Writer, defs *types.ImportDefinitions) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(defs); err != nil {
		return fmt.Errorf("failed to encode import definitions: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Save validates defs and atomically writes them to path, creating parent
// directories as needed.
func Save(defs *types.ImportDefinitions, path string) error {
	if err := Validate(defs); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create definition directory: %w", err)
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending definition file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err)).Debug("cleanup pending definition file")
		}
	}()

	if err := Encode(pending, defs); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace definition file: %w", err)
	}
	log.LogWithFields(log.F("path", path)).Info("Saved import definitions")
	return nil
}

// Package afi writes fused-image manifests: one .afi file per scene listing
// the single-channel image of every layer.
package afi

import (
	"context"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	serr "scenefuse/internal/errors"
	"scenefuse/internal/log"
	"scenefuse/pkg/types"

	"github.com/google/renameio/v2"
)

// Ext is the manifest file extension.
const Ext = ".afi"

// ImageList is the root element of a manifest.
type ImageList struct {
	XMLName xml.Name `xml:"ImageList"`
	Images  []Image  `xml:"Image"`
}

// Image is one channel of a fused image.
type Image struct {
	Path        string `xml:"Path"`
	ChannelName string `xml:"ChannelName"`
}

// Build creates the manifest of one scene. Images are ordered by layer name
// and every path is made absolute. A layer whose file is missing is an error.
func Build(g types.Grouping, scene string) (ImageList, error) {
	layers := g.LayerNames(scene)
	if len(layers) == 0 {
		return ImageList{}, serr.Newf("scene %q has no layers", scene)
	}

	list := ImageList{Images: make([]Image, 0, len(layers))}
	for _, layer := range layers {
		path, _ := g.Lookup(scene, layer)
		abs, err := filepath.Abs(path)
		if err != nil {
			return ImageList{}, serr.NewFileError("cannot resolve layer path", path, serr.InvalidPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return ImageList{}, serr.NewFileError("layer file not found", abs, serr.FileNotFound, err)
			}
			return ImageList{}, serr.NewFileError("error accessing layer file", abs, serr.FileAccessDenied, err)
		}
		if info.IsDir() {
			return ImageList{}, serr.NewFileError("layer path is a directory", abs, serr.InvalidPath, nil)
		}
		list.Images = append(list.Images, Image{Path: abs, ChannelName: layer})
	}
	return list, nil
}

// Encode writes list as indented XML.
func Encode(w io.Writer, list ImageList) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("encode image list: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Decode reads a manifest.
func Decode(r io.Reader) (ImageList, error) {
	var list ImageList
	if err := xml.NewDecoder(r).Decode(&list); err != nil {
		return ImageList{}, fmt.Errorf("decode image list: %w", err)
	}
	return list, nil
}

// Path returns the manifest location of scene inside dir.
func Path(dir, scene string) string {
	return filepath.Join(dir, scene+Ext)
}

// WriteScene builds the manifest of scene and atomically writes it to
// <dir>/<scene>.afi.
func WriteScene(dir string, g types.Grouping, scene string) (types.ExportResult, error) {
	list, err := Build(g, scene)
	if err != nil {
		return types.ExportResult{}, err
	}

	path := Path(dir, scene)
	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return types.ExportResult{}, fmt.Errorf("create pending manifest %s: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err)).Debug("cleanup pending manifest")
		}
	}()

	if _, err := io.WriteString(pendingFile, xml.Header); err != nil {
		return types.ExportResult{}, fmt.Errorf("write manifest header: %w", err)
	}
	if err := Encode(pendingFile, list); err != nil {
		return types.ExportResult{}, err
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return types.ExportResult{}, fmt.Errorf("atomically replace manifest %s: %w", path, err)
	}

	return types.ExportResult{Scene: scene, Path: path, Layers: len(list.Images)}, nil
}

// Export writes a manifest for every scene of g into dir, creating dir if
// needed. A failing scene is logged and skipped; the remaining scenes are
// still written and the failures are returned together.
func Export(ctx context.Context, dir string, g types.Grouping) ([]types.ExportResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, serr.NewFileError("failed to create output directory", dir, serr.FileOperationFailed, err)
	}

	scenes := g.SceneNames()
	results := make([]types.ExportResult, 0, len(scenes))
	var errs []error
	for i, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := WriteScene(dir, g, scene)
		if err != nil {
			log.LogWithError(err).With(log.F("scene", scene)).Error("Failed to export scene")
			errs = append(errs, fmt.Errorf("scene %s: %w", scene, err))
			continue
		}
		log.LogWithFields(log.F("scene", scene), log.F("path", res.Path), log.F("layers", res.Layers)).
			Debugf("Exported scene %d/%d", i+1, len(scenes))
		results = append(results, res)
	}
	return results, stderrors.Join(errs...)
}

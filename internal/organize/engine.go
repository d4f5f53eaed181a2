// Package organize moves grouped scene layers into the root-folder layout
// <dest>/<scene>/<layer><ext>, which the built-in root-folder TagString
// matches.
package organize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"scenefuse/internal/config"
	serr "scenefuse/internal/errors"
	"scenefuse/internal/log"
	"scenefuse/internal/scene"
	"scenefuse/pkg/types"
)

// Collision strategies.
const (
	CollisionRename    = "rename"
	CollisionSkip      = "skip"
	CollisionOverwrite = "overwrite"
)

// Engine handles file organization operations
type Engine struct {
	dryRun     bool
	mu         sync.Mutex // Serializes collision checks and renames
	createDirs bool
	backup     bool
	collision  string
}

// New creates an Engine that renames on collision and creates missing
// directories.
func New() *Engine {
	return &Engine{
		createDirs: true,
		collision:  CollisionRename,
	}
}

// NewWithConfig creates an Engine from the organize settings of cfg.
func NewWithConfig(cfg *config.Config) *Engine {
	e := New()
	e.SetConfig(cfg)
	return e
}

// SetConfig applies the organize settings of cfg.
func (e *Engine) SetConfig(cfg *config.Config) {
	e.dryRun = cfg.Settings.DryRun
	e.createDirs = cfg.Settings.CreateDirs
	e.backup = cfg.Settings.Backup
	e.collision = cfg.Settings.Collision
}

// SetDryRun sets whether operations should be performed or just simulated
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// IsDryRun returns whether the engine is in dry run mode
func (e *Engine) IsDryRun() bool {
	return e.dryRun
}

// Destination returns where the file of a scene layer is placed below dest.
// The source extension is kept.
func Destination(dest, sceneName, layer, src string) (string, error) {
	for _, part := range []string{sceneName, layer} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", serr.NewFileError(fmt.Sprintf("cannot use %q as a file name", part), src, serr.InvalidPath, nil)
		}
	}
	return filepath.Join(dest, sceneName, layer+filepath.Ext(src)), nil
}

// MoveFile moves a file from source to destination, handling collisions based on config.
// It returns the final destination, which is empty when the move was skipped
// or the file is already in place.
func (e *Engine) MoveFile(src, dest string) (string, error) {
	cleanSrc := filepath.Clean(src)
	cleanDest := filepath.Clean(dest)

	if cleanSrc == cleanDest {
		log.Debug("Source and destination are the same, skipping: %s", src)
		return "", nil
	}

	srcInfo, err := os.Stat(cleanSrc)
	if err != nil {
		if os.IsNotExist(err) {
			return "", serr.NewFileError("source file not found", src, serr.FileNotFound, err)
		}
		return "", serr.NewFileError("source file error", src, serr.FileAccessDenied, err)
	}
	if srcInfo.IsDir() {
		return "", serr.NewFileError("cannot move directory as file", src, serr.InvalidPath, nil)
	}

	if e.dryRun {
		log.Info("Would move %s -> %s", src, cleanDest)
		return cleanDest, nil
	}

	destDir := filepath.Dir(cleanDest)
	if e.createDirs {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return "", serr.NewFileError("failed to create destination directory", destDir, serr.FileOperationFailed, err)
		}
	} else if _, err := os.Stat(destDir); err != nil {
		return "", serr.NewFileError("destination directory does not exist", destDir, serr.FileNotFound, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	finalDest, err := e.handleCollision(cleanSrc, cleanDest)
	if err != nil {
		return "", err
	}
	if finalDest == "" {
		return "", nil
	}

	if e.backup {
		if err := e.createBackup(finalDest); err != nil {
			return "", fmt.Errorf("backup failed: %w", err)
		}
	}

	log.Debug("Moving %s to %s", cleanSrc, finalDest)
	if err := os.Rename(cleanSrc, finalDest); err != nil {
		return "", serr.NewFileError("failed to move file", src, serr.FileOperationFailed, err)
	}

	log.Info("Moved %s -> %s", src, finalDest)
	return finalDest, nil
}

// handleCollision implements collision resolution strategies.
// It returns the final destination path and an error if any.
// If the file should be skipped, it returns an empty string and nil error.
func (e *Engine) handleCollision(src, dest string) (string, error) {
	_, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return dest, nil
	}
	if err != nil {
		return "", fmt.Errorf("error checking destination %s: %w", dest, err)
	}

	log.Warn("Destination file %s already exists. Handling collision with strategy: %s", dest, e.collision)

	switch e.collision {
	case CollisionSkip:
		log.Info("Skipping move for %s due to collision (strategy: skip)", src)
		return "", nil

	case CollisionOverwrite:
		log.Warn("Overwriting %s (strategy: overwrite)", dest)
		return dest, nil

	case CollisionRename:
		return e.findUniqueDestName(dest)

	default:
		return "", serr.NewConfigError("unknown collision strategy", e.collision, serr.InvalidConfig, nil)
	}
}

// findUniqueDestName finds a unique filename by adding counter to the basename
func (e *Engine) findUniqueDestName(originalPath string) (string, error) {
	ext := filepath.Ext(originalPath)
	base := strings.TrimSuffix(originalPath, ext)

	for counter := 1; counter <= 1000; counter++ {
		newName := fmt.Sprintf("%s_(%d)%s", base, counter, ext)

		if _, err := os.Stat(newName); os.IsNotExist(err) {
			log.Info("Renaming destination to %s due to collision (strategy: rename)", newName)
			return newName, nil
		}
	}

	return "", fmt.Errorf("failed to find unique name for %s after 1000 attempts", originalPath)
}

// createBackup copies dest to dest.bak.<unix time> if it exists.
func (e *Engine) createBackup(dest string) error {
	_, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	backupPath := fmt.Sprintf("%s.bak.%d", dest, time.Now().UnixNano())
	srcFile, err := os.Open(dest)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	destFile, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		return err
	}

	log.Info("Created backup: %s", backupPath)
	return nil
}

// OrganizeGrouping places every layer of g below dest. Scenes and layers are
// processed in lexical order. A failing file is recorded in its result and
// does not stop the remaining moves.
func (e *Engine) OrganizeGrouping(g types.Grouping, dest string) []types.OrganizeResult {
	results := make([]types.OrganizeResult, 0, g.FileCount())
	for _, sceneName := range g.SceneNames() {
		for _, layer := range g.LayerNames(sceneName) {
			src, _ := g.Lookup(sceneName, layer)
			result := types.OrganizeResult{
				Scene:      sceneName,
				Layer:      layer,
				SourcePath: src,
			}

			target, err := Destination(dest, sceneName, layer, src)
			if err == nil {
				result.DestinationPath = target
				var final string
				final, err = e.MoveFile(src, target)
				if final != "" {
					result.DestinationPath = final
					result.Moved = !e.dryRun
				}
			}
			if err != nil {
				log.LogWithError(err).With(log.F("scene", sceneName), log.F("layer", layer)).Error("Failed to organize file")
				result.Error = err
			}
			results = append(results, result)
		}
	}
	return results
}

// OrganizeDirectory groups the files below root and organizes them into dest.
func (e *Engine) OrganizeDirectory(g *scene.Grouper, root, dest string) ([]types.OrganizeResult, error) {
	grouping, err := g.ScanDirectory(root)
	if err != nil {
		return nil, err
	}
	log.Info("Organizing %d files in %d scenes", grouping.FileCount(), len(grouping))
	return e.OrganizeGrouping(grouping, dest), nil
}

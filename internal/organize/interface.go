package organize

import (
	"scenefuse/internal/config"
	"scenefuse/internal/scene"
	"scenefuse/pkg/types"
)

// Organizer defines the interface for file organization operations
// This allows for dependency injection in tests and other parts of the application
type Organizer interface {
	// SetConfig applies the organize settings of a config
	SetConfig(cfg *config.Config)

	// SetDryRun sets whether operations should be performed or just simulated
	SetDryRun(dryRun bool)

	// MoveFile moves a file from source to destination with safety checks
	MoveFile(src, dest string) (string, error)

	// OrganizeGrouping places grouped layers below a destination directory
	OrganizeGrouping(g types.Grouping, dest string) []types.OrganizeResult

	// OrganizeDirectory groups a directory and organizes the result
	OrganizeDirectory(g *scene.Grouper, root, dest string) ([]types.OrganizeResult, error)
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)

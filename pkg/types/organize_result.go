package types

// OrganizeResult holds the outcome of placing a single scene layer into the
// root-folder layout.
type OrganizeResult struct {
	Scene           string `json:"scene"`
	Layer           string `json:"layer"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Moved           bool   `json:"moved"`
	Error           error  `json:"error,omitempty"`
}

// ExportResult describes one written scene manifest.
type ExportResult struct {
	Scene  string `json:"scene"`
	Path   string `json:"path"`
	Layers int    `json:"layers"`
}

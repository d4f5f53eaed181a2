package definition

import "scenefuse/pkg/types"

// Built-in TagStrings for folders of single-page TIFFs, one folder per scene.
const (
	RootFolderTagString = `{root}\{scene}\{layer}.{any}:reverse`
	SubFolderTagString  = `{root}{\{any-folders}\{scene}\{layer}.{any}}:reverse`
)

// DefaultName is the name of the built-in import definition.
const DefaultName = "Single-page TIFF scenes"

// Default returns the built-in import definition: every folder holding
// single-page TIFFs is a scene and every file in it is one layer named after
// the file. Pixel size is 1 micrometer, the IMC ablation step.
func Default() *types.ImportDefinitions {
	return &types.ImportDefinitions{
		Definitions: []types.ImportDefinition{
			{
				Name:        DefaultName,
				Description: "Import each folder of single-channel TIFF files as one multi-layer scene",
				SceneSearch: types.SceneSearch{
					TagStrings: []types.TagString{
						{Name: "RootFolder", Value: RootFolderTagString},
						{Name: "SubFolder", Value: SubFolderTagString},
					},
				},
				SceneDefinition: types.SceneDefinition{
					Geocoding: false,
					Extent:    types.ExtentUnion,
					Unit:      types.UnitMicrometers,
					PixelSize: 1,
					Layers: []types.ImageLayer{
						{Name: "{layer}", Token: types.DefaultLayerToken},
					},
				},
			},
		},
	}
}

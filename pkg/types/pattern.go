package types

import "encoding/xml"

// ImportDefinitions is the document root of an import definition file.
type ImportDefinitions struct {
	XMLName     xml.Name           `xml:"ImportDefinitions"`
	Definitions []ImportDefinition `xml:"ImportDefinition"`
}

// ImportDefinition is a named rule set describing how a folder of
// single-page images becomes multi-layer scenes.
type ImportDefinition struct {
	Name            string          `xml:"Name,attr"`
	Description     string          `xml:"Description,attr,omitempty"`
	SceneSearch     SceneSearch     `xml:"SceneSearch"`
	SceneDefinition SceneDefinition `xml:"SceneDefinition"`
}

// SceneSearch holds the ordered TagString patterns used to discover scenes.
// The first entry is the root-folder case, the second the sub-folder case.
type SceneSearch struct {
	TagStrings []TagString `xml:"TagString"`
}

// TagString is a path pattern with named captures such as {scene} and {layer}.
type TagString struct {
	Name  string `xml:"Name,attr,omitempty"` // Optional label (e.g., "RootFolder")
	Value string `xml:",chardata"`           // Pattern text (e.g., `{root}\{scene}\{layer}.{any}:reverse`)
}

// SceneDefinition carries scene-level metadata and the layers a scene owns.
type SceneDefinition struct {
	Geocoding bool         `xml:"Geocoding,attr"`
	Extent    string       `xml:"Extent,attr"`    // "union" or "intersection"
	Unit      string       `xml:"Unit,attr"`      // e.g. "Micrometers"
	PixelSize float64      `xml:"PixelSize,attr"` // Physical size of one pixel in Unit
	Layers    []ImageLayer `xml:"ImageLayer"`
}

// ImageLayer binds a layer alias to the {layer} token captured by the
// SceneSearch patterns.
type ImageLayer struct {
	Name  string `xml:"Name,attr"`            // Alias template (e.g., "{layer}", "IMC {layer}")
	Token string `xml:"Token,attr,omitempty"` // Capture template identifying the layer, defaults to "{layer}"
	Match string `xml:"Match,attr,omitempty"` // Restrict to one captured layer value
}

// Extent policies
const (
	ExtentUnion        = "union"
	ExtentIntersection = "intersection"
)

// Units accepted in SceneDefinition.Unit
const (
	UnitMicrometers = "Micrometers"
	UnitNanometers  = "Nanometers"
	UnitMillimeters = "Millimeters"
	UnitPixels      = "Pixels"
)

// DefaultLayerToken is used when an ImageLayer omits Token.
const DefaultLayerToken = "{layer}"

// LayerToken returns the token template, falling back to DefaultLayerToken.
func (l ImageLayer) LayerToken() string {
	if l.Token == "" {
		return DefaultLayerToken
	}
	return l.Token
}

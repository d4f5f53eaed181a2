// Package channel normalises imaging mass cytometry channel names.
package channel

import "regexp"

// IMC text exports label columns "<label>(<metal><mass>Di)", for example
// "80ArAr(ArAr80Di)" or "191Ir_DNA1(Ir191Di)".
var headerPattern = regexp.MustCompile(`^(.+)\(([a-zA-Z]+)(\d+)Di\)$`)

// Normalize rewrites an IMC column header to "<metal>(<mass>)_<label>".
// Names that are not IMC headers are returned unchanged with ok false.
func Normalize(name string) (string, bool) {
	m := headerPattern.FindStringSubmatch(name)
	if m == nil {
		return name, false
	}
	label, metal, mass := m[1], m[2], m[3]
	return metal + "(" + mass + ")_" + label, true
}

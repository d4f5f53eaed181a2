package tagstring

import (
	"fmt"
	"strings"

	serr "scenefuse/internal/errors"
)

// TemplateCaptures returns the capture names referenced by a template such as
// "IMC {layer}". Braces that do not form a capture are a MalformedPattern.
func TemplateCaptures(tmpl string) ([]string, error) {
	var names []string
	for i := 0; i < len(tmpl); i++ {
		switch tmpl[i] {
		case '{':
			name, n := captureAt(tmpl[i:])
			if n == 0 {
				return nil, serr.NewPatternError("malformed template", tmpl, fmt.Errorf("invalid capture at offset %d", i))
			}
			if !knownCaptures[name] {
				return nil, serr.NewPatternError("malformed template", tmpl, fmt.Errorf("unknown capture {%s}", name))
			}
			names = append(names, name)
			i += n - 1
		case '}':
			return nil, serr.NewPatternError("malformed template", tmpl, fmt.Errorf("unbalanced '}' at offset %d", i))
		}
	}
	return names, nil
}

// Expand substitutes captures into tmpl. Missing captures are an error.
func Expand(tmpl string, caps Captures) (string, error) {
	var out strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '{' {
			out.WriteByte(tmpl[i])
			continue
		}
		name, n := captureAt(tmpl[i:])
		if n == 0 {
			return "", serr.NewPatternError("malformed template", tmpl, fmt.Errorf("invalid capture at offset %d", i))
		}
		value, ok := caps[name]
		if !ok {
			return "", fmt.Errorf("template %q: no value for {%s}", tmpl, name)
		}
		out.WriteString(value)
		i += n - 1
	}
	return out.String(), nil
}

package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderExpr = regexp.MustCompile(`\{([a-z_]+)\}`)

// TemplateError reports a template placeholder that names no known field.
// It is a configuration defect: templates are validated once at startup, so
// this never surfaces at request time.
type TemplateError struct {
	Placeholder string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template references unknown field {%s}", e.Placeholder)
}

// Render substitutes every {field_name} placeholder with the corresponding
// value. Substitution is a single pass over the template: placeholder-like
// substrings inside values are left alone. Fails with TemplateError when a
// placeholder names a field absent from the value set.
func Render(template string, fields map[string]string) (string, error) {
	var missing string
	rendered := placeholderExpr.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.Trim(match, "{}")
		value, ok := fields[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})

	if missing != "" {
		return "", &TemplateError{Placeholder: missing}
	}
	return rendered, nil
}

// Validate checks that every placeholder in the template is one of the
// known field names. Run once at startup for each task template.
func Validate(template string, known []string) error {
	allowed := make(map[string]struct{}, len(known))
	for _, name := range known {
		allowed[name] = struct{}{}
	}

	for _, match := range placeholderExpr.FindAllStringSubmatch(template, -1) {
		if _, ok := allowed[match[1]]; !ok {
			return &TemplateError{Placeholder: match[1]}
		}
	}
	return nil
}

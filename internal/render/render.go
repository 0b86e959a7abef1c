// Package render substitutes customer attributes into message templates.
//
// The grammar is deliberately tiny: {{identifier}} tokens only, ASCII word
// characters, no nesting and no expressions. Unknown names render as the
// empty string; malformed tokens are left alone. Rendering is pure and never
// fails.
package render

import (
	"regexp"
	"strconv"
	"time"

	"github.com/targetly/crm-backend/internal/model"
)

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render replaces every {{field}} occurrence in template with the stringified
// value of that customer attribute.
func Render(template string, customer *model.Customer) string {
	return placeholder.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[2 : len(tok)-2]
		v, ok := customer.Attribute(name)
		if !ok {
			return ""
		}
		return stringify(v)
	})
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

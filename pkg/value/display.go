package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Display renders v per §4.1: Null -> "null"; Boolean -> "true"/"false";
// numeric -> canonical decimal form; String wrapped in quotes; Array
// bracketed and comma-separated. Grounded on
// original_source/src/value.rs's "impl Display for MoonValue".
func Display(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBoolean:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindInteger:
		return v.integer.String()
	case KindDecimal:
		return strconv.FormatFloat(v.decimal, 'g', -1, 64)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range v.array {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Display(item))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return "<non-scalar>"
	}
}

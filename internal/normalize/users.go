package normalize

import (
	"encoding/json"
	"fmt"
)

// UserTransforms derives the display fields the users directory filters on.
//   - fullname: "<first_name> <last_name>"
//   - active:   true only when is_active is the number 1
var UserTransforms = Transforms{
	"fullname": func(src map[string]any) any {
		return fmt.Sprintf("%s %s", stringField(src, "first_name"), stringField(src, "last_name"))
	},
	"active": func(src map[string]any) any {
		return isOne(src["is_active"])
	},
}

func stringField(src map[string]any, key string) string {
	v, ok := src[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isOne(v any) bool {
	switch n := v.(type) {
	case int:
		return n == 1
	case int32:
		return n == 1
	case int64:
		return n == 1
	case float32:
		return n == 1
	case float64:
		return n == 1
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 1
	default:
		return false
	}
}

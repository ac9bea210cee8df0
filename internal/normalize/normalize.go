// Package normalize rewrites backend records from snake_case keys to camelCase keys.
//
// Only top-level keys are rewritten. Nested maps and slices are passed through as-is.
package normalize

import (
	"strings"

	apperrors "github.com/target/mmk-ui-client/internal/errors"
)

// Transform derives a field value from the original (un-normalized) source record.
type Transform func(src map[string]any) any

// Transforms maps an output key to the derivation that produces its value.
// Keys are used verbatim; they are not camelCased.
type Transforms map[string]Transform

// ErrNilRecord is returned when Record is given a nil map.
var ErrNilRecord = apperrors.Validation("normalize: record is nil")

// CamelCase replaces every underscore followed by a lowercase ASCII letter with the
// uppercase form of that letter. Any other underscore is kept.
func CamelCase(key string) string {
	if strings.IndexByte(key, '_') < 0 {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' && i+1 < len(key) && isLower(key[i+1]) {
			b.WriteByte(key[i+1] - ('a' - 'A'))
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

// Record returns a new map whose keys are the camelCase form of src's keys.
// Each transform is then evaluated against src and overwrites the value at its key.
func Record(src map[string]any, transforms Transforms) (map[string]any, error) {
	if src == nil {
		return nil, ErrNilRecord
	}

	out := make(map[string]any, len(src)+len(transforms))
	for k, v := range src {
		out[CamelCase(k)] = v
	}

	for k, fn := range transforms {
		if fn == nil {
			continue
		}
		out[k] = fn(src)
	}

	return out, nil
}

// Records normalizes each element of src, stopping at the first failure.
func Records(src []map[string]any, transforms Transforms) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(src))
	for i, rec := range src {
		n, err := Record(rec, transforms)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "normalize record %d", i)
		}
		out = append(out, n)
	}
	return out, nil
}

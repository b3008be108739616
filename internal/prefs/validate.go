package prefs

import (
	"fmt"
)

// Patch is a partial mapping of field name to new value. Only the
// fields present are changed; applying a patch never removes fields.
type Patch map[string]any

// ValidationError reports the first field of a rejected mutation along
// with a description of its allowed domain. The whole mutation is
// rejected atomically; the store is left unchanged.
type ValidationError struct {
	Field  string
	Domain string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %q: %s (allowed: %s)", e.Field, e.Reason, e.Domain)
}

// normalizePatch validates every field of the patch against the
// registry and coerces values to their canonical representation
// (JSON decoding hands us float64 for ints, []any for sets, and so on).
// The first violation fails the whole patch.
func normalizePatch(patch Patch) (Patch, error) {
	if len(patch) == 0 {
		return nil, &ValidationError{Field: "", Domain: "non-empty patch", Reason: "patch is empty"}
	}
	out := make(Patch, len(patch))
	for name, raw := range patch {
		def, ok := Lookup(name)
		if !ok {
			return nil, &ValidationError{Field: name, Domain: "registered field name", Reason: "unknown field"}
		}
		v, err := normalizeValue(def, raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func normalizeValue(def FieldDef, raw any) (any, error) {
	switch def.Kind {
	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, typeErr(def, raw)
		}
		if !contains(def.Enum, s) {
			return nil, &ValidationError{Field: def.Name, Domain: def.Domain(), Reason: fmt.Sprintf("%q is not a member", s)}
		}
		return s, nil

	case KindFloat:
		f, ok := toFloat(raw)
		if !ok {
			return nil, typeErr(def, raw)
		}
		if f < def.MinFloat || f > def.MaxFloat {
			return nil, &ValidationError{Field: def.Name, Domain: def.Domain(), Reason: fmt.Sprintf("%g is out of bounds", f)}
		}
		return f, nil

	case KindInt:
		n, ok := toInt(raw)
		if !ok {
			return nil, typeErr(def, raw)
		}
		if n < def.MinInt || n > def.MaxInt {
			return nil, &ValidationError{Field: def.Name, Domain: def.Domain(), Reason: fmt.Sprintf("%d is out of bounds", n)}
		}
		return n, nil

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, typeErr(def, raw)
		}
		return b, nil

	case KindEnumSet:
		items, ok := toStringSlice(raw)
		if !ok {
			return nil, typeErr(def, raw)
		}
		seen := make(map[string]bool, len(items))
		out := make([]string, 0, len(items))
		for _, s := range items {
			if !contains(def.Enum, s) {
				return nil, &ValidationError{Field: def.Name, Domain: def.Domain(), Reason: fmt.Sprintf("%q is not a member", s)}
			}
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
		return out, nil

	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, typeErr(def, raw)
		}
		return s, nil

	case KindStringMap:
		m, ok := toStringMap(raw)
		if !ok {
			return nil, typeErr(def, raw)
		}
		return m, nil

	default:
		return nil, typeErr(def, raw)
	}
}

func typeErr(def FieldDef, raw any) *ValidationError {
	return &ValidationError{
		Field:  def.Name,
		Domain: def.Domain(),
		Reason: fmt.Sprintf("wrong type %T", raw),
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func toStringSlice(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func toStringMap(raw any) (map[string]string, bool) {
	switch v := raw.(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, true
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

package prefs

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Snapshot is an immutable, versioned value of the full preference set.
// It is never mutated in place; every committed mutation produces a new
// snapshot with version+1.
type Snapshot struct {
	version int64
	fields  map[string]any
}

// DefaultSnapshot builds the version-0 snapshot from the registry
// defaults.
func DefaultSnapshot() *Snapshot {
	fields := make(map[string]any, len(fieldDefs))
	for _, d := range fieldDefs {
		fields[d.Name] = copyValue(d.Default)
	}
	return &Snapshot{version: 0, fields: fields}
}

// Version returns the monotonically increasing commit counter.
func (s *Snapshot) Version() int64 { return s.version }

// Get returns the raw value of a field. Set and map values are copied
// so callers cannot alias internal state.
func (s *Snapshot) Get(name string) (any, bool) {
	v, ok := s.fields[name]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// String returns a string-kind (or enum-kind) field, or "" if absent.
func (s *Snapshot) String(name string) string {
	v, _ := s.fields[name].(string)
	return v
}

// Float returns a float-kind field, or 0.
func (s *Snapshot) Float(name string) float64 {
	v, _ := s.fields[name].(float64)
	return v
}

// Int returns an int-kind field, or 0.
func (s *Snapshot) Int(name string) int64 {
	v, _ := s.fields[name].(int64)
	return v
}

// Bool returns a bool-kind field, or false.
func (s *Snapshot) Bool(name string) bool {
	v, _ := s.fields[name].(bool)
	return v
}

// StringSet returns a copy of an enum-set field.
func (s *Snapshot) StringSet(name string) []string {
	v, _ := s.fields[name].([]string)
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// StringMap returns a copy of a string-map field.
func (s *Snapshot) StringMap(name string) map[string]string {
	v, _ := s.fields[name].(map[string]string)
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Fields returns a copy of all field values keyed by name.
func (s *Snapshot) Fields() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = copyValue(v)
	}
	return out
}

// AIProjection exports the ai-category fields as a read-only map,
// handed to the external personalization service as request context.
// It is a one-way export, not a mutation path.
func (s *Snapshot) AIProjection() map[string]any {
	out := make(map[string]any, 8)
	for _, d := range Fields(CategoryAI) {
		out[d.Name] = copyValue(s.fields[d.Name])
	}
	out["version"] = s.version
	return out
}

// overlay builds the successor snapshot: current fields with the
// already-validated patch applied and version incremented. Fields not
// mentioned in the patch are carried over unchanged.
func (s *Snapshot) overlay(patch Patch) *Snapshot {
	fields := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	for k, v := range patch {
		fields[k] = copyValue(v)
	}
	return &Snapshot{version: s.version + 1, fields: fields}
}

// Diff returns the names of fields whose values differ between two
// snapshots, sorted for stable iteration.
func Diff(old, new *Snapshot) []string {
	changed := make([]string, 0, 4)
	for name, nv := range new.fields {
		if !valueEqual(nv, old.fields[name]) {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case map[string]string:
		bv, ok := b.(map[string]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if bv[k] != v {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case []string:
		out := make([]string, len(tv))
		copy(out, tv)
		return out
	case map[string]string:
		out := make(map[string]string, len(tv))
		for k, val := range tv {
			out[k] = val
		}
		return out
	default:
		return v
	}
}

type snapshotDoc struct {
	Version int64          `json:"version"`
	Fields  map[string]any `json:"fields"`
}

// MarshalSnapshot serializes a snapshot for the durable backend.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return json.Marshal(snapshotDoc{Version: s.version, Fields: s.fields})
}

// UnmarshalSnapshot decodes a durable payload back into a snapshot.
// JSON-decoded values are coerced to the registry kinds; fields added
// to the registry since the payload was written fall back to their
// defaults, and fields no longer registered are dropped.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	fields := make(map[string]any, len(fieldDefs))
	for _, d := range fieldDefs {
		raw, ok := doc.Fields[d.Name]
		if !ok {
			fields[d.Name] = copyValue(d.Default)
			continue
		}
		v, err := coerce(d, raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", d.Name, err)
		}
		fields[d.Name] = v
	}
	return &Snapshot{version: doc.Version, fields: fields}, nil
}

func coerce(d FieldDef, raw any) (any, error) {
	switch d.Kind {
	case KindEnum, KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	case KindFloat:
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		return f, nil
	case KindInt:
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		return int64(f), nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return b, nil
	case KindEnumSet:
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", raw)
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", it)
			}
			out = append(out, s)
		}
		return out, nil
	case KindStringMap:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", raw)
		}
		out := make(map[string]string, len(m))
		for k, it := range m {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("expected string value for key %q, got %T", k, it)
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported kind %v", d.Kind)
	}
}

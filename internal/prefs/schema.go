package prefs

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups related preference fields, mirroring the settings
// categories exposed to clients.
type Category string

const (
	CategoryLearning      Category = "learning"
	CategoryContent       Category = "content"
	CategorySession       Category = "session"
	CategoryAccessibility Category = "accessibility"
	CategoryNotification  Category = "notification"
	CategoryAI            Category = "ai"
	CategorySystem        Category = "system"
)

// Kind is the value type of a preference field.
type Kind int

const (
	KindEnum Kind = iota
	KindFloat
	KindInt
	KindBool
	KindEnumSet
	KindString
	KindStringMap
)

func (k Kind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindEnumSet:
		return "enum_set"
	case KindString:
		return "string"
	case KindStringMap:
		return "string_map"
	default:
		return "unknown"
	}
}

// FieldDef declares a single preference field: its type, its allowed
// domain and its default value. The registry below is the only place
// defaults and domains are defined.
type FieldDef struct {
	Name     string
	Category Category
	Kind     Kind

	// Enum holds the allowed values for KindEnum and KindEnumSet.
	Enum []string

	// MinFloat/MaxFloat bound KindFloat values (inclusive).
	MinFloat float64
	MaxFloat float64

	// MinInt/MaxInt bound KindInt values (inclusive).
	MinInt int64
	MaxInt int64

	Default any
}

// Domain returns a human-readable description of the allowed values,
// used in validation errors.
func (d FieldDef) Domain() string {
	switch d.Kind {
	case KindEnum:
		return "one of {" + strings.Join(d.Enum, ", ") + "}"
	case KindEnumSet:
		return "subset of {" + strings.Join(d.Enum, ", ") + "}"
	case KindFloat:
		return fmt.Sprintf("float in [%g, %g]", d.MinFloat, d.MaxFloat)
	case KindInt:
		return fmt.Sprintf("int in [%d, %d]", d.MinInt, d.MaxInt)
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindStringMap:
		return "map of string to string"
	default:
		return "unknown"
	}
}

// Difficulty tier values for the "difficulty_tier" field, ordered from
// easiest to hardest. TierOrder is the canonical ordering used by the
// feedback controller.
const (
	Tier0 = "tier0"
	Tier1 = "tier1"
	Tier2 = "tier2"
	Tier3 = "tier3"
)

var TierOrder = []string{Tier0, Tier1, Tier2, Tier3}

// Grade tier values for the "grade_tier" field, ordered from earliest
// to latest. GradeElementary is the baseline tier.
const (
	GradePreK            = "pre_k"
	GradeKindergarten    = "kindergarten"
	GradeEarlyElementary = "early_elementary"
	GradeElementary      = "elementary"
	GradeUpperElementary = "upper_elementary"
	GradeMiddleSchool    = "middle_school"
	GradeHighSchool      = "high_school"
)

var GradeOrder = []string{
	GradePreK, GradeKindergarten, GradeEarlyElementary, GradeElementary,
	GradeUpperElementary, GradeMiddleSchool, GradeHighSchool,
}

func enumField(name string, cat Category, def string, values ...string) FieldDef {
	return FieldDef{Name: name, Category: cat, Kind: KindEnum, Enum: values, Default: def}
}

func floatField(name string, cat Category, min, max, def float64) FieldDef {
	return FieldDef{Name: name, Category: cat, Kind: KindFloat, MinFloat: min, MaxFloat: max, Default: def}
}

func intField(name string, cat Category, min, max, def int64) FieldDef {
	return FieldDef{Name: name, Category: cat, Kind: KindInt, MinInt: min, MaxInt: max, Default: def}
}

func boolField(name string, cat Category, def bool) FieldDef {
	return FieldDef{Name: name, Category: cat, Kind: KindBool, Default: def}
}

func setField(name string, cat Category, def []string, values ...string) FieldDef {
	return FieldDef{Name: name, Category: cat, Kind: KindEnumSet, Enum: values, Default: def}
}

func stringField(name string, cat Category, def string) FieldDef {
	return FieldDef{Name: name, Category: cat, Kind: KindString, Default: def}
}

func mapField(name string, cat Category) FieldDef {
	return FieldDef{Name: name, Category: cat, Kind: KindStringMap, Default: map[string]string{}}
}

// fieldDefs is the closed field registry. Every mutation is validated
// against it; unknown names are rejected.
var fieldDefs = []FieldDef{
	// learning
	enumField("difficulty_tier", CategoryLearning, Tier1, TierOrder...),
	enumField("grade_tier", CategoryLearning, GradeElementary, GradeOrder...),
	floatField("learning_intensity", CategoryLearning, 0.1, 1.0, 0.5),
	floatField("complexity_multiplier", CategoryLearning, 0.25, 3.0, 1.0),
	enumField("learning_pace", CategoryLearning, "moderate", "slow", "moderate", "fast"),
	enumField("learning_style", CategoryLearning, "mixed", "visual", "auditory", "kinesthetic", "mixed"),
	intField("daily_goal_minutes", CategoryLearning, 5, 240, 20),
	intField("weekly_goal_minutes", CategoryLearning, 10, 1200, 120),
	intField("items_per_session", CategoryLearning, 1, 50, 10),
	intField("streak_to_advance", CategoryLearning, 2, 10, 5),
	intField("streak_to_ease", CategoryLearning, 2, 10, 3),
	setField("topic_focus", CategoryLearning, []string{"addition", "subtraction"},
		"addition", "subtraction", "multiplication", "division", "counting"),
	stringField("skill_focus", CategoryLearning, ""),
	boolField("adaptive_difficulty_enabled", CategoryLearning, true),
	boolField("show_explanations", CategoryLearning, true),
	boolField("retry_incorrect", CategoryLearning, true),

	// content
	setField("preferred_formats", CategoryContent, []string{"text", "interactive"},
		"text", "audio", "video", "interactive"),
	enumField("content_language", CategoryContent, "en", "en", "es", "fr", "de", "vi"),
	intField("reading_level_offset", CategoryContent, -2, 2, 0),
	stringField("theme_pack", CategoryContent, "classic"),
	enumField("celebration_style", CategoryContent, "stars", "confetti", "stars", "quiet"),
	enumField("hint_style", CategoryContent, "visual", "visual", "textual", "none"),

	// session
	intField("session_length_minutes", CategorySession, 5, 60, 15),
	boolField("breaks_enabled", CategorySession, true),
	intField("break_frequency_minutes", CategorySession, 5, 60, 20),
	intField("break_duration_minutes", CategorySession, 1, 15, 5),
	boolField("sound_enabled", CategorySession, true),
	boolField("music_enabled", CategorySession, true),
	floatField("music_volume", CategorySession, 0.0, 1.0, 0.6),
	floatField("effects_volume", CategorySession, 0.0, 1.0, 0.8),
	boolField("haptics_enabled", CategorySession, true),
	boolField("timer_visible", CategorySession, true),
	intField("timer_seconds", CategorySession, 0, 300, 0),

	// accessibility
	boolField("high_contrast", CategoryAccessibility, false),
	boolField("reduced_motion", CategoryAccessibility, false),
	boolField("large_text", CategoryAccessibility, false),
	boolField("dyslexia_friendly_font", CategoryAccessibility, false),
	boolField("audio_prompts", CategoryAccessibility, false),
	boolField("captions_enabled", CategoryAccessibility, false),
	enumField("color_blind_mode", CategoryAccessibility, "off",
		"off", "protanopia", "deuteranopia", "tritanopia"),

	// notification
	boolField("reminders_enabled", CategoryNotification, true),
	enumField("reminder_frequency", CategoryNotification, "daily",
		"realtime", "hourly", "daily", "weekly", "never"),
	stringField("reminder_time", CategoryNotification, "17:00"),
	boolField("missed_goal_alert", CategoryNotification, true),

	// ai
	boolField("ai_personalization_enabled", CategoryAI, true),
	enumField("ai_tone", CategoryAI, "encouraging", "encouraging", "neutral", "playful"),
	intField("ai_hint_budget", CategoryAI, 0, 10, 3),
	floatField("ai_creativity", CategoryAI, 0.0, 1.0, 0.4),
	enumField("ai_model_tier", CategoryAI, "standard", "standard", "advanced"),
	mapField("ai_profile", CategoryAI),

	// system
	boolField("telemetry_enabled", CategorySystem, true),
	boolField("sync_on_change", CategorySystem, true),
}

var fieldIndex = func() map[string]FieldDef {
	idx := make(map[string]FieldDef, len(fieldDefs))
	for _, d := range fieldDefs {
		if _, dup := idx[d.Name]; dup {
			panic("prefs: duplicate field definition: " + d.Name)
		}
		idx[d.Name] = d
	}
	return idx
}()

// Lookup returns the definition for a field name.
func Lookup(name string) (FieldDef, bool) {
	d, ok := fieldIndex[name]
	return d, ok
}

// FieldNames returns all registered field names in sorted order.
func FieldNames() []string {
	names := make([]string, 0, len(fieldIndex))
	for name := range fieldIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the definitions for a category, sorted by name.
func Fields(cat Category) []FieldDef {
	defs := make([]FieldDef, 0, 8)
	for _, d := range fieldDefs {
		if d.Category == cat {
			defs = append(defs, d)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

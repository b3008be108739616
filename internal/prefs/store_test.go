package prefs

import (
	"errors"
	"testing"
)

func TestMutateCommitsAndIncrementsVersion(t *testing.T) {
	store := NewStore(nil, nil, nil, nil)

	snap, err := store.Mutate(Patch{"difficulty_tier": Tier2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Version() != 1 {
		t.Errorf("expected version 1, got %d", snap.Version())
	}
	if got := store.Current().String("difficulty_tier"); got != Tier2 {
		t.Errorf("expected tier2, got %q", got)
	}

	snap, err = store.Mutate(Patch{"learning_intensity": 0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Version() != 2 {
		t.Errorf("expected version 2, got %d", snap.Version())
	}
}

func TestMutateRejectsInvalidPatches(t *testing.T) {
	testCases := []struct {
		name  string
		patch Patch
		field string
	}{
		{"unknown field", Patch{"no_such_field": true}, "no_such_field"},
		{"unknown enum value", Patch{"difficulty_tier": "extreme"}, "difficulty_tier"},
		{"float below bound", Patch{"learning_intensity": 0.05}, "learning_intensity"},
		{"float above bound", Patch{"learning_intensity": 1.5}, "learning_intensity"},
		{"int out of bounds", Patch{"items_per_session": 500}, "items_per_session"},
		{"wrong type for bool", Patch{"sound_enabled": "yes"}, "sound_enabled"},
		{"fractional value for int", Patch{"daily_goal_minutes": 30.5}, "daily_goal_minutes"},
		{"set with non-member", Patch{"topic_focus": []string{"addition", "geometry"}}, "topic_focus"},
		{"empty patch", Patch{}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(nil, nil, nil, nil)
			before := store.Current()

			_, err := store.Mutate(tc.patch)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected offending field %q, got %q", tc.field, verr.Field)
			}
			if store.Current() != before {
				t.Error("store state changed on rejected mutation")
			}
			if store.Current().Version() != 0 {
				t.Errorf("version changed on rejected mutation: %d", store.Current().Version())
			}
		})
	}
}

func TestMutateIsAtomic(t *testing.T) {
	store := NewStore(nil, nil, nil, nil)

	// One valid field plus one invalid field: nothing may be applied.
	_, err := store.Mutate(Patch{
		"difficulty_tier": Tier3,
		"grade_tier":      "college",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := store.Current().String("difficulty_tier"); got != Tier1 {
		t.Errorf("partial application detected: difficulty_tier = %q", got)
	}
}

func TestDisjointPatchesMergeIdempotently(t *testing.T) {
	p1 := Patch{"difficulty_tier": Tier2, "sound_enabled": false}
	p2 := Patch{"learning_intensity": 0.8, "grade_tier": GradeMiddleSchool}

	sequential := NewStore(nil, nil, nil, nil)
	if _, err := sequential.Mutate(p1); err != nil {
		t.Fatal(err)
	}
	if _, err := sequential.Mutate(p2); err != nil {
		t.Fatal(err)
	}

	merged := Patch{}
	for k, v := range p1 {
		merged[k] = v
	}
	for k, v := range p2 {
		merged[k] = v
	}
	single := NewStore(nil, nil, nil, nil)
	if _, err := single.Mutate(merged); err != nil {
		t.Fatal(err)
	}

	a := sequential.Current().Fields()
	b := single.Current().Fields()
	for name := range a {
		if !valueEqual(a[name], b[name]) {
			t.Errorf("field %q differs: %v vs %v", name, a[name], b[name])
		}
	}
	if sequential.Current().Version() != 2 || single.Current().Version() != 1 {
		t.Errorf("unexpected versions: %d, %d",
			sequential.Current().Version(), single.Current().Version())
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	store := NewStore(nil, nil, nil, nil)
	before := store.Current()
	topicsBefore := before.StringSet("topic_focus")

	if _, err := store.Mutate(Patch{"topic_focus": []string{"division"}}); err != nil {
		t.Fatal(err)
	}

	// The superseded snapshot still carries its original value.
	if got := before.StringSet("topic_focus"); len(got) != len(topicsBefore) {
		t.Errorf("old snapshot mutated: %v", got)
	}

	// Mutating a returned copy does not leak into the snapshot.
	after := store.Current()
	set := after.StringSet("topic_focus")
	set[0] = "hacked"
	if got := after.StringSet("topic_focus"); got[0] != "division" {
		t.Errorf("snapshot aliased by returned set: %v", got)
	}
}

type recordingNotifier struct {
	versions []int64
	changed  [][]string
}

func (r *recordingNotifier) Notify(old, new *Snapshot) {
	r.versions = append(r.versions, new.Version())
	r.changed = append(r.changed, Diff(old, new))
}

func TestMutateNotifiesInCommitOrder(t *testing.T) {
	notifier := &recordingNotifier{}
	store := NewStore(nil, notifier, nil, nil)

	if _, err := store.Mutate(Patch{"sound_enabled": false}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Mutate(Patch{"music_volume": 0.1}); err != nil {
		t.Fatal(err)
	}

	if len(notifier.versions) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.versions))
	}
	for i := 1; i < len(notifier.versions); i++ {
		if notifier.versions[i] <= notifier.versions[i-1] {
			t.Errorf("versions not strictly increasing: %v", notifier.versions)
		}
	}
	if len(notifier.changed[0]) != 1 || notifier.changed[0][0] != "sound_enabled" {
		t.Errorf("unexpected changed set: %v", notifier.changed[0])
	}
}

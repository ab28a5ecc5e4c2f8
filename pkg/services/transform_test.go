package services

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/meetfeed/meetfeed-client/internal/domain"
)

const backendEvent = `{
	"_id": 77,
	"title": "Chess night",
	"starts_at": "2025-02-14T18:30:00Z",
	"location": "Library",
	"capacity": "12",
	"creator_profile": {"id": 5, "display_name": "Oleg", "photo_url": "https://cdn/oleg.jpg"},
	"participants": [
		{"id": 9, "first_name": "Ira", "photo": "https://cdn/ira.jpg", "interests": ["chess", {"id": 2, "name": "go"}],
		 "custom_fields": [{"title": "Job", "value": 3}]}
	],
	"town": "Москва"
}`

func TestNormalizeEventResolvesAlternateNames(t *testing.T) {
	got, err := NormalizeEvent([]byte(backendEvent))
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}

	want := domain.Event{
		ID:           "77",
		Title:        "Chess night",
		Date:         "14-02-2025",
		StartsAt:     "2025-02-14T18:30:00Z",
		Location:     "Library",
		MaxAttendees: 12,
		Image:        "https://cdn/oleg.jpg",
		CreatorProfile: &domain.Participant{
			ID: "5", Name: "Oleg", Photo: "https://cdn/oleg.jpg",
		},
		Attendees: []domain.Participant{{
			ID:           "9",
			Name:         "Ira",
			Photo:        "https://cdn/ira.jpg",
			Interests:    []domain.Interest{{Name: "chess"}, {ID: "2", Name: "go"}},
			CustomFields: []domain.CustomField{{ID: "field-0", Title: "Job", Value: "3"}},
		}},
		Town: "Москва",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalized event mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeEventIsIdempotent(t *testing.T) {
	first, err := NormalizeEvent([]byte(backendEvent))
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}
	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := NormalizeEvent(encoded)
	if err != nil {
		t.Fatalf("NormalizeEvent second pass: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second pass changed the record (-first +second):\n%s", diff)
	}
}

func TestNormalizeProfileIsIdempotent(t *testing.T) {
	body := `{"id":"p1","user":{"id":3},"display_name":"Ann","age":"27","photo_url":"u",
		"interests":["music"],"custom_fields":[{"title":"City","value":"Riga"}],"showBio":false}`

	first, err := NormalizeProfile([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeProfile: %v", err)
	}
	if first.UserID != "3" || first.Age != 27 || first.ShowBio || !first.ShowInterests {
		t.Fatalf("unexpected profile %+v", first)
	}

	encoded, _ := json.Marshal(first)
	second, err := NormalizeProfile(encoded)
	if err != nil {
		t.Fatalf("NormalizeProfile second pass: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second pass changed the profile (-first +second):\n%s", diff)
	}
}

func TestMergeProfileKeepsLocalTextWhenBackendIsBlank(t *testing.T) {
	prev := domain.NewProfile("Ann")
	prev.Bio = "local bio"
	prev.Interests = []domain.Interest{{Name: "old"}}

	got, err := MergeProfile(prev, []byte(`{"display_name":"","bio":"","interests":[]}`))
	if err != nil {
		t.Fatalf("MergeProfile: %v", err)
	}
	if got.Name != "Ann" || got.Bio != "local bio" {
		t.Fatalf("blank text must not overwrite local values: %+v", got)
	}
	if len(got.Interests) != 0 {
		t.Fatalf("a sent list replaces the local one, got %v", got.Interests)
	}
	if len(prev.Interests) != 1 {
		t.Fatalf("MergeProfile must not mutate prev")
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2025-01-31":          "31-01-2025",
		"2025-01-31T10:00:00": "31-01-2025",
		"31-01-2025":          "31-01-2025",
		" tomorrow ":          "tomorrow",
		"":                    "",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeEventsBareList(t *testing.T) {
	got, err := NormalizeEvents([]byte(`[{"id":"a"},{"id":"b","attendees":[{"id":"x","name":"X"}]}]`))
	if err != nil {
		t.Fatalf("NormalizeEvents: %v", err)
	}
	if len(got) != 2 || got[1].Attendees[0].Name != "X" {
		t.Fatalf("unexpected events %+v", got)
	}
	if got[0].Attendees == nil {
		t.Fatalf("attendees must never be nil")
	}

	empty, err := NormalizeEvents(nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty body must give an empty list, got %v %v", empty, err)
	}
}

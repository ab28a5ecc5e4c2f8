package screens

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/session"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
)

const profileBody = `{
	"id": "pr1",
	"user_id": "u1",
	"display_name": "Ann",
	"age": 29,
	"bio": "Climber",
	"interests": ["music", {"id": 4, "name": "hiking"}],
	"custom_fields": [
		{"title": "Job", "value": "Pilot"},
		{"title": "City", "value": "Kazan"},
		{"title": "Pet", "value": "Cat"}
	],
	"showBio": true,
	"showInterests": true
}`

func authedStore() *session.Store {
	store := session.New()
	store.Set(&domain.AuthSession{InitData: "raw", UserID: "u1", DisplayName: "Ann"})
	return store
}

func TestProfileEditAndSave(t *testing.T) {
	reply := `{"id":"pr1","display_name":"Ann","bio":"Climber","interests":["music","hiking"],` +
		`"custom_fields":[{"title":"City","value":"Kazan"},{"title":"","value":""}],"showBio":false,"showInterests":true}`
	api := &fakeProfile{me: []byte(profileBody), reply: []byte(reply)}
	pub := &capturePublisher{}
	editor := NewProfileEditor(Deps{Profile: api, Session: authedStore(), Activity: pub})

	if err := editor.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded := editor.State().Profile
	if len(loaded.CustomFields) != 3 {
		t.Fatalf("expected 3 custom fields, got %+v", loaded.CustomFields)
	}

	editor.BeginEdit()
	editor.RemoveCustomField(loaded.CustomFields[0].ID)
	editor.RemoveCustomField(loaded.CustomFields[2].ID)
	editor.AddCustomField()
	if err := editor.HideSection(SectionBio); err != nil {
		t.Fatalf("HideSection: %v", err)
	}

	if err := editor.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(api.payloads) != 1 {
		t.Fatalf("expected one PATCH, got %d", len(api.payloads))
	}
	sent := api.payloads[0]
	wantFields := []map[string]string{
		{"title": "City", "value": "Kazan"},
		{"title": "", "value": ""},
	}
	if diff := cmp.Diff(wantFields, sent["custom_fields"]); diff != "" {
		t.Fatalf("custom_fields mismatch (-want +got):\n%s", diff)
	}
	if sent["showBio"] != false || sent["age"] != 29 {
		t.Fatalf("unexpected payload %+v", sent)
	}

	st := editor.State()
	if st.Editing || st.Error != "" {
		t.Fatalf("unexpected state %+v", st)
	}
	wantState := []domain.CustomField{
		{ID: "field-0", Title: "City", Value: "Kazan"},
		{ID: "field-1"},
	}
	if diff := cmp.Diff(wantState, st.Profile.CustomFields); diff != "" {
		t.Fatalf("state must follow the server reply (-want +got):\n%s", diff)
	}
	if st.Profile.ShowBio {
		t.Fatalf("ShowBio should follow the reply")
	}
	if len(pub.events) != 1 || pub.events[0].Kind != activity.KindProfileUpdated || pub.events[0].UserID != "u1" {
		t.Fatalf("unexpected activity %+v", pub.events)
	}
}

func TestProfileCancelRestoresSnapshot(t *testing.T) {
	api := &fakeProfile{me: []byte(profileBody)}
	editor := NewProfileEditor(Deps{Profile: api, Session: authedStore()})
	if err := editor.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := editor.State().Profile

	editor.BeginEdit()
	editor.Edit(func(p *domain.Profile) { p.Bio = "Changed" })
	editor.AddInterest("chess")
	if err := editor.UpdateInterest(0, "jazz"); err != nil {
		t.Fatalf("UpdateInterest: %v", err)
	}
	editor.Cancel()

	st := editor.State()
	if st.Editing {
		t.Fatalf("Cancel must leave edit mode")
	}
	if diff := cmp.Diff(before, st.Profile); diff != "" {
		t.Fatalf("profile not restored (-want +got):\n%s", diff)
	}
	if api.loads != 1 {
		t.Fatalf("Cancel must not refetch, loads=%d", api.loads)
	}
}

func TestProfileLoadWithoutSessionSkipsFetch(t *testing.T) {
	api := &fakeProfile{me: []byte(profileBody)}
	editor := NewProfileEditor(Deps{Profile: api})
	if err := editor.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if api.loads != 0 || editor.State().Loading {
		t.Fatalf("expected no fetch, loads=%d", api.loads)
	}
}

func TestProfileSaveFailureStaysEditing(t *testing.T) {
	api := &fakeProfile{me: []byte(profileBody)}
	editor := NewProfileEditor(Deps{Profile: api, Session: authedStore()})
	if err := editor.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	editor.BeginEdit()
	api.err = errBackend(422, "Bio is too long")

	if err := editor.Save(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	st := editor.State()
	if !st.Editing || st.Error != "Bio is too long" {
		t.Fatalf("unexpected state %+v", st)
	}
	if err := editor.UpdateCustomField("missing", CustomFieldTitle, "x"); err == nil {
		t.Fatalf("unknown custom field must be rejected")
	}
	if err := editor.HideSection("showAge"); err == nil {
		t.Fatalf("unknown section must be rejected")
	}
}

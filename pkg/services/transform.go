package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meetfeed/meetfeed-client/internal/domain"
)

// Backend records arrive in several shapes (snake_case and camelCase, alternate
// names for the same field, strings or objects for interests). Each field is
// resolved by a fixed precedence list, first non-empty wins:
//
//	id            id, _id
//	date          date, starts_at, startsAt  (ISO dates become DD-MM-YYYY)
//	attendees     participants, attendees
//	maxAttendees  capacity, maxAttendees
//	image         image, imageUrl, creator photo
//	creator       creator_profile, creatorProfile
//	name          display_name, name, first_name
//	photo         photo_url, photo
//	customFields  custom_fields, customFields
//
// The normalized records marshal to the camelCase names on the right of each
// list, so normalizing a normalized record again is a no-op.

const displayDateLayout = "02-01-2006"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate renders ISO dates as DD-MM-YYYY. Values already in that form and
// free text the parser does not recognize are returned trimmed but unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := time.Parse(displayDateLayout, s); err == nil {
		return s
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(displayDateLayout)
		}
	}
	return s
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number, numeric string or null.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	str := strings.TrimSpace(string(s))
	if str == "" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(str); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", str)
	}
	*f = flexInt(int(v))
	return nil
}

// rawInterest is either "music" or {"id": 3, "name": "music"}.
type rawInterest struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

func (r *rawInterest) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = rawInterest{Name: s}
		return nil
	}
	type plain rawInterest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = rawInterest(p)
	return nil
}

type rawCustomField struct {
	ID    flexString `json:"id"`
	Title string     `json:"title"`
	Value flexString `json:"value"`
}

// rawTown is either a plain name or {"id": "...", "name": "..."}.
type rawTown string

func (r *rawTown) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = rawTown(s)
		return nil
	}
	var obj struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = rawTown(firstNonEmpty(obj.Name, string(obj.ID)))
	return nil
}

type rawParticipant struct {
	ID                flexString       `json:"id"`
	AltID             flexString       `json:"_id"`
	DisplayName       string           `json:"display_name"`
	Name              string           `json:"name"`
	FirstName         string           `json:"first_name"`
	PhotoURL          string           `json:"photo_url"`
	Photo             string           `json:"photo"`
	Age               flexInt          `json:"age"`
	Bio               string           `json:"bio"`
	Work              string           `json:"work"`
	Education         string           `json:"education"`
	Interests         []rawInterest    `json:"interests"`
	CustomFieldsSnake []rawCustomField `json:"custom_fields"`
	CustomFields      []rawCustomField `json:"customFields"`
}

type rawEvent struct {
	ID            flexString       `json:"id"`
	AltID         flexString       `json:"_id"`
	Title         string           `json:"title"`
	Date          string           `json:"date"`
	StartsAtSnake string           `json:"starts_at"`
	StartsAt      string           `json:"startsAt"`
	Location      string           `json:"location"`
	Description   string           `json:"description"`
	Participants  []rawParticipant `json:"participants"`
	Attendees     []rawParticipant `json:"attendees"`
	Capacity      *flexInt         `json:"capacity"`
	MaxAttendees  *flexInt         `json:"maxAttendees"`
	Image         string           `json:"image"`
	ImageURL      string           `json:"imageUrl"`
	CreatorSnake  *rawParticipant  `json:"creator_profile"`
	Creator       *rawParticipant  `json:"creatorProfile"`
	Town          rawTown          `json:"town"`
}

type rawProfile struct {
	ID                flexString        `json:"id"`
	AltID             flexString        `json:"_id"`
	User              json.RawMessage   `json:"user"`
	UserIDSnake       flexString        `json:"user_id"`
	UserID            flexString        `json:"userId"`
	DisplayName       string            `json:"display_name"`
	Name              string            `json:"name"`
	Age               flexInt           `json:"age"`
	PhotoURL          string            `json:"photo_url"`
	Photo             string            `json:"photo"`
	Bio               string            `json:"bio"`
	Gender            string            `json:"gender"`
	Interests         *[]rawInterest    `json:"interests"`
	CustomFieldsSnake *[]rawCustomField `json:"custom_fields"`
	CustomFields      *[]rawCustomField `json:"customFields"`
	ShowBio           *bool             `json:"showBio"`
	ShowInterests     *bool             `json:"showInterests"`
}

// NormalizeEvent decodes one backend event into the UI record.
func NormalizeEvent(body []byte) (domain.Event, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Event{}, nil
	}
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return raw.normalize(), nil
}

// NormalizeEvents decodes a list response. The list may be bare or wrapped in
// {"results": [...]}.
func NormalizeEvents(body []byte) ([]domain.Event, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []domain.Event{}, nil
	}

	var raws []rawEvent
	if body[0] == '{' {
		var wrapped struct {
			Results []rawEvent `json:"results"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		raws = wrapped.Results
	} else if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	out := make([]domain.Event, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.normalize())
	}
	return out, nil
}

// NormalizeParticipant decodes a standalone participant profile.
func NormalizeParticipant(body []byte) (domain.Participant, error) {
	var raw rawParticipant
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Participant{}, fmt.Errorf("decode participant: %w", err)
	}
	return raw.normalize(), nil
}

func (r rawEvent) normalize() domain.Event {
	creatorRaw := r.CreatorSnake
	if creatorRaw == nil {
		creatorRaw = r.Creator
	}
	var creator *domain.Participant
	if creatorRaw != nil {
		c := creatorRaw.normalize()
		creator = &c
	}

	attendeesRaw := r.Participants
	if attendeesRaw == nil {
		attendeesRaw = r.Attendees
	}
	attendees := make([]domain.Participant, 0, len(attendeesRaw))
	for _, a := range attendeesRaw {
		attendees = append(attendees, a.normalize())
	}

	maxAttendees := 0
	switch {
	case r.Capacity != nil:
		maxAttendees = int(*r.Capacity)
	case r.MaxAttendees != nil:
		maxAttendees = int(*r.MaxAttendees)
	}

	creatorPhoto := ""
	if creator != nil {
		creatorPhoto = creator.Photo
	}

	startsAt := firstNonEmpty(r.StartsAtSnake, r.StartsAt)

	return domain.Event{
		ID:             firstNonEmpty(string(r.ID), string(r.AltID)),
		Title:          r.Title,
		Date:           NormalizeDate(firstNonEmpty(r.Date, startsAt)),
		StartsAt:       startsAt,
		Location:       r.Location,
		Description:    r.Description,
		Attendees:      attendees,
		MaxAttendees:   maxAttendees,
		Image:          firstNonEmpty(r.Image, r.ImageURL, creatorPhoto),
		CreatorProfile: creator,
		Town:           string(r.Town),
	}
}

func (r rawParticipant) normalize() domain.Participant {
	fieldsRaw := r.CustomFieldsSnake
	if fieldsRaw == nil {
		fieldsRaw = r.CustomFields
	}
	p := domain.Participant{
		ID:           firstNonEmpty(string(r.ID), string(r.AltID)),
		Name:         firstNonEmpty(r.DisplayName, r.Name, r.FirstName),
		Photo:        firstNonEmpty(r.PhotoURL, r.Photo),
		Age:          int(r.Age),
		Bio:          r.Bio,
		Work:         r.Work,
		Education:    r.Education,
		Interests:    normalizeInterests(r.Interests),
		CustomFields: normalizeCustomFields(fieldsRaw),
	}
	// omitempty drops empty lists on output; keep nil so a second pass matches
	if len(p.Interests) == 0 {
		p.Interests = nil
	}
	if len(p.CustomFields) == 0 {
		p.CustomFields = nil
	}
	return p
}

// NormalizeProfile decodes a profile response on top of an empty profile.
func NormalizeProfile(body []byte) (domain.Profile, error) {
	return MergeProfile(domain.NewProfile(""), body)
}

// MergeProfile applies a profile response to prev. Text fields the backend
// leaves empty keep their previous value; lists and visibility flags replace
// the previous value whenever the backend sends them.
func MergeProfile(prev domain.Profile, body []byte) (domain.Profile, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return prev.Clone(), nil
	}
	var raw rawProfile
	if err := json.Unmarshal(body, &raw); err != nil {
		return prev, fmt.Errorf("decode profile: %w", err)
	}

	out := prev.Clone()
	out.ID = firstNonEmpty(string(raw.ID), string(raw.AltID), prev.ID)
	out.UserID = firstNonEmpty(string(raw.UserIDSnake), string(raw.UserID), userRef(raw.User), prev.UserID)
	out.Name = firstNonEmpty(raw.DisplayName, raw.Name, prev.Name)
	out.Photo = firstNonEmpty(raw.PhotoURL, raw.Photo, prev.Photo)
	out.Bio = firstNonEmpty(raw.Bio, prev.Bio)
	out.Gender = firstNonEmpty(raw.Gender, prev.Gender)
	if raw.Age > 0 {
		out.Age = int(raw.Age)
	}
	if raw.Interests != nil {
		out.Interests = normalizeInterests(*raw.Interests)
	}
	switch {
	case raw.CustomFieldsSnake != nil:
		out.CustomFields = normalizeCustomFields(*raw.CustomFieldsSnake)
	case raw.CustomFields != nil:
		out.CustomFields = normalizeCustomFields(*raw.CustomFields)
	}
	if raw.ShowBio != nil {
		out.ShowBio = *raw.ShowBio
	}
	if raw.ShowInterests != nil {
		out.ShowInterests = *raw.ShowInterests
	}
	if out.Interests == nil {
		out.Interests = []domain.Interest{}
	}
	if out.CustomFields == nil {
		out.CustomFields = []domain.CustomField{}
	}
	return out, nil
}

func normalizeInterests(in []rawInterest) []domain.Interest {
	out := make([]domain.Interest, 0, len(in))
	for _, it := range in {
		name := strings.TrimSpace(it.Name)
		if name == "" && it.ID == "" {
			continue
		}
		out = append(out, domain.Interest{ID: string(it.ID), Name: it.Name})
	}
	return out
}

// normalizeCustomFields assigns positional ids to fields the backend sent without one.
func normalizeCustomFields(in []rawCustomField) []domain.CustomField {
	out := make([]domain.CustomField, 0, len(in))
	for i, f := range in {
		id := string(f.ID)
		if id == "" {
			id = "field-" + strconv.Itoa(i)
		}
		out = append(out, domain.CustomField{ID: id, Title: f.Title, Value: string(f.Value)})
	}
	return out
}

// userRef pulls an id out of a "user" field that is either a scalar or an object.
func userRef(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s flexString
	if err := json.Unmarshal(raw, &s); err == nil {
		return string(s)
	}
	var obj struct {
		ID flexString `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return string(obj.ID)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

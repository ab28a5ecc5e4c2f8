package mockapi

import (
	"strings"

	"github.com/google/uuid"
)

// Records are serialized in the backend's snake_case shape so the client's
// normalization runs against realistic payloads.

type participantRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	Age         int    `json:"age,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

type eventRecord struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	StartsAt     string              `json:"starts_at"`
	Location     string              `json:"location"`
	Description  string              `json:"description"`
	Capacity     int                 `json:"capacity"`
	Image        string              `json:"image,omitempty"`
	Town         string              `json:"town,omitempty"`
	Participants []participantRecord `json:"participants"`
	Creator      *participantRecord  `json:"creator_profile,omitempty"`
	creatorID    string
}

func (e *eventRecord) snapshot() eventRecord {
	out := *e
	out.Participants = append([]participantRecord{}, e.Participants...)
	if e.Creator != nil {
		c := *e.Creator
		out.Creator = &c
	}
	return out
}

func (e *eventRecord) hasParticipant(id string) bool {
	for _, p := range e.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

type customFieldRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type profileRecord struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	DisplayName   string              `json:"display_name"`
	Age           int                 `json:"age,omitempty"`
	Bio           string              `json:"bio"`
	Gender        string              `json:"gender"`
	PhotoURL      string              `json:"photo_url"`
	Interests     []string            `json:"interests"`
	CustomFields  []customFieldRecord `json:"custom_fields"`
	ShowBio       bool                `json:"showBio"`
	ShowInterests bool                `json:"showInterests"`
}

func (p *profileRecord) snapshot() profileRecord {
	out := *p
	out.Interests = append([]string{}, p.Interests...)
	out.CustomFields = append([]customFieldRecord{}, p.CustomFields...)
	return out
}

func (p *profileRecord) participant() participantRecord {
	return participantRecord{
		ID:          p.UserID,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		Age:         p.Age,
		Bio:         p.Bio,
	}
}

// ensureProfile returns the user's profile, creating it on first login.
func (s *Server) ensureProfile(userID, name, photo string) profileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLocked(userID, name, photo).snapshot()
}

func (s *Server) profileLocked(userID, name, photo string) *profileRecord {
	if p, ok := s.profiles[userID]; ok {
		return p
	}
	p := &profileRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		DisplayName:   name,
		PhotoURL:      photo,
		Interests:     []string{},
		CustomFields:  []customFieldRecord{},
		ShowBio:       true,
		ShowInterests: true,
	}
	s.profiles[userID] = p
	return p
}

func (s *Server) findEventLocked(id string) (int, *eventRecord) {
	for i, e := range s.events {
		if e.ID == id {
			return i, e
		}
	}
	return -1, nil
}

// EventSeed describes a demo event created on behalf of a host user.
type EventSeed struct {
	HostID      string
	HostName    string
	Title       string
	StartsAt    string
	Location    string
	Description string
	Capacity    int
	Image       string
	Town        string
}

// AddEvent stores an event as if its host had created it and returns its id.
func (s *Server) AddEvent(seed EventSeed) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	host := s.profileLocked(seed.HostID, seed.HostName, "")
	creator := host.participant()
	evt := &eventRecord{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(seed.Title),
		StartsAt:     seed.StartsAt,
		Location:     seed.Location,
		Description:  seed.Description,
		Capacity:     seed.Capacity,
		Image:        seed.Image,
		Town:         seed.Town,
		Participants: []participantRecord{},
		Creator:      &creator,
		creatorID:    seed.HostID,
	}
	s.events = append(s.events, evt)
	return evt.ID
}

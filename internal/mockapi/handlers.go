package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var startsAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func validStartsAt(s string) bool {
	for _, layout := range startsAtLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

type createEventRequest struct {
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	StartsAt    string  `json:"starts_at"`
	Capacity    int     `json:"capacity"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Town        string  `json:"town"`
}

type updateEventRequest struct {
	Title       *string `json:"title"`
	Location    *string `json:"location"`
	StartsAt    *string `json:"starts_at"`
	Capacity    *int    `json:"capacity"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func (s *Server) listMyEvents(c *gin.Context) {
	userID := currentUser(c)
	s.mu.Lock()
	out := make([]eventRecord, 0)
	for _, e := range s.events {
		if e.creatorID == userID {
			out = append(out, e.snapshot())
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) getEvent(c *gin.Context) {
	s.mu.Lock()
	_, evt := s.findEventLocked(c.Param("id"))
	var out eventRecord
	if evt != nil {
		out = evt.snapshot()
	}
	s.mu.Unlock()
	if evt == nil {
		jsonMessage(c, http.StatusNotFound, "Event not found")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	switch {
	case strings.TrimSpace(req.Title) == "":
		jsonMessage(c, http.StatusBadRequest, "title is required")
		return
	case !validStartsAt(req.StartsAt):
		jsonMessage(c, http.StatusBadRequest, "starts_at must be an ISO date-time")
		return
	case req.Capacity < 1:
		jsonMessage(c, http.StatusBadRequest, "capacity must be at least 1")
		return
	}

	userID := currentUser(c)
	s.mu.Lock()
	host := s.profileLocked(userID, "", "")
	creator := host.participant()
	evt := &eventRecord{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		StartsAt:     req.StartsAt,
		Location:     req.Location,
		Capacity:     req.Capacity,
		Town:         req.Town,
		Participants: []participantRecord{},
		Creator:      &creator,
		creatorID:    userID,
	}
	if req.Description != nil {
		evt.Description = *req.Description
	}
	if req.Image != nil {
		evt.Image = *req.Image
	}
	s.events = append(s.events, evt)
	out := evt.snapshot()
	s.mu.Unlock()

	c.JSON(http.StatusCreated, out)
}

// ownedEventLocked resolves :id to an event owned by the caller or writes the error.
// The caller must hold s.mu.
func (s *Server) ownedEventLocked(c *gin.Context) (int, *eventRecord, bool) {
	i, evt := s.findEventLocked(c.Param("id"))
	if evt == nil {
		jsonMessage(c, http.StatusNotFound, "Event not found")
		return -1, nil, false
	}
	if evt.creatorID != currentUser(c) {
		jsonMessage(c, http.StatusForbidden, "You can only manage your own events")
		return -1, nil, false
	}
	return i, evt, true
}

func (s *Server) updateEvent(c *gin.Context) {
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.StartsAt != nil && !validStartsAt(*req.StartsAt) {
		jsonMessage(c, http.StatusBadRequest, "starts_at must be an ISO date-time")
		return
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		jsonMessage(c, http.StatusBadRequest, "capacity must be at least 1")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, evt, ok := s.ownedEventLocked(c)
	if !ok {
		return
	}
	if req.Title != nil {
		evt.Title = strings.TrimSpace(*req.Title)
	}
	if req.Location != nil {
		evt.Location = *req.Location
	}
	if req.StartsAt != nil {
		evt.StartsAt = *req.StartsAt
	}
	if req.Capacity != nil {
		evt.Capacity = *req.Capacity
	}
	if req.Description != nil {
		evt.Description = *req.Description
	}
	if req.Image != nil {
		evt.Image = *req.Image
	}
	c.JSON(http.StatusOK, evt.snapshot())
}

func (s *Server) deleteEvent(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, _, ok := s.ownedEventLocked(c)
	if !ok {
		return
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) removeParticipant(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, evt, ok := s.ownedEventLocked(c)
	if !ok {
		return
	}
	pid := c.Param("pid")
	if !evt.hasParticipant(pid) {
		jsonMessage(c, http.StatusNotFound, "Participant not found")
		return
	}
	kept := evt.Participants[:0]
	for _, p := range evt.Participants {
		if p.ID != pid {
			kept = append(kept, p)
		}
	}
	evt.Participants = kept
	c.Status(http.StatusNoContent)
}

func (s *Server) nextFeedEvent(c *gin.Context) {
	town := strings.TrimSpace(c.Query("town_id"))
	if town == "" {
		jsonMessage(c, http.StatusBadRequest, "town_id is required")
		return
	}
	fromDay := strings.TrimSpace(c.Query("from_day"))
	toDay := strings.TrimSpace(c.Query("to_day"))
	userID := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := s.swipes[userID]
	for _, e := range s.events {
		if e.Town != town || e.creatorID == userID {
			continue
		}
		if _, done := seen[e.ID]; done {
			continue
		}
		day := e.StartsAt
		if len(day) >= 10 {
			day = day[:10]
		}
		if (fromDay != "" && day < fromDay) || (toDay != "" && day > toDay) {
			continue
		}
		c.JSON(http.StatusOK, e.snapshot())
		return
	}
	jsonMessage(c, http.StatusNotFound, "No more events")
}

type actionRequest struct {
	EventID string `json:"event_id"`
	Action  string `json:"action"`
}

func (s *Server) recordAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Action != "skip" && req.Action != "like" {
		jsonError(c, http.StatusBadRequest, `Invalid action. Must be "skip" or "like"`)
		return
	}
	userID := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, evt := s.findEventLocked(req.EventID)
	if evt == nil {
		jsonMessage(c, http.StatusNotFound, "Event not found")
		return
	}
	if s.swipes[userID] == nil {
		s.swipes[userID] = map[string]string{}
	}
	s.swipes[userID][evt.ID] = req.Action

	joined := false
	if req.Action == "like" && !evt.hasParticipant(userID) && len(evt.Participants) < evt.Capacity {
		evt.Participants = append(evt.Participants, s.profileLocked(userID, "", "").participant())
		joined = true
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"event_id": evt.ID,
		"action":   req.Action,
		"joined":   joined,
	})
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	out := s.profileLocked(currentUser(c), "", "").snapshot()
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

type profilePatch struct {
	DisplayName   *string              `json:"display_name"`
	Age           *int                 `json:"age"`
	Bio           *string              `json:"bio"`
	Gender        *string              `json:"gender"`
	PhotoURL      *string              `json:"photo_url"`
	Interests     *[]string            `json:"interests"`
	CustomFields  *[]customFieldRecord `json:"custom_fields"`
	ShowBio       *bool                `json:"showBio"`
	ShowInterests *bool                `json:"showInterests"`
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profilePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 150) {
		jsonMessage(c, http.StatusBadRequest, "age is out of range")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profileLocked(currentUser(c), "", "")
	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.PhotoURL != nil {
		p.PhotoURL = *req.PhotoURL
	}
	if req.Interests != nil {
		p.Interests = append([]string{}, (*req.Interests)...)
	}
	if req.CustomFields != nil {
		fields := make([]customFieldRecord, 0, len(*req.CustomFields))
		for _, f := range *req.CustomFields {
			if f.ID == "" {
				f.ID = uuid.NewString()
			}
			fields = append(fields, f)
		}
		p.CustomFields = fields
	}
	if req.ShowBio != nil {
		p.ShowBio = *req.ShowBio
	}
	if req.ShowInterests != nil {
		p.ShowInterests = *req.ShowInterests
	}
	c.JSON(http.StatusOK, p.snapshot())
}

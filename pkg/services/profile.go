package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/httpclient"
)

const pathMyProfile = "/profiles/me"

// ProfileService reads and writes the caller's own profile.
type ProfileService struct {
	client httpclient.Doer
	ex     executor
}

// NewProfileService builds the profile façade over the private client.
func NewProfileService(private httpclient.Doer, log Logger) *ProfileService {
	return &ProfileService{client: private, ex: executor{service: "profileService", log: ensureLogger(log)}}
}

// Me fetches the raw profile body. Callers merge it with MergeProfile so fields
// the backend leaves empty keep their local value.
func (s *ProfileService) Me(ctx context.Context) ([]byte, error) {
	return execute(ctx, s.ex, "getMyProfile", func(ctx context.Context) ([]byte, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodGet, Path: pathMyProfile})
		if err != nil {
			return nil, err
		}
		return resp.Body(), nil
	})
}

// MyProfile fetches and normalizes the profile.
func (s *ProfileService) MyProfile(ctx context.Context) (domain.Profile, error) {
	body, err := s.Me(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	return NormalizeProfile(body)
}

// Update patches the profile and returns the raw canonical body the backend sent back.
func (s *ProfileService) Update(ctx context.Context, p Payload) ([]byte, error) {
	payload := Clean(p)
	return execute(ctx, s.ex, "updateProfile", func(ctx context.Context) ([]byte, error) {
		s.ex.log.DebugObj("saving profile", "profile_payload", payload)
		resp, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodPatch, Path: pathMyProfile, Body: payload})
		if err != nil {
			return nil, err
		}
		return resp.Body(), nil
	})
}

// ProfilePayload renders a profile in the backend's PATCH shape. Age is only
// sent when set; local custom-field ids stay local.
func ProfilePayload(p domain.Profile) Payload {
	interests := make([]string, 0, len(p.Interests))
	for _, it := range p.Interests {
		if name := strings.TrimSpace(it.Name); name != "" {
			interests = append(interests, name)
		}
	}
	fields := make([]map[string]string, 0, len(p.CustomFields))
	for _, f := range p.CustomFields {
		fields = append(fields, map[string]string{"title": f.Title, "value": f.Value})
	}

	var age any = Undefined
	if p.Age > 0 {
		age = p.Age
	}

	return Payload{
		"display_name":  p.Name,
		"age":           age,
		"bio":           p.Bio,
		"gender":        p.Gender,
		"photo_url":     p.Photo,
		"interests":     interests,
		"custom_fields": fields,
		"showBio":       p.ShowBio,
		"showInterests": p.ShowInterests,
	}
}

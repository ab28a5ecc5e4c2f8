package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
	"github.com/meetfeed/meetfeed-client/pkg/services"
)

// Section is a hideable block of the profile.
type Section string

const (
	SectionBio       Section = "showBio"
	SectionInterests Section = "showInterests"
)

// CustomFieldKey selects which half of a custom field to update.
type CustomFieldKey string

const (
	CustomFieldTitle CustomFieldKey = "title"
	CustomFieldValue CustomFieldKey = "value"
)

// ProfileState is a snapshot of the profile editor.
type ProfileState struct {
	Profile domain.Profile
	Editing bool
	Loading bool
	Error   string
}

// ProfileEditor loads, edits and saves the caller's profile. Edits are local
// until Save; Cancel restores the snapshot taken by BeginEdit.
type ProfileEditor struct {
	base
	api    ProfileAPI
	effect Effect[[]byte]

	mu       sync.Mutex
	st       ProfileState
	original *domain.Profile
}

// NewProfileEditor starts from an empty profile named after the session user.
func NewProfileEditor(d Deps) *ProfileEditor {
	p := &ProfileEditor{base: newBase("profile", d), api: d.Profile}
	name := ""
	if s := p.session.Get(); s != nil {
		name = s.DisplayName
	}
	p.st = ProfileState{Profile: domain.NewProfile(name), Loading: true}
	return p
}

// Load fetches the profile and merges it over the local state. Without a
// session nothing is fetched.
func (p *ProfileEditor) Load(ctx context.Context) error {
	if !p.session.Authenticated() {
		p.update(func(st *ProfileState) { st.Loading = false })
		return nil
	}
	p.update(func(st *ProfileState) {
		st.Loading = true
		st.Error = ""
	})
	return p.effect.Run(ctx, p.api.Me,
		func(body []byte) {
			p.update(func(st *ProfileState) {
				st.Loading = false
				merged, err := services.MergeProfile(st.Profile, body)
				if err != nil {
					st.Error = p.failure("decode profile", err)
					return
				}
				st.Profile = merged
			})
		},
		func(err error) {
			msg := p.failure("load profile", err)
			p.update(func(st *ProfileState) {
				st.Loading = false
				st.Error = msg
			})
		},
	)
}

// BeginEdit snapshots the profile and enters edit mode.
func (p *ProfileEditor) BeginEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := p.st.Profile.Clone()
	p.original = &snap
	p.st.Editing = true
}

// Cancel reverts to the snapshot and leaves edit mode without fetching.
func (p *ProfileEditor) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.original != nil {
		p.st.Profile = *p.original
		p.original = nil
	}
	p.st.Editing = false
}

// Edit applies fn to the working copy (name, age, bio, gender, photo).
func (p *ProfileEditor) Edit(fn func(*domain.Profile)) {
	p.update(func(st *ProfileState) { fn(&st.Profile) })
}

// AddCustomField appends an empty field and returns its local id.
func (p *ProfileEditor) AddCustomField() string {
	id := uuid.NewString()
	p.update(func(st *ProfileState) {
		st.Profile.CustomFields = append(st.Profile.CustomFields, domain.CustomField{ID: id})
	})
	return id
}

// RemoveCustomField drops the field with the given id.
func (p *ProfileEditor) RemoveCustomField(id string) {
	p.update(func(st *ProfileState) {
		out := make([]domain.CustomField, 0, len(st.Profile.CustomFields))
		for _, f := range st.Profile.CustomFields {
			if f.ID != id {
				out = append(out, f)
			}
		}
		st.Profile.CustomFields = out
	})
}

// UpdateCustomField sets the title or value of one field.
func (p *ProfileEditor) UpdateCustomField(id string, key CustomFieldKey, value string) error {
	var err error
	p.update(func(st *ProfileState) {
		for i := range st.Profile.CustomFields {
			f := &st.Profile.CustomFields[i]
			if f.ID != id {
				continue
			}
			switch key {
			case CustomFieldTitle:
				f.Title = value
			case CustomFieldValue:
				f.Value = value
			default:
				err = fmt.Errorf("unknown custom field key %q", key)
			}
			return
		}
		err = fmt.Errorf("custom field %q not found", id)
	})
	return err
}

// AddInterest appends an interest; blank names are kept locally and dropped on save.
func (p *ProfileEditor) AddInterest(name string) {
	p.update(func(st *ProfileState) {
		st.Profile.Interests = append(st.Profile.Interests, domain.Interest{Name: name})
	})
}

// UpdateInterest renames the interest at index i.
func (p *ProfileEditor) UpdateInterest(i int, name string) error {
	var err error
	p.update(func(st *ProfileState) {
		if i < 0 || i >= len(st.Profile.Interests) {
			err = fmt.Errorf("interest index %d out of range", i)
			return
		}
		st.Profile.Interests[i].Name = name
	})
	return err
}

// RemoveInterest drops every interest with the given name.
func (p *ProfileEditor) RemoveInterest(name string) {
	p.update(func(st *ProfileState) {
		out := make([]domain.Interest, 0, len(st.Profile.Interests))
		for _, it := range st.Profile.Interests {
			if it.Name != name {
				out = append(out, it)
			}
		}
		st.Profile.Interests = out
	})
}

// HideSection hides the bio or interests block.
func (p *ProfileEditor) HideSection(s Section) error { return p.setSection(s, false) }

// RestoreSection shows the bio or interests block again.
func (p *ProfileEditor) RestoreSection(s Section) error { return p.setSection(s, true) }

func (p *ProfileEditor) setSection(s Section, visible bool) error {
	switch s {
	case SectionBio:
		p.update(func(st *ProfileState) { st.Profile.ShowBio = visible })
	case SectionInterests:
		p.update(func(st *ProfileState) { st.Profile.ShowInterests = visible })
	default:
		return fmt.Errorf("unknown section %q", s)
	}
	return nil
}

// Save sends the working copy and replaces local state with the backend's
// canonical shape. On failure the editor stays in edit mode with the error set.
func (p *ProfileEditor) Save(ctx context.Context) error {
	p.mu.Lock()
	current := p.st.Profile.Clone()
	p.st.Error = ""
	p.mu.Unlock()

	body, err := p.api.Update(ctx, services.ProfilePayload(current))
	if err != nil {
		if !apierror.IsCanceled(err) {
			msg := p.failure("save profile", err)
			p.update(func(st *ProfileState) { st.Error = msg })
		}
		return err
	}

	merged, err := services.MergeProfile(current, body)
	if err != nil {
		msg := p.failure("decode profile", err)
		p.update(func(st *ProfileState) { st.Error = msg })
		return err
	}

	p.mu.Lock()
	p.st.Profile = merged
	p.st.Editing = false
	p.original = nil
	p.mu.Unlock()

	p.publish(ctx, activity.NewEvent(activity.KindProfileUpdated, "", ""))
	return nil
}

// DismissError clears the error banner.
func (p *ProfileEditor) DismissError() {
	p.update(func(st *ProfileState) { st.Error = "" })
}

// Unmount cancels an in-flight load.
func (p *ProfileEditor) Unmount() { p.effect.Stop() }

// State returns a snapshot.
func (p *ProfileEditor) State() ProfileState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.st
	st.Profile = p.st.Profile.Clone()
	return st
}

func (p *ProfileEditor) update(fn func(*ProfileState)) {
	p.mu.Lock()
	fn(&p.st)
	p.mu.Unlock()
}

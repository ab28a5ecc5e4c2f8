package domain

// Domain contains the UI-facing records shared by services and screens.
// The backend owns persistence; these are plain in-memory values.

// AuthSession is the result of a successful Telegram login.
type AuthSession struct {
	InitData    string         `json:"initData"`
	AccessToken string         `json:"accessToken,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	DisplayName string         `json:"displayName,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// Token returns the bearer credential for private calls: the backend-issued
// access token when present, otherwise the raw init data.
func (s *AuthSession) Token() string {
	if s == nil {
		return ""
	}
	if s.AccessToken != "" {
		return s.AccessToken
	}
	return s.InitData
}

// Event is a normalized event record.
type Event struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Date           string        `json:"date"`
	StartsAt       string        `json:"startsAt,omitempty"`
	Location       string        `json:"location"`
	Description    string        `json:"description"`
	Attendees      []Participant `json:"attendees"`
	MaxAttendees   int           `json:"maxAttendees"`
	Image          string        `json:"image"`
	CreatorProfile *Participant  `json:"creatorProfile,omitempty"`
	Town           string        `json:"town,omitempty"`
}

// Participant is an attendee nested in an event, or a standalone public profile.
type Participant struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Photo        string        `json:"photo"`
	Age          int           `json:"age,omitempty"`
	Bio          string        `json:"bio,omitempty"`
	Work         string        `json:"work,omitempty"`
	Education    string        `json:"education,omitempty"`
	Interests    []Interest    `json:"interests,omitempty"`
	CustomFields []CustomField `json:"customFields,omitempty"`
}

// Interest is a profile tag. Older backends send bare strings, newer ones objects.
type Interest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// CustomField is a free-form title/value pair on a profile.
type CustomField struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Profile is the authenticated user's own profile.
type Profile struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId,omitempty"`
	Name          string        `json:"name"`
	Age           int           `json:"age,omitempty"`
	Photo         string        `json:"photo"`
	Bio           string        `json:"bio"`
	Gender        string        `json:"gender"`
	Interests     []Interest    `json:"interests"`
	CustomFields  []CustomField `json:"customFields"`
	ShowBio       bool          `json:"showBio"`
	ShowInterests bool          `json:"showInterests"`
}

// Clone returns a deep copy suitable for an edit snapshot.
func (p Profile) Clone() Profile {
	out := p
	if p.Interests != nil {
		out.Interests = append([]Interest(nil), p.Interests...)
	}
	if p.CustomFields != nil {
		out.CustomFields = append([]CustomField(nil), p.CustomFields...)
	}
	return out
}

// NewProfile returns the empty profile a screen starts from before the first fetch.
func NewProfile(name string) Profile {
	return Profile{
		Name:          name,
		ShowBio:       true,
		ShowInterests: true,
		Interests:     []Interest{},
		CustomFields:  []CustomField{},
	}
}

// FeedAction is a swipe decision on a feed candidate.
type FeedAction string

const (
	ActionSkip FeedAction = "skip"
	ActionLike FeedAction = "like"
)

// Valid reports whether the action is one the backend accepts.
func (a FeedAction) Valid() bool {
	return a == ActionSkip || a == ActionLike
}

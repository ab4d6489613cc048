package healthgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/runkeeper/internal/omh"
)

// ProfilePath is the Health Graph path for the user profile resource.
const ProfilePath = "profile"

// profileFields lists the data-block field names in definition order.
var profileFields = []string{
	"birthday",
	"location",
	"name",
	"elite",
	"gender",
	"athlete_type",
	"profile",
}

// Profile reads the user's Health Graph profile. The resource is a single
// JSON object of string-valued fields; every user has exactly one.
type Profile struct {
	client  *Client
	fetched bool

	birthday    time.Time
	location    string
	displayName string
	elite       string
	gender      string
	athleteType string
	profileURL  string
	userID      string
}

var _ omh.Endpoint = (*Profile)(nil)

// NewProfile constructs the profile endpoint.
func NewProfile(client *Client) *Profile {
	return &Profile{client: client}
}

func (p *Profile) Path() string { return ProfilePath }

func (p *Profile) HasID() bool        { return true }
func (p *Profile) HasTimestamp() bool { return false }
func (p *Profile) HasLocation() bool  { return false }

// profileResponse mirrors the vendor's wire shape. Every value is a string,
// booleans included. Unknown fields are ignored for forward compatibility.
type profileResponse struct {
	Birthday    string `json:"birthday"`
	Location    string `json:"location"`
	Name        string `json:"name"`
	Elite       string `json:"elite"`
	Gender      string `json:"gender"`
	AthleteType string `json:"athlete_type"`
	Profile     string `json:"profile"`
}

// Fetch performs the single profile GET. Window and pagination do not apply
// to the profile resource and are ignored. A second call is a no-op.
func (p *Profile) Fetch(ctx context.Context, bearer string, _ omh.Window, _ omh.Pagination) error {
	if p.fetched {
		return nil
	}

	body, err := p.client.Get(ctx, ProfilePath, nil, bearer)
	if err != nil {
		return err
	}

	var resp profileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: decoding profile response: %v", ErrProtocol, err)
	}

	if resp.Birthday != "" {
		birthday, err := parseWireTime(resp.Birthday)
		if err != nil {
			return fmt.Errorf("%w: parsing birthday %q: %v", ErrProtocol, resp.Birthday, err)
		}
		p.birthday = birthday
	}
	p.location = resp.Location
	p.displayName = resp.Name
	p.elite = resp.Elite
	p.gender = resp.Gender
	p.athleteType = resp.AthleteType
	p.profileURL = resp.Profile
	if resp.Profile != "" {
		p.userID = lastURISegment(resp.Profile)
	}

	p.fetched = true
	return nil
}

// PointCount is always 1: a user has exactly one profile.
func (p *Profile) PointCount() int { return 1 }

// Points renders the single profile point with the selected columns.
func (p *Profile) Points(columns *omh.Columns) []omh.Point {
	all := columns.Leaf()
	data := make(map[string]any, len(profileFields))
	for _, name := range profileFields {
		if all || columns.Has(name) {
			data[name] = p.fieldValue(name)
		}
	}

	return []omh.Point{{
		Metadata: omh.Metadata{ID: p.userID},
		Data:     data,
	}}
}

func (p *Profile) fieldValue(name string) any {
	switch name {
	case "birthday":
		return formatWireTime(p.birthday)
	case "location":
		return p.location
	case "name":
		return p.displayName
	case "elite":
		return p.elite
	case "gender":
		return p.gender
	case "athlete_type":
		return p.athleteType
	case "profile":
		return p.profileURL
	}
	return nil
}

// Definition declares all seven fields as strings, matching the quoted
// values the vendor actually sends.
func (p *Profile) Definition() omh.Definition {
	fields := make([]omh.Field, 0, len(profileFields))
	for _, name := range profileFields {
		fields = append(fields, omh.Field{Name: name, Type: omh.FieldString})
	}
	return omh.ObjectDefinition(fields...)
}

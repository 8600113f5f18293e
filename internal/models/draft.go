package models

import "slices"

// ProfileDraft is the in-progress, unpersisted profile built up across wizard steps.
// Exactly one of Provider or Client is set, chosen once from the owner's role.
type ProfileDraft struct {
	Role           Role   `json:"role"`
	Phone          string `json:"phone"`
	City           string `json:"city"`
	Area           string `json:"area"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`

	Provider *ProviderDraft `json:"provider,omitempty"`
	Client   *ClientDraft   `json:"client,omitempty"`

	ProfileCompleted bool `json:"profileCompleted"`
}

// ProviderDraft holds the fields only providers fill in
type ProviderDraft struct {
	ProviderType ProviderType `json:"providerType"`
	Services     []string     `json:"services"`
	Skills       []string     `json:"skills"`
	Experience   *int         `json:"experience"`
	HourlyRate   int          `json:"hourlyRate"`
	Availability []string     `json:"availability"`
	Documents    Documents    `json:"documents"`
}

// ClientDraft holds the fields only clients fill in
type ClientDraft struct {
	Preferences Preferences `json:"preferences"`
	Address     string      `json:"address"`
	Landmark    string      `json:"landmark"`
	Pincode     string      `json:"pincode"`
}

// NewProfileDraft returns an empty draft for role. Any role other than provider gets the client variant.
func NewProfileDraft(role Role) *ProfileDraft {
	d := &ProfileDraft{Role: role}
	if role == RoleProvider {
		d.Provider = &ProviderDraft{}
	} else {
		d.Client = &ClientDraft{}
	}
	return d
}

// SeedProfileDraft pre-fills a draft from an existing profile for edit mode.
// Fields of the other role variant are ignored even if the profile carries them.
func SeedProfileDraft(role Role, u *User) *ProfileDraft {
	d := NewProfileDraft(role)
	if u == nil {
		return d
	}

	d.Phone = u.Phone
	d.City = u.City
	d.Area = u.Area
	d.Bio = u.Bio
	d.ProfilePicture = u.ProfilePicture

	if d.Provider != nil {
		d.Provider.ProviderType = u.ProviderType
		d.Provider.Services = slices.Clone(u.Services)
		d.Provider.Skills = slices.Clone(u.Skills)
		if u.Experience > 0 || u.ProfileCompleted {
			exp := u.Experience
			d.Provider.Experience = &exp
		}
		d.Provider.HourlyRate = u.HourlyRate
		d.Provider.Availability = slices.Clone(u.Availability)
		d.Provider.Documents = cloneDocuments(u.Documents)
	} else {
		d.Client.Preferences = clonePreferences(u.Preferences)
		d.Client.Address = u.Address
		d.Client.Landmark = u.Landmark
		d.Client.Pincode = u.Pincode
	}

	return d
}

// Clone returns a deep copy of the draft
func (d *ProfileDraft) Clone() *ProfileDraft {
	if d == nil {
		return nil
	}
	c := *d
	if d.Provider != nil {
		p := *d.Provider
		p.Services = slices.Clone(d.Provider.Services)
		p.Skills = slices.Clone(d.Provider.Skills)
		p.Availability = slices.Clone(d.Provider.Availability)
		p.Documents = cloneDocuments(d.Provider.Documents)
		if d.Provider.Experience != nil {
			exp := *d.Provider.Experience
			p.Experience = &exp
		}
		c.Provider = &p
	}
	if d.Client != nil {
		cl := *d.Client
		cl.Preferences = clonePreferences(d.Client.Preferences)
		c.Client = &cl
	}
	return &c
}

// ToUpdateRequest converts the draft into the full update sent to the profile backend.
// Only the fields of the draft's own variant are set.
func (d *ProfileDraft) ToUpdateRequest() *UpdateProfileRequest {
	req := &UpdateProfileRequest{
		Phone:            ptr(d.Phone),
		City:             ptr(d.City),
		Area:             ptr(d.Area),
		Bio:              ptr(d.Bio),
		ProfilePicture:   ptr(d.ProfilePicture),
		ProfileCompleted: ptr(d.ProfileCompleted),
	}

	if p := d.Provider; p != nil {
		req.ProviderType = ptr(p.ProviderType)
		req.Services = nonNil(p.Services)
		req.Skills = nonNil(p.Skills)
		if p.Experience != nil {
			req.Experience = ptr(*p.Experience)
		}
		req.HourlyRate = ptr(p.HourlyRate)
		req.Availability = nonNil(p.Availability)
		docs := cloneDocuments(p.Documents)
		req.Documents = &docs
	}

	if c := d.Client; c != nil {
		prefs := clonePreferences(c.Preferences)
		req.Preferences = &prefs
		req.Address = ptr(c.Address)
		req.Landmark = ptr(c.Landmark)
		if c.Pincode != "" {
			req.Pincode = ptr(c.Pincode)
		}
	}

	return req
}

func cloneDocuments(d Documents) Documents {
	d.Certifications = slices.Clone(d.Certifications)
	return d
}

func clonePreferences(p Preferences) Preferences {
	p.Categories = slices.Clone(p.Categories)
	return p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func ptr[T any](v T) *T {
	return &v
}

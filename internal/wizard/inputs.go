package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
)

// StepInput is the partial update a step hands to the controller.
// Each implementation owns a disjoint slice of the draft.
type StepInput interface {
	// Step is the step this input belongs to
	Step() Step
	// Validate checks the input for a user with the given role
	Validate(role models.Role) error
	mergeInto(d *models.ProfileDraft)
	normalize()
}

// BasicInfoInput is the first step for every role
type BasicInfoInput struct {
	Phone          string              `json:"phone" validate:"required,phone"`
	City           string              `json:"city" validate:"required,max=100"`
	Area           string              `json:"area" validate:"required,max=100"`
	Bio            string              `json:"bio" validate:"max=500"`
	ProfilePicture string              `json:"profilePicture" validate:"omitempty,url,max=1000"`
	ProviderType   models.ProviderType `json:"providerType,omitempty" validate:"omitempty,oneof=Technical Non-Technical"`
}

var basicInfoMessages = map[string]string{
	"phone.required":     "Please fill in all required fields",
	"phone.phone":        "Please enter a valid 10-digit phone number",
	"city.required":      "Please fill in all required fields",
	"area.required":      "Please fill in all required fields",
	"bio.max":            "Bio must not exceed 500 characters",
	"profilePicture.url": "Profile picture must be a valid URL",
	"providerType.oneof": "Please select your work type (Technical or Non-Technical)",
}

func (in *BasicInfoInput) Step() Step { return StepBasicInfo }

// Validate requires a provider type only from providers, the one role-dependent rule of the step
func (in *BasicInfoInput) Validate(role models.Role) error {
	var extra []FieldError
	if role == models.RoleProvider && in.ProviderType == "" {
		extra = append(extra, FieldError{
			Field:   "providerType",
			Message: "Please select your work type (Technical or Non-Technical)",
		})
	}
	return validateStruct(StepBasicInfo, in, basicInfoMessages, extra...)
}

func (in *BasicInfoInput) normalize() {
	in.Phone = strings.TrimSpace(in.Phone)
	in.City = strings.TrimSpace(in.City)
	in.Area = strings.TrimSpace(in.Area)
	in.Bio = strings.TrimSpace(in.Bio)
	in.ProfilePicture = strings.TrimSpace(in.ProfilePicture)
}

func (in *BasicInfoInput) mergeInto(d *models.ProfileDraft) {
	d.Phone = in.Phone
	d.City = in.City
	d.Area = in.Area
	d.Bio = in.Bio
	d.ProfilePicture = in.ProfilePicture
	if d.Provider != nil {
		d.Provider.ProviderType = in.ProviderType
	}
}

// ServicesInput is the provider's list of offered services
type ServicesInput struct {
	Services []string `json:"services" validate:"min=1,dive,max=100"`
}

var servicesMessages = map[string]string{
	"services.min":        "Please select at least one service",
	"services.max":        "You can select maximum 5 services",
	"services.unique":     "Service already added",
	"services[].required": "Service name cannot be empty",
	"services[].max":      "Service name must not exceed 100 characters",
}

func (in *ServicesInput) Step() Step { return StepServices }

func (in *ServicesInput) Validate(_ models.Role) error {
	return validateStruct(StepServices, in, servicesMessages,
		checkBounded("services", in.Services, MaxServices, servicesMessages)...)
}

func (in *ServicesInput) normalize() { in.Services = cleanList(in.Services) }

func (in *ServicesInput) mergeInto(d *models.ProfileDraft) {
	if d.Provider != nil {
		d.Provider.Services = slices.Clone(in.Services)
	}
}

// SkillsInput covers skills, experience, rate and availability
type SkillsInput struct {
	Skills       []string `json:"skills" validate:"min=1,dive,max=50"`
	Experience   *int     `json:"experience" validate:"required,min=0,max=60"`
	HourlyRate   int      `json:"hourlyRate" validate:"required,min=50,max=10000"`
	Availability []string `json:"availability" validate:"min=1,max=5,unique,dive,availability"`
}

var skillsMessages = map[string]string{
	"skills.min":                  "Please add at least one skill",
	"skills.max":                  "Maximum 10 skills allowed",
	"skills.unique":               "Skill already added",
	"skills[].required":           "Skill cannot be empty",
	"experience.required":         "Please enter your years of experience",
	"experience.min":              "Experience must be between 0 and 60 years",
	"experience.max":              "Experience must be between 0 and 60 years",
	"hourlyRate.required":         "Please enter your hourly rate",
	"hourlyRate.min":              "Hourly rate should be between ₹50 and ₹10,000",
	"hourlyRate.max":              "Hourly rate should be between ₹50 and ₹10,000",
	"availability.min":            "Please select your availability",
	"availability.unique":         "Availability option selected twice",
	"availability[].availability": "Unknown availability option",
}

func (in *SkillsInput) Step() Step { return StepSkills }

func (in *SkillsInput) Validate(_ models.Role) error {
	return validateStruct(StepSkills, in, skillsMessages,
		checkBounded("skills", in.Skills, MaxSkills, skillsMessages)...)
}

func (in *SkillsInput) normalize() {
	in.Skills = cleanList(in.Skills)
	in.Availability = cleanList(in.Availability)
}

func (in *SkillsInput) mergeInto(d *models.ProfileDraft) {
	if d.Provider == nil {
		return
	}
	d.Provider.Skills = slices.Clone(in.Skills)
	if in.Experience != nil {
		exp := *in.Experience
		d.Provider.Experience = &exp
	}
	d.Provider.HourlyRate = in.HourlyRate
	d.Provider.Availability = slices.Clone(in.Availability)
}

// DocumentsInput is the provider's optional verification documents
type DocumentsInput struct {
	IDProof        string   `json:"idProof" validate:"omitempty,url,max=1000"`
	AddressProof   string   `json:"addressProof" validate:"omitempty,url,max=1000"`
	Certifications []string `json:"certifications" validate:"max=10,dive,url,max=1000"`
}

var documentsMessages = map[string]string{
	"idProof.url":          "ID proof must be a valid URL",
	"addressProof.url":     "Address proof must be a valid URL",
	"certifications.max":   "Maximum 10 certifications allowed",
	"certifications[].url": "Certification must be a valid URL",
}

func (in *DocumentsInput) Step() Step { return StepDocuments }

func (in *DocumentsInput) Validate(_ models.Role) error {
	return validateStruct(StepDocuments, in, documentsMessages)
}

func (in *DocumentsInput) normalize() {
	in.IDProof = strings.TrimSpace(in.IDProof)
	in.AddressProof = strings.TrimSpace(in.AddressProof)
	in.Certifications = cleanList(in.Certifications)
}

func (in *DocumentsInput) mergeInto(d *models.ProfileDraft) {
	if d.Provider == nil {
		return
	}
	d.Provider.Documents = models.Documents{
		IDProof:        in.IDProof,
		AddressProof:   in.AddressProof,
		Certifications: slices.Clone(in.Certifications),
	}
}

// Empty reports whether no document was supplied
func (in *DocumentsInput) Empty() bool {
	return in.IDProof == "" && in.AddressProof == "" && len(in.Certifications) == 0
}

// PreferencesInput is what a client is looking for
type PreferencesInput struct {
	Categories              []string `json:"categories" validate:"min=1,dive,category"`
	Budget                  string   `json:"budget" validate:"required,budget"`
	CommunicationPreference string   `json:"communicationPreference" validate:"required,communication"`
}

var preferencesMessages = map[string]string{
	"categories.min":                        "Please select at least one service category",
	"categories.max":                        "You can select maximum 5 categories",
	"categories.unique":                     "Category selected twice",
	"categories[].category":                 "Unknown service category",
	"budget.required":                       "Please select your budget range",
	"budget.budget":                         "Unknown budget range",
	"communicationPreference.required":      "Please select your communication preference",
	"communicationPreference.communication": "Unknown communication preference",
}

func (in *PreferencesInput) Step() Step { return StepPreferences }

func (in *PreferencesInput) Validate(_ models.Role) error {
	return validateStruct(StepPreferences, in, preferencesMessages,
		checkBounded("categories", in.Categories, MaxCategories, preferencesMessages)...)
}

func (in *PreferencesInput) normalize() {
	in.Categories = cleanList(in.Categories)
	in.Budget = strings.TrimSpace(in.Budget)
	in.CommunicationPreference = strings.TrimSpace(in.CommunicationPreference)
}

func (in *PreferencesInput) mergeInto(d *models.ProfileDraft) {
	if d.Client == nil {
		return
	}
	d.Client.Preferences = models.Preferences{
		Categories:              slices.Clone(in.Categories),
		Budget:                  in.Budget,
		CommunicationPreference: in.CommunicationPreference,
	}
}

// LocationInput is the client's final step. City and area overwrite the values from BasicInfo.
type LocationInput struct {
	City     string `json:"city" validate:"required,max=100"`
	Area     string `json:"area" validate:"required,max=100"`
	Address  string `json:"address" validate:"max=300"`
	Landmark string `json:"landmark" validate:"max=200"`
	Pincode  string `json:"pincode" validate:"omitempty,pincode"`
}

var locationMessages = map[string]string{
	"city.required":   "Please fill in city and area",
	"area.required":   "Please fill in city and area",
	"pincode.pincode": "Please enter a valid 6-digit pincode",
}

func (in *LocationInput) Step() Step { return StepLocation }

func (in *LocationInput) Validate(_ models.Role) error {
	return validateStruct(StepLocation, in, locationMessages)
}

func (in *LocationInput) normalize() {
	in.City = strings.TrimSpace(in.City)
	in.Area = strings.TrimSpace(in.Area)
	in.Address = strings.TrimSpace(in.Address)
	in.Landmark = strings.TrimSpace(in.Landmark)
	in.Pincode = strings.TrimSpace(in.Pincode)
}

func (in *LocationInput) mergeInto(d *models.ProfileDraft) {
	d.City = in.City
	d.Area = in.Area
	if d.Client == nil {
		return
	}
	d.Client.Address = in.Address
	d.Client.Landmark = in.Landmark
	d.Client.Pincode = in.Pincode
}

// newInput returns an empty input for step
func newInput(step Step) (StepInput, bool) {
	switch step {
	case StepBasicInfo:
		return &BasicInfoInput{}, true
	case StepServices:
		return &ServicesInput{}, true
	case StepSkills:
		return &SkillsInput{}, true
	case StepDocuments:
		return &DocumentsInput{}, true
	case StepPreferences:
		return &PreferencesInput{}, true
	case StepLocation:
		return &LocationInput{}, true
	}
	return nil, false
}

// DecodeInput parses the JSON payload of a step submission. Unknown keys are rejected so
// a step can never smuggle in fields owned by another step.
func DecodeInput(step Step, raw []byte) (StepInput, error) {
	input, ok := newInput(step)
	if !ok {
		return nil, apperrors.InvalidInputError("step", fmt.Sprintf("unknown step %q", step))
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(input); err != nil {
		return nil, apperrors.InvalidInputError("data", err.Error())
	}

	input.normalize()
	return input, nil
}

// SeedFor returns the current draft values for step, used to pre-fill the form in edit mode
func SeedFor(step Step, d *models.ProfileDraft) StepInput {
	switch step {
	case StepBasicInfo:
		in := &BasicInfoInput{Phone: d.Phone, City: d.City, Area: d.Area, Bio: d.Bio, ProfilePicture: d.ProfilePicture}
		if d.Provider != nil {
			in.ProviderType = d.Provider.ProviderType
		}
		return in
	case StepServices:
		if d.Provider != nil {
			return &ServicesInput{Services: slices.Clone(d.Provider.Services)}
		}
	case StepSkills:
		if p := d.Provider; p != nil {
			in := &SkillsInput{
				Skills:       slices.Clone(p.Skills),
				HourlyRate:   p.HourlyRate,
				Availability: slices.Clone(p.Availability),
			}
			if p.Experience != nil {
				exp := *p.Experience
				in.Experience = &exp
			}
			return in
		}
	case StepDocuments:
		if p := d.Provider; p != nil {
			return &DocumentsInput{
				IDProof:        p.Documents.IDProof,
				AddressProof:   p.Documents.AddressProof,
				Certifications: slices.Clone(p.Documents.Certifications),
			}
		}
	case StepPreferences:
		if c := d.Client; c != nil {
			return &PreferencesInput{
				Categories:              slices.Clone(c.Preferences.Categories),
				Budget:                  c.Preferences.Budget,
				CommunicationPreference: c.Preferences.CommunicationPreference,
			}
		}
	case StepLocation:
		in := &LocationInput{City: d.City, Area: d.Area}
		if c := d.Client; c != nil {
			in.Address = c.Address
			in.Landmark = c.Landmark
			in.Pincode = c.Pincode
		}
		return in
	}
	return nil
}

// cleanList trims entries and drops empty ones
func cleanList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

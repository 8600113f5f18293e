package wizard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
)

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *wizard.ValidationError
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestBasicInfoInput_Validate(t *testing.T) {
	tests := []struct {
		name      string
		role      models.Role
		mutate    func(in *wizard.BasicInfoInput)
		wantField string
		wantMsg   string
	}{
		{name: "valid provider", role: models.RoleProvider, mutate: func(*wizard.BasicInfoInput) {}},
		{name: "valid client without provider type", role: models.RoleClient, mutate: func(in *wizard.BasicInfoInput) { in.ProviderType = "" }},
		{name: "phone with formatting", role: models.RoleClient, mutate: func(in *wizard.BasicInfoInput) { in.Phone = "+91 (987) 654-3210" }},
		{
			name: "short phone", role: models.RoleClient,
			mutate:    func(in *wizard.BasicInfoInput) { in.Phone = "98765" },
			wantField: "phone", wantMsg: "Please enter a valid 10-digit phone number",
		},
		{
			name: "phone with letters", role: models.RoleClient,
			mutate:    func(in *wizard.BasicInfoInput) { in.Phone = "98765abcde" },
			wantField: "phone", wantMsg: "Please enter a valid 10-digit phone number",
		},
		{
			name: "missing city", role: models.RoleClient,
			mutate:    func(in *wizard.BasicInfoInput) { in.City = "" },
			wantField: "city", wantMsg: "Please fill in all required fields",
		},
		{
			name: "provider without type", role: models.RoleProvider,
			mutate:    func(in *wizard.BasicInfoInput) { in.ProviderType = "" },
			wantField: "providerType", wantMsg: "Please select your work type (Technical or Non-Technical)",
		},
		{
			name: "bio too long", role: models.RoleClient,
			mutate:    func(in *wizard.BasicInfoInput) { in.Bio = strings.Repeat("a", 501) },
			wantField: "bio", wantMsg: "Bio must not exceed 500 characters",
		},
		{
			name: "bad picture url", role: models.RoleClient,
			mutate:    func(in *wizard.BasicInfoInput) { in.ProfilePicture = "not a url" },
			wantField: "profilePicture", wantMsg: "Profile picture must be a valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validBasicInfo()
			tt.mutate(in)
			err := in.Validate(tt.role)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantMsg, fieldMessages(t, err)[tt.wantField])
		})
	}
}

func TestServicesInput_Validate(t *testing.T) {
	assert.NoError(t, (&wizard.ServicesInput{Services: []string{"Plumbing"}}).Validate(models.RoleProvider))

	msgs := fieldMessages(t, (&wizard.ServicesInput{}).Validate(models.RoleProvider))
	assert.Equal(t, "Please select at least one service", msgs["services"])

	six := []string{"a", "b", "c", "d", "e", "f"}
	msgs = fieldMessages(t, (&wizard.ServicesInput{Services: six}).Validate(models.RoleProvider))
	assert.Equal(t, "You can select maximum 5 services", msgs["services"])

	msgs = fieldMessages(t, (&wizard.ServicesInput{Services: []string{"Plumbing", "Plumbing"}}).Validate(models.RoleProvider))
	assert.Equal(t, "Service already added", msgs["services"])
}

func TestSkillsInput_Validate(t *testing.T) {
	valid := func() *wizard.SkillsInput {
		return &wizard.SkillsInput{
			Skills:       []string{"Pipe Fitting"},
			Experience:   intPtr(0),
			HourlyRate:   50,
			Availability: []string{"Weekends Only"},
		}
	}
	assert.NoError(t, valid().Validate(models.RoleProvider), "zero years of experience is a valid answer")

	tests := []struct {
		name      string
		mutate    func(in *wizard.SkillsInput)
		wantField string
		wantMsg   string
	}{
		{"no skills", func(in *wizard.SkillsInput) { in.Skills = nil }, "skills", "Please add at least one skill"},
		{"too many skills", func(in *wizard.SkillsInput) {
			in.Skills = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}
		}, "skills", "Maximum 10 skills allowed"},
		{"missing experience", func(in *wizard.SkillsInput) { in.Experience = nil }, "experience", "Please enter your years of experience"},
		{"experience too high", func(in *wizard.SkillsInput) { in.Experience = intPtr(61) }, "experience", "Experience must be between 0 and 60 years"},
		{"rate too low", func(in *wizard.SkillsInput) { in.HourlyRate = 49 }, "hourlyRate", "Hourly rate should be between ₹50 and ₹10,000"},
		{"rate too high", func(in *wizard.SkillsInput) { in.HourlyRate = 10001 }, "hourlyRate", "Hourly rate should be between ₹50 and ₹10,000"},
		{"no availability", func(in *wizard.SkillsInput) { in.Availability = nil }, "availability", "Please select your availability"},
		{"unknown availability", func(in *wizard.SkillsInput) { in.Availability = []string{"Sundays"} }, "availability[0]", "Unknown availability option"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(in)
			assert.Equal(t, tt.wantMsg, fieldMessages(t, in.Validate(models.RoleProvider))[tt.wantField])
		})
	}
}

func TestDocumentsInput_Validate(t *testing.T) {
	assert.NoError(t, (&wizard.DocumentsInput{}).Validate(models.RoleProvider), "documents are optional")
	assert.True(t, (&wizard.DocumentsInput{}).Empty())

	err := (&wizard.DocumentsInput{Certifications: []string{"ftp//broken"}}).Validate(models.RoleProvider)
	assert.Equal(t, "Certification must be a valid URL", fieldMessages(t, err)["certifications[0]"])
}

func TestPreferencesInput_Validate(t *testing.T) {
	valid := &wizard.PreferencesInput{
		Categories:              []string{"Plumbing"},
		Budget:                  "₹500 - ₹1,000",
		CommunicationPreference: "In-App Chat",
	}
	assert.NoError(t, valid.Validate(models.RoleClient))

	msgs := fieldMessages(t, (&wizard.PreferencesInput{}).Validate(models.RoleClient))
	assert.Equal(t, "Please select at least one service category", msgs["categories"])
	assert.Equal(t, "Please select your budget range", msgs["budget"])
	assert.Equal(t, "Please select your communication preference", msgs["communicationPreference"])

	tooMany := &wizard.PreferencesInput{
		Categories:              []string{"Plumbing", "Electrical", "Carpentry", "Painting", "Cleaning", "Catering"},
		Budget:                  "Flexible",
		CommunicationPreference: "Email",
	}
	assert.Equal(t, "You can select maximum 5 categories", fieldMessages(t, tooMany.Validate(models.RoleClient))["categories"])
}

func TestLocationInput_Validate(t *testing.T) {
	assert.NoError(t, (&wizard.LocationInput{City: "Mumbai", Area: "Andheri"}).Validate(models.RoleClient), "pincode is optional")
	assert.NoError(t, (&wizard.LocationInput{City: "Mumbai", Area: "Andheri", Pincode: "400053"}).Validate(models.RoleClient))

	for _, pin := range []string{"12345", "1234567", "40005a"} {
		err := (&wizard.LocationInput{City: "Mumbai", Area: "Andheri", Pincode: pin}).Validate(models.RoleClient)
		assert.Equal(t, "Please enter a valid 6-digit pincode", fieldMessages(t, err)["pincode"], pin)
	}

	msgs := fieldMessages(t, (&wizard.LocationInput{}).Validate(models.RoleClient))
	assert.Equal(t, "Please fill in city and area", msgs["city"])
	assert.Equal(t, "Please fill in city and area", msgs["area"])
}

func TestDecodeInput(t *testing.T) {
	in, err := wizard.DecodeInput(wizard.StepServices, []byte(`{"services":["  Plumbing ", "", "Carpentry"]}`))
	require.NoError(t, err)
	services, ok := in.(*wizard.ServicesInput)
	require.True(t, ok)
	assert.Equal(t, []string{"Plumbing", "Carpentry"}, services.Services)

	in, err = wizard.DecodeInput(wizard.StepBasicInfo, []byte(`{"phone":" 9876543210 ","city":"Mumbai ","area":"Andheri"}`))
	require.NoError(t, err)
	assert.Equal(t, "9876543210", in.(*wizard.BasicInfoInput).Phone)
	assert.Equal(t, "Mumbai", in.(*wizard.BasicInfoInput).City)
}

func TestDecodeInput_RejectsForeignFields(t *testing.T) {
	_, err := wizard.DecodeInput(wizard.StepPreferences, []byte(`{"categories":["Plumbing"],"hourlyRate":500}`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = wizard.DecodeInput(wizard.Step("payment"), []byte(`{}`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = wizard.DecodeInput(wizard.StepLocation, []byte(`not json`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStepsFor_ReturnsCopy(t *testing.T) {
	steps := wizard.StepsFor(models.RoleProvider)
	steps[0] = wizard.StepLocation
	assert.Equal(t, wizard.StepBasicInfo, wizard.StepsFor(models.RoleProvider)[0])
}

func TestParseStep(t *testing.T) {
	step, ok := wizard.ParseStep("skills")
	assert.True(t, ok)
	assert.Equal(t, wizard.StepSkills, step)
	assert.Equal(t, "Skills & Experience", step.Title())

	_, ok = wizard.ParseStep("payment")
	assert.False(t, ok)
}

func TestGetCatalog(t *testing.T) {
	catalog := wizard.GetCatalog()
	assert.Len(t, catalog.Categories, 20)
	assert.Contains(t, catalog.Services, models.ProviderTypeTechnical)
	assert.Contains(t, catalog.Services, models.ProviderTypeNonTechnical)
	assert.Equal(t, wizard.MaxSkills, catalog.Limits["skills"])
}

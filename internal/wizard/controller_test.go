package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
)

func intPtr(v int) *int { return &v }

func validBasicInfo() *wizard.BasicInfoInput {
	return &wizard.BasicInfoInput{
		Phone:        "9876543210",
		City:         "Mumbai",
		Area:         "Andheri",
		ProviderType: models.ProviderTypeTechnical,
	}
}

// recordingPersister captures the draft it was called with
type recordingPersister struct {
	calls int
	draft *models.ProfileDraft
	err   error
}

func (p *recordingPersister) Persist(_ context.Context, d *models.ProfileDraft) (*models.User, error) {
	p.calls++
	p.draft = d
	if p.err != nil {
		return nil, p.err
	}
	return &models.User{ID: "u-1", Phone: d.Phone, City: d.City, ProfileCompleted: d.ProfileCompleted}, nil
}

func TestInitialize_StepSequenceByRole(t *testing.T) {
	provider := wizard.Initialize(models.RoleProvider, nil).Snapshot()
	assert.Equal(t, 1, provider.Step)
	assert.Equal(t, 4, provider.TotalSteps)
	assert.Equal(t, []wizard.Step{wizard.StepBasicInfo, wizard.StepServices, wizard.StepSkills, wizard.StepDocuments}, provider.Steps)
	assert.NotNil(t, provider.Draft.Provider)
	assert.Nil(t, provider.Draft.Client)
	assert.False(t, provider.EditMode)

	client := wizard.Initialize(models.RoleClient, nil).Snapshot()
	assert.Equal(t, 3, client.TotalSteps)
	assert.Equal(t, []wizard.Step{wizard.StepBasicInfo, wizard.StepPreferences, wizard.StepLocation}, client.Steps)
	assert.Nil(t, client.Draft.Provider)
	assert.NotNil(t, client.Draft.Client)

	admin := wizard.Initialize(models.RoleAdmin, nil).Snapshot()
	assert.Equal(t, 3, admin.TotalSteps)
}

func TestInitialize_EditModeSeedsDraft(t *testing.T) {
	existing := &models.User{
		Phone:        "9876543210",
		City:         "Pune",
		Area:         "Kothrud",
		ProviderType: models.ProviderTypeNonTechnical,
		Services:     []string{"Plumbing"},
		Experience:   3,
		Preferences:  models.Preferences{Budget: "Flexible"},
	}

	ctrl := wizard.Initialize(models.RoleProvider, existing)
	snap := ctrl.Snapshot()

	assert.True(t, snap.EditMode)
	assert.Equal(t, 1, snap.Step)
	assert.Equal(t, "Pune", snap.Draft.City)
	require.NotNil(t, snap.Draft.Provider)
	assert.Equal(t, []string{"Plumbing"}, snap.Draft.Provider.Services)
	assert.Equal(t, 3, *snap.Draft.Provider.Experience)
	assert.Nil(t, snap.Draft.Client, "client preferences must not leak into a provider draft")

	form, ok := snap.Seed.(*wizard.BasicInfoInput)
	require.True(t, ok)
	assert.Equal(t, models.ProviderTypeNonTechnical, form.ProviderType)
}

func TestAdvance_ProviderScenario(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleProvider, nil)

	require.NoError(t, ctrl.Advance(validBasicInfo()))
	assert.Equal(t, wizard.StepServices, ctrl.Snapshot().StepName)

	require.NoError(t, ctrl.Advance(&wizard.ServicesInput{Services: []string{"Plumbing"}}))
	assert.Equal(t, wizard.StepSkills, ctrl.Snapshot().StepName)

	require.NoError(t, ctrl.Advance(&wizard.SkillsInput{
		Skills:       []string{"Pipe Fitting"},
		Experience:   intPtr(5),
		HourlyRate:   500,
		Availability: []string{"All Days"},
	}))
	assert.Equal(t, wizard.StepDocuments, ctrl.Snapshot().StepName)
	assert.Equal(t, ctrl.Snapshot().TotalSteps, ctrl.Snapshot().Step)

	persister := &recordingPersister{}
	profile, err := ctrl.Finalize(context.Background(), persister, &wizard.DocumentsInput{})
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 1, persister.calls)

	d := persister.draft
	assert.True(t, d.ProfileCompleted)
	assert.Equal(t, "9876543210", d.Phone)
	assert.Equal(t, "Mumbai", d.City)
	assert.Equal(t, "Andheri", d.Area)
	assert.Equal(t, models.ProviderTypeTechnical, d.Provider.ProviderType)
	assert.Equal(t, []string{"Plumbing"}, d.Provider.Services)
	assert.Equal(t, []string{"Pipe Fitting"}, d.Provider.Skills)
	assert.Equal(t, 5, *d.Provider.Experience)
	assert.Equal(t, 500, d.Provider.HourlyRate)
	assert.Equal(t, []string{"All Days"}, d.Provider.Availability)
	assert.Nil(t, d.Client)

	snap := ctrl.Snapshot()
	assert.True(t, snap.Completed)
	assert.False(t, snap.Loading)
	assert.Equal(t, profile, snap.Profile)
}

func TestAdvance_ClientScenario_NeverCollectsProviderFields(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleClient, nil)

	basic := validBasicInfo()
	basic.ProviderType = ""
	require.NoError(t, ctrl.Advance(basic))

	require.NoError(t, ctrl.Advance(&wizard.PreferencesInput{
		Categories:              []string{"Plumbing", "Cleaning"},
		Budget:                  "Flexible",
		CommunicationPreference: "WhatsApp",
	}))
	assert.Equal(t, wizard.StepLocation, ctrl.Snapshot().StepName)

	persister := &recordingPersister{}
	_, err := ctrl.Finalize(context.Background(), persister, &wizard.LocationInput{
		City:    "Mumbai",
		Area:    "Bandra",
		Pincode: "400050",
	})
	require.NoError(t, err)

	d := persister.draft
	assert.Nil(t, d.Provider)
	require.NotNil(t, d.Client)
	assert.Equal(t, "Bandra", d.Area, "location step overrides basic info area")
	assert.Equal(t, "400050", d.Client.Pincode)
	assert.Equal(t, []string{"Plumbing", "Cleaning"}, d.Client.Preferences.Categories)

	req := d.ToUpdateRequest()
	assert.Nil(t, req.Skills)
	assert.Nil(t, req.HourlyRate)
	assert.Nil(t, req.Services)
}

func TestAdvance_ValidationFailureLeavesDraftUnchanged(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleClient, nil)
	basic := validBasicInfo()
	require.NoError(t, ctrl.Advance(basic))
	require.NoError(t, ctrl.Advance(&wizard.PreferencesInput{
		Categories:              []string{"Plumbing"},
		Budget:                  "Flexible",
		CommunicationPreference: "Email",
	}))
	before := ctrl.Snapshot()

	persister := &recordingPersister{}
	_, err := ctrl.Finalize(context.Background(), persister, &wizard.LocationInput{
		City:    "Mumbai",
		Area:    "Andheri",
		Pincode: "12345",
	})

	var verr *wizard.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, "Please enter a valid 6-digit pincode", verr.Fields[0].Message)
	assert.Zero(t, persister.calls)

	after := ctrl.Snapshot()
	assert.Equal(t, before.Draft, after.Draft)
	assert.Equal(t, wizard.StepLocation, after.StepName)
}

func TestAdvance_StepMismatch(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleProvider, nil)

	err := ctrl.Advance(&wizard.ServicesInput{Services: []string{"Plumbing"}})
	assert.ErrorIs(t, err, wizard.ErrStepMismatch)
	assert.Equal(t, wizard.StepBasicInfo, ctrl.Snapshot().StepName)
	assert.Empty(t, ctrl.Snapshot().Draft.Provider.Services)
}

func TestAdvance_LastStepMergesWithoutMoving(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleProvider, nil)
	require.NoError(t, ctrl.Advance(validBasicInfo()))
	require.NoError(t, ctrl.Advance(&wizard.ServicesInput{Services: []string{"Plumbing"}}))
	require.NoError(t, ctrl.Advance(&wizard.SkillsInput{
		Skills: []string{"Pipe Fitting"}, Experience: intPtr(0), HourlyRate: 50, Availability: []string{"Flexible"},
	}))

	require.NoError(t, ctrl.Advance(&wizard.DocumentsInput{IDProof: "https://cdn.example.com/id.pdf"}))
	snap := ctrl.Snapshot()
	assert.Equal(t, 4, snap.Step)
	assert.Equal(t, "https://cdn.example.com/id.pdf", snap.Draft.Provider.Documents.IDProof)
	assert.False(t, snap.Draft.ProfileCompleted)
}

func TestRetreat(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleProvider, nil)

	require.NoError(t, ctrl.Retreat())
	assert.Equal(t, 1, ctrl.Snapshot().Step, "retreat on step 1 is a no-op")

	require.NoError(t, ctrl.Advance(validBasicInfo()))
	require.NoError(t, ctrl.Advance(&wizard.ServicesInput{Services: []string{"Plumbing", "Carpentry"}}))
	before := ctrl.Snapshot().Draft

	require.NoError(t, ctrl.Retreat())
	snap := ctrl.Snapshot()
	assert.Equal(t, wizard.StepServices, snap.StepName)
	assert.Equal(t, before, snap.Draft, "retreat never mutates the draft")

	form, ok := snap.Seed.(*wizard.ServicesInput)
	require.True(t, ok)
	assert.Equal(t, []string{"Plumbing", "Carpentry"}, form.Services)
}

func TestFinalize_NotLastStep(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleClient, nil)
	persister := &recordingPersister{}

	_, err := ctrl.Finalize(context.Background(), persister, validBasicInfo())
	assert.ErrorIs(t, err, wizard.ErrNotLastStep)
	assert.Zero(t, persister.calls)
}

func clientAtLocation(t *testing.T) *wizard.Controller {
	t.Helper()
	ctrl := wizard.Initialize(models.RoleClient, nil)
	require.NoError(t, ctrl.Advance(validBasicInfo()))
	require.NoError(t, ctrl.Advance(&wizard.PreferencesInput{
		Categories:              []string{"Tutoring"},
		Budget:                  "Under ₹500",
		CommunicationPreference: "Phone Call",
	}))
	return ctrl
}

func TestFinalize_PersistFailureRollsBack(t *testing.T) {
	ctrl := clientAtLocation(t)
	before := ctrl.Snapshot()

	persister := &recordingPersister{err: errors.New("backend unavailable")}
	_, err := ctrl.Finalize(context.Background(), persister, &wizard.LocationInput{City: "Delhi", Area: "Saket"})
	require.EqualError(t, err, "backend unavailable")

	after := ctrl.Snapshot()
	assert.Equal(t, before.Draft, after.Draft)
	assert.False(t, after.Draft.ProfileCompleted)
	assert.False(t, after.Loading)
	assert.False(t, after.Completed)
	assert.Equal(t, wizard.StepLocation, after.StepName)

	// a retry after the failure succeeds
	persister.err = nil
	profile, err := ctrl.Finalize(context.Background(), persister, &wizard.LocationInput{City: "Delhi", Area: "Saket"})
	require.NoError(t, err)
	assert.True(t, profile.ProfileCompleted)
	assert.Equal(t, 2, persister.calls)
}

func TestFinalize_RejectsMutationsWhileInFlight(t *testing.T) {
	ctrl := clientAtLocation(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	persister := wizard.PersisterFunc(func(_ context.Context, d *models.ProfileDraft) (*models.User, error) {
		close(entered)
		<-release
		return &models.User{ID: "u-1", ProfileCompleted: d.ProfileCompleted}, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var finalizeErr error
	go func() {
		defer wg.Done()
		_, finalizeErr = ctrl.Finalize(context.Background(), persister, &wizard.LocationInput{City: "Delhi", Area: "Saket"})
	}()

	<-entered
	assert.True(t, ctrl.Snapshot().Loading)
	assert.ErrorIs(t, ctrl.Retreat(), wizard.ErrSubmissionInFlight)
	_, err := ctrl.Finalize(context.Background(), persister, &wizard.LocationInput{City: "Delhi", Area: "Saket"})
	assert.ErrorIs(t, err, wizard.ErrSubmissionInFlight)

	close(release)
	wg.Wait()
	require.NoError(t, finalizeErr)

	assert.ErrorIs(t, ctrl.Retreat(), wizard.ErrCompleted)
	assert.ErrorIs(t, ctrl.Advance(&wizard.LocationInput{City: "Delhi", Area: "Saket"}), wizard.ErrCompleted)
}

func TestFinalize_DoesNotLeakPersisterMutations(t *testing.T) {
	ctrl := clientAtLocation(t)
	persister := wizard.PersisterFunc(func(_ context.Context, d *models.ProfileDraft) (*models.User, error) {
		d.City = "Tampered"
		return &models.User{ID: "u-1"}, nil
	})

	_, err := ctrl.Finalize(context.Background(), persister, &wizard.LocationInput{City: "Delhi", Area: "Saket"})
	require.NoError(t, err)
	assert.Equal(t, "Delhi", ctrl.Snapshot().Draft.City)
}

func TestMarkSeedFailed(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleProvider, nil)
	ctrl.MarkSeedFailed()

	snap := ctrl.Snapshot()
	assert.True(t, snap.SeedFailed)
	assert.False(t, snap.EditMode)
}

func TestSubmit_AdvancesThenFinalizes(t *testing.T) {
	ctrl := wizard.Initialize(models.RoleClient, nil)
	persister := &recordingPersister{}

	basic := validBasicInfo()
	basic.ProviderType = ""
	completed, err := ctrl.Submit(context.Background(), persister, basic)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, wizard.StepPreferences, ctrl.Snapshot().StepName)

	completed, err = ctrl.Submit(context.Background(), persister, &wizard.PreferencesInput{
		Categories:              []string{"Cleaning"},
		Budget:                  "Flexible",
		CommunicationPreference: "Email",
	})
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Zero(t, persister.calls)

	completed, err = ctrl.Submit(context.Background(), persister, &wizard.LocationInput{City: "Delhi", Area: "Saket"})
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 1, persister.calls)
	assert.True(t, ctrl.Snapshot().Completed)
}

func TestSubmit_PersistFailureKeepsLastStep(t *testing.T) {
	ctrl := clientAtLocation(t)
	persister := &recordingPersister{err: errors.New("backend unavailable")}

	completed, err := ctrl.Submit(context.Background(), persister, &wizard.LocationInput{City: "Delhi", Area: "Saket"})
	require.EqualError(t, err, "backend unavailable")
	assert.False(t, completed)

	snap := ctrl.Snapshot()
	assert.Equal(t, wizard.StepLocation, snap.StepName)
	assert.False(t, snap.Completed)
	assert.Empty(t, snap.Draft.Client.Address)
}

// A final-step submission racing the submission that reaches the last step either arrives
// too early and is rejected, or arrives afterwards and persists. It never merges silently.
func TestSubmit_FinalStepRacingPreviousStepAlwaysPersists(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctrl := wizard.Initialize(models.RoleClient, nil)
		basic := validBasicInfo()
		basic.ProviderType = ""
		require.NoError(t, ctrl.Advance(basic))

		persister := &recordingPersister{}
		var wg sync.WaitGroup
		var locationCompleted bool
		var locationErr error

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = ctrl.Submit(context.Background(), persister, &wizard.PreferencesInput{
				Categories:              []string{"Cleaning"},
				Budget:                  "Flexible",
				CommunicationPreference: "Email",
			})
		}()
		go func() {
			defer wg.Done()
			locationCompleted, locationErr = ctrl.Submit(context.Background(), persister,
				&wizard.LocationInput{City: "Delhi", Area: "Saket"})
		}()
		wg.Wait()

		if locationErr != nil {
			assert.ErrorIs(t, locationErr, wizard.ErrStepMismatch)
			assert.False(t, locationCompleted)
			assert.Zero(t, persister.calls)
			assert.False(t, ctrl.Snapshot().Completed)
			continue
		}
		assert.True(t, locationCompleted, "a final-step submission must complete the wizard")
		assert.Equal(t, 1, persister.calls)
		assert.True(t, ctrl.Snapshot().Completed)
	}
}

package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
)

var (
	// ErrStepMismatch is returned when an input is submitted for a step other than the current one
	ErrStepMismatch = errors.New("input does not belong to the current step")
	// ErrNotLastStep is returned by Finalize before the wizard has reached its last step
	ErrNotLastStep = errors.New("profile can only be submitted from the last step")
	// ErrSubmissionInFlight is returned while a Finalize call is waiting on the persister
	ErrSubmissionInFlight = errors.New("profile submission already in progress")
	// ErrCompleted is returned for any mutation after the profile has been persisted
	ErrCompleted = errors.New("profile wizard already completed")
)

// Persister saves the finished draft and returns the canonical profile
type Persister interface {
	Persist(ctx context.Context, draft *models.ProfileDraft) (*models.User, error)
}

// PersisterFunc adapts a plain function to Persister
type PersisterFunc func(ctx context.Context, draft *models.ProfileDraft) (*models.User, error)

func (f PersisterFunc) Persist(ctx context.Context, draft *models.ProfileDraft) (*models.User, error) {
	return f(ctx, draft)
}

// Controller drives one user through the profile completion steps.
// The draft only changes through Advance and a successful Finalize.
type Controller struct {
	mu sync.Mutex

	id       string
	role     models.Role
	steps    []Step
	current  int // 1-based
	draft    *models.ProfileDraft
	editMode bool

	loading    bool
	completed  bool
	seedFailed bool
	profile    *models.User
}

// Initialize starts a wizard for role at step 1. A non-nil existing profile switches to
// edit mode and pre-fills the draft from it.
func Initialize(role models.Role, existing *models.User) *Controller {
	c := &Controller{
		id:      uuid.NewString(),
		role:    role,
		steps:   StepsFor(role),
		current: 1,
	}
	if existing != nil {
		c.editMode = true
		c.draft = models.SeedProfileDraft(role, existing)
	} else {
		c.draft = models.NewProfileDraft(role)
	}
	return c
}

// MarkSeedFailed records that the existing profile could not be loaded and the wizard started empty
func (c *Controller) MarkSeedFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seedFailed = true
}

// Advance merges a validated input into the draft and moves to the next step.
// On the last step the input is merged and the step stays put.
func (c *Controller) Advance(input StepInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.acceptLocked(input); err != nil {
		return err
	}
	c.advanceLocked(input)
	return nil
}

// Submit accepts input for the current step. Before the last step it advances; on the last
// step it finalizes through p and reports completed. The choice is made under the same lock
// that checks the step, so a concurrent Advance cannot turn a final submission into a plain merge.
func (c *Controller) Submit(ctx context.Context, p Persister, input StepInput) (bool, error) {
	c.mu.Lock()
	if err := c.acceptLocked(input); err != nil {
		c.mu.Unlock()
		return false, err
	}
	if c.current < len(c.steps) {
		c.advanceLocked(input)
		c.mu.Unlock()
		return false, nil
	}
	if _, err := c.finalizeLocked(ctx, p, input); err != nil {
		return false, err
	}
	return true, nil
}

// Retreat moves back one step without touching the draft. It is a no-op on step 1.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkMutable(); err != nil {
		return err
	}
	if c.current > 1 {
		c.current--
	}
	return nil
}

// Finalize merges the last step's input, marks the profile completed and hands it to p.
// The lock is released while p runs; concurrent mutations fail with ErrSubmissionInFlight.
// On error the draft and step are left exactly as they were.
func (c *Controller) Finalize(ctx context.Context, p Persister, input StepInput) (*models.User, error) {
	c.mu.Lock()
	if err := c.checkMutable(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.current != len(c.steps) {
		c.mu.Unlock()
		return nil, ErrNotLastStep
	}
	if err := c.acceptLocked(input); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	return c.finalizeLocked(ctx, p, input)
}

// finalizeLocked is entered with c.mu held and an accepted last-step input; it releases the lock
func (c *Controller) finalizeLocked(ctx context.Context, p Persister, input StepInput) (*models.User, error) {
	pending := c.draft.Clone()
	input.mergeInto(pending)
	pending.ProfileCompleted = true
	c.loading = true
	c.mu.Unlock()

	profile, err := p.Persist(ctx, pending.Clone())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return nil, err
	}

	c.draft = pending
	c.completed = true
	c.profile = profile
	return profile, nil
}

// Snapshot is a consistent copy of the controller state
type Snapshot struct {
	SessionID  string               `json:"sessionId"`
	Role       models.Role          `json:"role"`
	Step       int                  `json:"step"`
	TotalSteps int                  `json:"totalSteps"`
	StepName   Step                 `json:"stepName"`
	StepTitle  string               `json:"stepTitle"`
	Steps      []Step               `json:"steps"`
	Draft      *models.ProfileDraft `json:"draft"`
	Seed       StepInput            `json:"seed,omitempty"`
	EditMode   bool                 `json:"editMode"`
	Loading    bool                 `json:"loading"`
	Completed  bool                 `json:"completed"`
	SeedFailed bool                 `json:"seedFailed,omitempty"`
	Profile    *models.User         `json:"profile,omitempty"`
}

// Snapshot returns the current state. Seed holds the draft values of the current step so a
// client can pre-fill the screen.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.stepLocked()
	return Snapshot{
		SessionID:  c.id,
		Role:       c.role,
		Step:       c.current,
		TotalSteps: len(c.steps),
		StepName:   step,
		StepTitle:  step.Title(),
		Steps:      append([]Step(nil), c.steps...),
		Draft:      c.draft.Clone(),
		Seed:       SeedFor(step, c.draft),
		EditMode:   c.editMode,
		Loading:    c.loading,
		Completed:  c.completed,
		SeedFailed: c.seedFailed,
		Profile:    c.profile,
	}
}

// Role returns the role the step sequence was chosen for
func (c *Controller) Role() models.Role {
	return c.role
}

func (c *Controller) stepLocked() Step {
	return c.steps[c.current-1]
}

// acceptLocked checks that input may be applied to the current step
func (c *Controller) acceptLocked(input StepInput) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if input.Step() != c.stepLocked() {
		return fmt.Errorf("%w: got %s, current %s", ErrStepMismatch, input.Step(), c.stepLocked())
	}
	return input.Validate(c.role)
}

func (c *Controller) advanceLocked(input StepInput) {
	input.mergeInto(c.draft)
	if c.current < len(c.steps) {
		c.current++
	}
}

func (c *Controller) checkMutable() error {
	if c.completed {
		return ErrCompleted
	}
	if c.loading {
		return ErrSubmissionInFlight
	}
	return nil
}

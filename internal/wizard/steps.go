package wizard

import "github.com/vsconnecto/vsconnecto-api/internal/models"

// Step identifies one screen of the wizard
type Step string

const (
	StepBasicInfo   Step = "basic-info"
	StepServices    Step = "services"
	StepSkills      Step = "skills"
	StepDocuments   Step = "documents"
	StepPreferences Step = "preferences"
	StepLocation    Step = "location"
)

var (
	providerSteps = []Step{StepBasicInfo, StepServices, StepSkills, StepDocuments}
	clientSteps   = []Step{StepBasicInfo, StepPreferences, StepLocation}
)

// StepsFor returns the ordered steps for role. Providers get four steps, everyone else three.
func StepsFor(role models.Role) []Step {
	if role == models.RoleProvider {
		return append([]Step(nil), providerSteps...)
	}
	return append([]Step(nil), clientSteps...)
}

// Title is the human-readable heading of the step
func (s Step) Title() string {
	switch s {
	case StepBasicInfo:
		return "Basic Information"
	case StepServices:
		return "Services Offered"
	case StepSkills:
		return "Skills & Experience"
	case StepDocuments:
		return "Documents"
	case StepPreferences:
		return "Preferences"
	case StepLocation:
		return "Location"
	}
	return string(s)
}

// ParseStep validates a step name coming from a request
func ParseStep(raw string) (Step, bool) {
	switch s := Step(raw); s {
	case StepBasicInfo, StepServices, StepSkills, StepDocuments, StepPreferences, StepLocation:
		return s, true
	}
	return "", false
}

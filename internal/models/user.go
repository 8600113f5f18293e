package models

import "time"

// Role is the immutable marketplace role of a user
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// ProviderType splits providers into technical and non-technical work
type ProviderType string

const (
	ProviderTypeTechnical    ProviderType = "Technical"
	ProviderTypeNonTechnical ProviderType = "Non-Technical"
)

// Documents are the optional verification uploads of a provider
type Documents struct {
	IDProof        string   `json:"idProof"`
	AddressProof   string   `json:"addressProof"`
	Certifications []string `json:"certifications"`
}

// Preferences are what a client is looking for
type Preferences struct {
	Categories              []string `json:"categories"`
	Budget                  string   `json:"budget"`
	CommunicationPreference string   `json:"communicationPreference"`
}

// User is the canonical persisted profile
type User struct {
	ID             string       `json:"id"`
	FullName       string       `json:"fullName"`
	Email          string       `json:"email"`
	Role           Role         `json:"role"`
	Phone          string       `json:"phone"`
	City           string       `json:"city"`
	Area           string       `json:"area"`
	Bio            string       `json:"bio"`
	ProfilePicture string       `json:"profilePicture"`
	ProviderType   ProviderType `json:"providerType,omitempty"`

	Services     []string  `json:"services"`
	Skills       []string  `json:"skills"`
	Experience   int       `json:"experience"`
	HourlyRate   int       `json:"hourlyRate"`
	Availability []string  `json:"availability"`
	Documents    Documents `json:"documents"`

	Preferences Preferences `json:"preferences"`
	Address     string      `json:"address"`
	Landmark    string      `json:"landmark"`
	Pincode     string      `json:"pincode"`

	ProfileCompleted bool      `json:"profileCompleted"`
	Rating           float64   `json:"rating"`
	CompletedJobs    int       `json:"completedJobs"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

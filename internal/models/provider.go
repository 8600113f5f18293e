package models

// ProviderSearchFilter holds the query parameters of GET /users/search-providers
type ProviderSearchFilter struct {
	Category  string  `form:"category" binding:"omitempty,max=100"`
	City      string  `form:"city" binding:"omitempty,max=100"`
	Search    string  `form:"search" binding:"omitempty,max=100"`
	MinRating float64 `form:"minRating" binding:"omitempty,min=0,max=5"`
}

// ProviderSummary is the public view of a provider returned by search
type ProviderSummary struct {
	ID             string       `json:"id"`
	FullName       string       `json:"fullName"`
	ProfilePicture string       `json:"profilePicture"`
	ProviderType   ProviderType `json:"providerType"`
	City           string       `json:"city"`
	Area           string       `json:"area"`
	Bio            string       `json:"bio"`
	Services       []string     `json:"services"`
	Skills         []string     `json:"skills"`
	Experience     int          `json:"experience"`
	HourlyRate     int          `json:"hourlyRate"`
	Availability   []string     `json:"availability"`
	Rating         float64      `json:"rating"`
	CompletedJobs  int          `json:"completedJobs"`
}

// NewProviderSummary strips private fields (contact details, documents) from a user
func NewProviderSummary(u *User) ProviderSummary {
	return ProviderSummary{
		ID:             u.ID,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
		ProviderType:   u.ProviderType,
		City:           u.City,
		Area:           u.Area,
		Bio:            u.Bio,
		Services:       u.Services,
		Skills:         u.Skills,
		Experience:     u.Experience,
		HourlyRate:     u.HourlyRate,
		Availability:   u.Availability,
		Rating:         u.Rating,
		CompletedJobs:  u.CompletedJobs,
	}
}

// ProviderSearchResponse is the envelope for provider search results
type ProviderSearchResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	Data    []ProviderSummary `json:"data"`
}

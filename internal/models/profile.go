package models

// UpdateProfileRequest is the body of PUT /users/profile. Nil fields are left untouched.
// SECURITY: Max length validation to prevent resource exhaustion attacks
type UpdateProfileRequest struct {
	Phone          *string       `json:"phone,omitempty" binding:"omitempty,max=20"`
	City           *string       `json:"city,omitempty" binding:"omitempty,max=100"`
	Area           *string       `json:"area,omitempty" binding:"omitempty,max=100"`
	ProfilePicture *string       `json:"profilePicture,omitempty" binding:"omitempty,max=1000"`
	Bio            *string       `json:"bio,omitempty" binding:"omitempty,max=500"`
	ProviderType   *ProviderType `json:"providerType,omitempty" binding:"omitempty,oneof=Technical Non-Technical"`

	Services     []string   `json:"services,omitempty" binding:"omitempty,max=5,dive,max=100"`
	Skills       []string   `json:"skills,omitempty" binding:"omitempty,max=10,dive,max=50"`
	Experience   *int       `json:"experience,omitempty" binding:"omitempty,min=0,max=60"`
	HourlyRate   *int       `json:"hourlyRate,omitempty" binding:"omitempty,min=50,max=10000"`
	Availability []string   `json:"availability,omitempty" binding:"omitempty,max=5,dive,max=50"`
	Documents    *Documents `json:"documents,omitempty"`

	Preferences *Preferences `json:"preferences,omitempty"`
	Address     *string      `json:"address,omitempty" binding:"omitempty,max=300"`
	Landmark    *string      `json:"landmark,omitempty" binding:"omitempty,max=200"`
	Pincode     *string      `json:"pincode,omitempty" binding:"omitempty,len=6,numeric"`

	ProfileCompleted *bool `json:"profileCompleted,omitempty"`
}

// ProfileData wraps the user in response envelopes
type ProfileData struct {
	User *User `json:"user"`
}

// ProfileResponse is the envelope returned by the profile endpoints
type ProfileResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    *ProfileData `json:"data,omitempty"`
}

// UploadDocumentRequest carries one base64-encoded document from the Documents step
type UploadDocumentRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=idProof addressProof certification"`
	FileName    string `json:"fileName" binding:"omitempty,max=255"`
	ContentType string `json:"contentType" binding:"required,max=100"`
	Data        string `json:"data" binding:"required"`
}

// UploadDocumentResponse returns where the document can be fetched
type UploadDocumentResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

package wizard

import "github.com/vsconnecto/vsconnecto-api/internal/models"

// List bounds enforced by the step validators
const (
	MaxServices       = 5
	MaxSkills         = 10
	MaxCategories     = 5
	MaxCertifications = 10
	MinHourlyRate     = 50
	MaxHourlyRate     = 10000
	MaxBioLength      = 500
	MaxExperience     = 60
)

// AvailabilityOptions are the accepted provider availability values
var AvailabilityOptions = []string{
	"Monday - Friday",
	"Weekends Only",
	"All Days",
	"Flexible",
	"By Appointment",
}

// ClientCategories are the service categories a client may be interested in
var ClientCategories = []string{
	"Plumbing", "Electrical", "Carpentry", "Painting", "Cleaning",
	"Appliance Repair", "AC Repair", "Computer Repair", "Mobile Repair", "Pest Control",
	"Gardening", "Home Renovation", "Interior Design", "Photography", "Videography",
	"Catering", "Event Planning", "Tutoring", "Fitness Training", "Beauty & Salon",
}

// BudgetRanges are the accepted client budget values
var BudgetRanges = []string{
	"Under ₹500",
	"₹500 - ₹1,000",
	"₹1,000 - ₹2,500",
	"₹2,500 - ₹5,000",
	"Above ₹5,000",
	"Flexible",
}

// CommunicationPreferences are the accepted client contact channels
var CommunicationPreferences = []string{
	"Phone Call",
	"WhatsApp",
	"In-App Chat",
	"Email",
	"Video Call",
}

// ServiceGroup is a named group of suggested provider services
type ServiceGroup struct {
	Name     string   `json:"name"`
	Services []string `json:"services"`
}

// ServiceCatalog lists suggested services per provider type. Providers may also add custom services.
var ServiceCatalog = map[models.ProviderType][]ServiceGroup{
	models.ProviderTypeTechnical: {
		{Name: "Software Development & IT", Services: []string{
			"Frontend Web Development", "Backend Web Development", "Full-Stack Development",
			"E-commerce Development", "iOS App Development", "Android App Development",
			"Cross-Platform App Development", "Data Science & Analytics", "Machine Learning Engineering",
			"Deep Learning", "NLP", "Cloud Architecture", "CI/CD & Automation", "Containerization",
			"Ethical Hacking", "Security Analysis", "IT Support", "Database Administration",
			"QA & Software Testing",
		}},
		{Name: "Design & Creative", Services: []string{
			"Logo Design & Branding", "Social Media Graphics", "Print Design", "Packaging Design",
			"UI Design", "UX Design", "Prototyping & Wireframing", "Video Editing",
			"Motion Graphics & Animation", "3D Modeling & Rendering", "VFX", "Digital Illustration",
			"Character Design", "NFT Art",
		}},
		{Name: "Writing & Translation", Services: []string{
			"Article & Blog Writing", "Copywriting", "Technical Writing", "Editing & Proofreading",
			"Translation & Localization", "Transcription",
		}},
		{Name: "Digital Marketing", Services: []string{
			"SEO", "Social Media Marketing", "PPC Campaign Management", "Email Marketing",
			"Content Strategy", "Marketing Analytics",
		}},
		{Name: "Business & Admin Support", Services: []string{
			"Virtual Assistance", "Data Entry & Web Research", "Customer Support", "Project Management",
		}},
	},
	models.ProviderTypeNonTechnical: {
		{Name: "Home Services & Repairs", Services: []string{
			"Plumbing", "Electrical Work", "Carpentry & Woodworking", "Painting", "HVAC Repair",
			"Handyman Services", "Appliance Repair", "Furniture Assembly", "Pest Control",
		}},
		{Name: "Events & Personal Services", Services: []string{
			"Event Planning", "Photography", "Videography", "DJ Services", "Catering",
			"Personal Chef", "Makeup Artistry", "Hair Styling",
		}},
		{Name: "Cleaning & Maintenance", Services: []string{
			"Home Cleaning", "Office Cleaning", "Gardening & Landscaping", "Car Washing & Detailing",
		}},
		{Name: "Lessons & Tutoring", Services: []string{
			"Academic Tutoring", "Music Lessons", "Art Classes", "Fitness Training", "Yoga & Meditation",
		}},
		{Name: "Health & Pet Care", Services: []string{
			"Massage Therapy", "Pet Grooming", "Pet Sitting & Dog Walking",
		}},
	},
}

// Catalog is everything a client needs to render the wizard's option lists
type Catalog struct {
	Services                 map[models.ProviderType][]ServiceGroup `json:"services"`
	Availability             []string                               `json:"availability"`
	Categories               []string                               `json:"categories"`
	BudgetRanges             []string                               `json:"budgetRanges"`
	CommunicationPreferences []string                               `json:"communicationPreferences"`
	Limits                   map[string]int                         `json:"limits"`
}

// GetCatalog returns the option lists the step validators enforce
func GetCatalog() Catalog {
	return Catalog{
		Services:                 ServiceCatalog,
		Availability:             AvailabilityOptions,
		Categories:               ClientCategories,
		BudgetRanges:             BudgetRanges,
		CommunicationPreferences: CommunicationPreferences,
		Limits: map[string]int{
			"services":       MaxServices,
			"skills":         MaxSkills,
			"categories":     MaxCategories,
			"certifications": MaxCertifications,
			"minHourlyRate":  MinHourlyRate,
			"maxHourlyRate":  MaxHourlyRate,
			"bio":            MaxBioLength,
		},
	}
}

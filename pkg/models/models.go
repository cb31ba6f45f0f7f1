package models

// Domain models matching the entity schemas registered on the platform. All
// records are stored as opaque documents; these structs are the typed views
// used by the gateway and tests.

type User struct {
	ID                        string   `json:"id,omitempty"`
	Email                     string   `json:"email"`
	FullName                  string   `json:"full_name"`
	UserType                  string   `json:"user_type,omitempty"` // user, mentor, instructor, admin
	IsApprovedMentor          bool     `json:"is_approved_mentor,omitempty"`
	MentorID                  string   `json:"mentor_id,omitempty"`
	RecommendationLettersURLs []string `json:"recommendation_letters_urls,omitempty"`
	SubscriptionStatus        string   `json:"subscription_status,omitempty"`
	SubscriptionExpiry        string   `json:"subscription_expiry,omitempty"`
	BadgeLevel                string   `json:"badge_level,omitempty"`
}

// Recommendation is one endorsement attached to a mentor profile or
// application. Entries missing either field are dropped before persistence.
type Recommendation struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

type MentorProfile struct {
	ID              string           `json:"id,omitempty"`
	Name            string           `json:"name"`
	Specialty       string           `json:"specialty"`
	Email           string           `json:"email"`
	Bio             string           `json:"bio,omitempty"`
	Description     string           `json:"description"`
	FocusAreas      []string         `json:"focus_areas,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	ImageURL        string           `json:"image_url,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Location        string           `json:"location,omitempty"`
}

// Mentor application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

type MentorApplication struct {
	ID                string           `json:"id,omitempty"`
	FullName          string           `json:"full_name"`
	Email             string           `json:"email"`
	Phone             string           `json:"phone,omitempty"`
	Specialty         string           `json:"specialty"`
	ExperienceSummary string           `json:"experience_summary,omitempty"`
	Recommendations   []Recommendation `json:"recommendations,omitempty"`
	Status            string           `json:"status"`
	AdminNotes        string           `json:"admin_notes,omitempty"`
	ImageURL          string           `json:"image_url,omitempty"`
	LetterURI         string           `json:"letter_uri,omitempty"`
}

type Course struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Instructor  string  `json:"instructor,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Category    string  `json:"category,omitempty"`
	Level       string  `json:"level,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
}

type CommunityPost struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	AuthorName  string `json:"author_name,omitempty"`
	Category    string `json:"category,omitempty"`
	CreatedDate string `json:"created_date,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

type Like struct {
	ID        string `json:"id,omitempty"`
	PostID    string `json:"post_id"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name,omitempty"`
}

type Comment struct {
	ID          string `json:"id,omitempty"`
	PostID      string `json:"post_id"`
	AuthorName  string `json:"author_name"`
	Content     string `json:"content"`
	CreatedDate string `json:"created_date,omitempty"`
}

// Goal statuses.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
)

type Goal struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Category  string  `json:"category,omitempty"`
	Progress  int     `json:"progress"`
	Current   float64 `json:"current,omitempty"`
	Target    float64 `json:"target,omitempty"`
	DueDate   string  `json:"due_date,omitempty"`
	Status    string  `json:"status"`
	CreatedBy string  `json:"created_by,omitempty"`
}

// Appointment statuses.
const (
	AppointmentPending  = "pending_approval"
	AppointmentApproved = "approved"
	AppointmentRejected = "rejected"
)

type Appointment struct {
	ID          string `json:"id,omitempty"`
	MentorName  string `json:"mentor_name"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	UserPhone   string `json:"user_phone,omitempty"`
	UserMessage string `json:"user_message,omitempty"`
	Status      string `json:"status"`
}

type Article struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	AuthorName  string `json:"author_name,omitempty"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedDate string `json:"created_date,omitempty"`
}

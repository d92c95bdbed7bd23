package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployer Role = "employer"
	RoleWorker   Role = "worker"
)

// Account is a record owned by the identity provider. The role claim is set
// once at signup and embedded in every ID token minted afterwards.
type Account struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Location struct {
	City     string `json:"city"`
	State    string `json:"state"`
	District string `json:"district"`
	Pincode  string `json:"pincode"`
}

type JobPost struct {
	ID                          string    `json:"id"`
	EmployerID                  string    `json:"employer_id"`
	EmployerName                string    `json:"employer_name"`
	JobTitle                    string    `json:"job_title"`
	PlaceOfWork                 string    `json:"place_of_work"`
	Location                    Location  `json:"location"`
	Vacancies                   int       `json:"vacancies"`
	SpecialWomanProvision       bool      `json:"special_woman_provision"`
	SpecialTransgenderProvision bool      `json:"special_transgender_provision"`
	SpecialDisabilityProvision  bool      `json:"special_disability_provision"`
	Wage                        string    `json:"wage"`
	HoursPerWeek                int       `json:"hours_per_week"`
	JobDuration                 string    `json:"job_duration"`
	StartTime                   string    `json:"start_time"`
	EndTime                     string    `json:"end_time"`
	TypeOfWork                  string    `json:"type_of_work"`
	JobRoleDescription          string    `json:"job_role_description"`
	CreatedAt                   time.Time `json:"createdAt"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}

// JobPostFilter narrows ListJobPosts. Zero values mean "no filter";
// Limit <= 0 means unbounded.
type JobPostFilter struct {
	EmployerID string
	TypeOfWork string
	Limit      int
}

// UserProfile is keyed by the identity uid: at most one profile per uid.
// ProfilePhoto and Resume hold public object-store URLs, not file bytes.
type UserProfile struct {
	UID                string    `json:"-"`
	FirstName          string    `json:"firstName"`
	MiddleName         string    `json:"middleName"`
	LastName           string    `json:"lastName"`
	PhoneNumber        string    `json:"phoneNumber"`
	EmailAddress       string    `json:"emailAddress"`
	ProfilePhoto       string    `json:"profilePhoto"`
	ResidentialAddress string    `json:"residentialAddress"`
	Resume             string    `json:"resume"`
	Profession         string    `json:"profession"`
	Gender             string    `json:"gender"`
	Summary            string    `json:"summary"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CommunityPost struct {
	ID          string            `json:"id"`
	CommunityID string            `json:"communityId"`
	UserID      string            `json:"userId"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

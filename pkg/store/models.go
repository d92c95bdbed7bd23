package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type AccountModel struct {
	UID          string `gorm:"primaryKey;column:uid"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type JobPostModel struct {
	ID                          string `gorm:"primaryKey"`
	EmployerID                  string `gorm:"not null;index"`
	EmployerName                string
	JobTitle                    string `gorm:"not null"`
	PlaceOfWork                 string
	City                        string
	State                       string
	District                    string
	Pincode                     string
	Vacancies                   int `gorm:"not null"`
	SpecialWomanProvision       bool
	SpecialTransgenderProvision bool
	SpecialDisabilityProvision  bool
	Wage                        string
	HoursPerWeek                int
	JobDuration                 string
	StartTime                   string
	EndTime                     string
	TypeOfWork                  string    `gorm:"not null;index"`
	JobRoleDescription          string    `gorm:"type:text"`
	CreatedAt                   time.Time `gorm:"not null;index"`
	UpdatedAt                   time.Time `gorm:"not null"`
}

type UserProfileModel struct {
	UID                string `gorm:"primaryKey;column:uid"`
	FirstName          string
	MiddleName         string
	LastName           string
	PhoneNumber        string
	EmailAddress       string
	ProfilePhoto       string
	ResidentialAddress string
	Resume             string
	Profession         string
	Gender             string
	Summary            string    `gorm:"type:text"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

type CommunityModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null;index"`
	Description string `gorm:"type:text"`
	CreatedBy   string `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type CommunityMemberModel struct {
	CommunityID string    `gorm:"primaryKey"`
	UserID      string    `gorm:"primaryKey;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

type CommunityPostModel struct {
	ID          string         `gorm:"primaryKey"`
	CommunityID string         `gorm:"not null;index"`
	UserID      string         `gorm:"not null;index"`
	Title       string
	Content     string         `gorm:"type:text;not null"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null;index"`
}

type CommentModel struct {
	ID        string    `gorm:"primaryKey"`
	PostID    string    `gorm:"not null;index"`
	UserID    string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

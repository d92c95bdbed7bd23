package store

import (
	"bluecollarconnect/pkg/domain"
)

// Store defines persistence for identity accounts, job posts, user profiles,
// and the community surface. Documents are addressed by their generated ids;
// list operations return the store's default ordering.
type Store interface {
	// identity accounts
	SaveAccount(domain.Account) error
	GetAccountByEmail(email string) (domain.Account, bool, error)
	GetAccountByID(uid string) (domain.Account, bool, error)

	// job posts
	SaveJobPost(domain.JobPost) error
	ListJobPosts(domain.JobPostFilter) ([]domain.JobPost, error)
	GetJobPost(id string) (domain.JobPost, bool, error)

	// user profiles (one per uid)
	SaveProfile(domain.UserProfile) error
	GetProfile(uid string) (domain.UserProfile, bool, error)
	HasProfile(uid string) (bool, error)
	// UpdateProfileFields merges only the given wire-named fields into the
	// stored profile; absent fields are left untouched.
	UpdateProfileFields(uid string, fields map[string]any) error

	// communities
	SaveCommunity(domain.Community) error
	GetCommunity(id string) (domain.Community, bool, error)
	ListCommunities() ([]domain.Community, error)
	SearchCommunitiesByName(name string) ([]domain.Community, error)
	AddCommunityMember(communityID, userID string) error
	RemoveCommunityMember(communityID, userID string) error
	IsCommunityMember(communityID, userID string) (bool, error)
	ListCommunitiesByMember(userID string) ([]domain.Community, error)

	// community posts and comments
	SaveCommunityPost(domain.CommunityPost) error
	GetCommunityPost(id string) (domain.CommunityPost, bool, error)
	ListCommunityPosts(communityID string) ([]domain.CommunityPost, error)
	ListCommunityPostsByCommunities(communityIDs []string) ([]domain.CommunityPost, error)
	SaveComment(domain.Comment) error
	ListComments(postID string) ([]domain.Comment, error)
}

// profileColumns maps wire field names to storage column names for partial
// profile updates. Unknown names are ignored by implementations.
var profileColumns = map[string]string{
	"firstName":          "first_name",
	"middleName":         "middle_name",
	"lastName":           "last_name",
	"phoneNumber":        "phone_number",
	"emailAddress":       "email_address",
	"profilePhoto":       "profile_photo",
	"residentialAddress": "residential_address",
	"resume":             "resume",
	"profession":         "profession",
	"gender":             "gender",
	"summary":            "summary",
	"updatedAt":          "updated_at",
}

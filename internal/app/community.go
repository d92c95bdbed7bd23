package app

import (
	"time"

	"github.com/google/uuid"

	"bluecollarconnect/pkg/domain"
)

// CreateCommunity creates a worker community owned by the caller. The
// creator joins automatically.
func (a *App) CreateCommunity(uid, name, description string) (domain.Community, error) {
	now := time.Now().UTC()
	community := domain.Community{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedBy:   uid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.SaveCommunity(community); err != nil {
		return domain.Community{}, err
	}
	if err := a.store.AddCommunityMember(community.ID, uid); err != nil {
		return domain.Community{}, err
	}
	return community, nil
}

// GetCommunity returns a community by id.
func (a *App) GetCommunity(id string) (domain.Community, error) {
	community, ok, err := a.store.GetCommunity(id)
	if err != nil {
		return domain.Community{}, err
	}
	if !ok {
		return domain.Community{}, ErrCommunityNotFound
	}
	return community, nil
}

// ListCommunities returns every community.
func (a *App) ListCommunities() ([]domain.Community, error) {
	communities, err := a.store.ListCommunities()
	if err != nil {
		return nil, err
	}
	if communities == nil {
		communities = []domain.Community{}
	}
	return communities, nil
}

// SearchCommunities matches community names case-insensitively.
func (a *App) SearchCommunities(name string) ([]domain.Community, error) {
	communities, err := a.store.SearchCommunitiesByName(name)
	if err != nil {
		return nil, err
	}
	if communities == nil {
		communities = []domain.Community{}
	}
	return communities, nil
}

// JoinCommunity adds the caller to a community. Joining twice fails.
func (a *App) JoinCommunity(communityID, uid string) error {
	if _, err := a.GetCommunity(communityID); err != nil {
		return err
	}
	member, err := a.store.IsCommunityMember(communityID, uid)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	return a.store.AddCommunityMember(communityID, uid)
}

// LeaveCommunity removes the caller from a community.
func (a *App) LeaveCommunity(communityID, uid string) error {
	if _, err := a.GetCommunity(communityID); err != nil {
		return err
	}
	member, err := a.store.IsCommunityMember(communityID, uid)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotMember
	}
	return a.store.RemoveCommunityMember(communityID, uid)
}

// JoinedCommunities lists the communities a user belongs to.
func (a *App) JoinedCommunities(userID string) ([]domain.Community, error) {
	communities, err := a.store.ListCommunitiesByMember(userID)
	if err != nil {
		return nil, err
	}
	if communities == nil {
		communities = []domain.Community{}
	}
	return communities, nil
}

// CreateCommunityPost writes a post. Only members may post.
func (a *App) CreateCommunityPost(communityID, uid, title, content string, metadata map[string]string) (domain.CommunityPost, error) {
	if _, err := a.GetCommunity(communityID); err != nil {
		return domain.CommunityPost{}, err
	}
	member, err := a.store.IsCommunityMember(communityID, uid)
	if err != nil {
		return domain.CommunityPost{}, err
	}
	if !member {
		return domain.CommunityPost{}, ErrNotMember
	}
	post := domain.CommunityPost{
		ID:          uuid.NewString(),
		CommunityID: communityID,
		UserID:      uid,
		Title:       title,
		Content:     content,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveCommunityPost(post); err != nil {
		return domain.CommunityPost{}, err
	}
	return post, nil
}

// CommunityPosts lists a community's posts, newest first.
func (a *App) CommunityPosts(communityID string) ([]domain.CommunityPost, error) {
	if _, err := a.GetCommunity(communityID); err != nil {
		return nil, err
	}
	posts, err := a.store.ListCommunityPosts(communityID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.CommunityPost{}
	}
	return posts, nil
}

// GetCommunityPost returns a post with its comments.
func (a *App) GetCommunityPost(postID string) (domain.CommunityPost, []domain.Comment, error) {
	post, ok, err := a.store.GetCommunityPost(postID)
	if err != nil {
		return domain.CommunityPost{}, nil, err
	}
	if !ok {
		return domain.CommunityPost{}, nil, ErrPostNotFound
	}
	comments, err := a.store.ListComments(postID)
	if err != nil {
		return domain.CommunityPost{}, nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return post, comments, nil
}

// AddComment appends a comment to an existing post.
func (a *App) AddComment(postID, uid, content string) (domain.Comment, error) {
	if _, ok, err := a.store.GetCommunityPost(postID); err != nil {
		return domain.Comment{}, err
	} else if !ok {
		return domain.Comment{}, ErrPostNotFound
	}
	comment := domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    uid,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveComment(comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// JoinedCommunityPosts lists posts across every community a user has joined,
// newest first.
func (a *App) JoinedCommunityPosts(userID string) ([]domain.CommunityPost, error) {
	communities, err := a.store.ListCommunitiesByMember(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(communities))
	for _, c := range communities {
		ids = append(ids, c.ID)
	}
	posts, err := a.store.ListCommunityPostsByCommunities(ids)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.CommunityPost{}
	}
	return posts, nil
}

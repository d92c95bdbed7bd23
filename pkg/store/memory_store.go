package store

import (
	"sort"
	"strings"
	"sync"

	"bluecollarconnect/pkg/domain"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store used by tests.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account
	jobs      []domain.JobPost
	profiles  map[string]domain.UserProfile
	comms     []domain.Community
	members   map[string]map[string]bool // communityID -> userID set
	posts     []domain.CommunityPost
	comments  []domain.Comment
	memberSeq map[string][]string // communityID -> join order
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]domain.Account),
		profiles:  make(map[string]domain.UserProfile),
		members:   make(map[string]map[string]bool),
		memberSeq: make(map[string][]string),
	}
}

func (s *MemoryStore) SaveAccount(a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.UID] = a
	return nil
}

func (s *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return a, true, nil
		}
	}
	return domain.Account{}, false, nil
}

func (s *MemoryStore) GetAccountByID(uid string) (domain.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[uid]
	return a, ok, nil
}

func (s *MemoryStore) SaveJobPost(p domain.JobPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, p)
	return nil
}

func (s *MemoryStore) ListJobPosts(filter domain.JobPostFilter) ([]domain.JobPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.JobPost, 0, len(s.jobs))
	for _, p := range s.jobs {
		if filter.EmployerID != "" && p.EmployerID != filter.EmployerID {
			continue
		}
		if filter.TypeOfWork != "" && p.TypeOfWork != filter.TypeOfWork {
			continue
		}
		res = append(res, p)
		if filter.Limit > 0 && len(res) == filter.Limit {
			break
		}
	}
	return res, nil
}

func (s *MemoryStore) GetJobPost(id string) (domain.JobPost, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.jobs {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.JobPost{}, false, nil
}

func (s *MemoryStore) SaveProfile(p domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UID] = p
	return nil
}

func (s *MemoryStore) GetProfile(uid string) (domain.UserProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[uid]
	return p, ok, nil
}

func (s *MemoryStore) HasProfile(uid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[uid]
	return ok, nil
}

func (s *MemoryStore) UpdateProfileFields(uid string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	if !ok {
		return nil
	}
	applyProfileFields(&p, fields)
	s.profiles[uid] = p
	return nil
}

func applyProfileFields(p *domain.UserProfile, fields map[string]any) {
	set := func(dst *string, v any) {
		if str, ok := v.(string); ok {
			*dst = str
		}
	}
	for name, v := range fields {
		switch name {
		case "firstName":
			set(&p.FirstName, v)
		case "middleName":
			set(&p.MiddleName, v)
		case "lastName":
			set(&p.LastName, v)
		case "phoneNumber":
			set(&p.PhoneNumber, v)
		case "emailAddress":
			set(&p.EmailAddress, v)
		case "profilePhoto":
			set(&p.ProfilePhoto, v)
		case "residentialAddress":
			set(&p.ResidentialAddress, v)
		case "resume":
			set(&p.Resume, v)
		case "profession":
			set(&p.Profession, v)
		case "gender":
			set(&p.Gender, v)
		case "summary":
			set(&p.Summary, v)
		}
	}
}

func (s *MemoryStore) SaveCommunity(c domain.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.comms {
		if s.comms[i].ID == c.ID {
			s.comms[i] = c
			return nil
		}
	}
	s.comms = append(s.comms, c)
	return nil
}

func (s *MemoryStore) GetCommunity(id string) (domain.Community, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.comms {
		if c.ID == id {
			return c, true, nil
		}
	}
	return domain.Community{}, false, nil
}

func (s *MemoryStore) ListCommunities() ([]domain.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.Community, len(s.comms))
	copy(res, s.comms)
	return res, nil
}

func (s *MemoryStore) SearchCommunitiesByName(name string) ([]domain.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(name))
	res := make([]domain.Community, 0)
	for _, c := range s.comms {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *MemoryStore) AddCommunityMember(communityID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.members[communityID]
	if !ok {
		set = make(map[string]bool)
		s.members[communityID] = set
	}
	if !set[userID] {
		set[userID] = true
		s.memberSeq[communityID] = append(s.memberSeq[communityID], userID)
	}
	return nil
}

func (s *MemoryStore) RemoveCommunityMember(communityID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[communityID], userID)
	seq := s.memberSeq[communityID]
	for i, uid := range seq {
		if uid == userID {
			s.memberSeq[communityID] = append(seq[:i:i], seq[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) IsCommunityMember(communityID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[communityID][userID], nil
}

func (s *MemoryStore) ListCommunitiesByMember(userID string) ([]domain.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.Community, 0)
	for _, c := range s.comms {
		if s.members[c.ID][userID] {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *MemoryStore) SaveCommunityPost(p domain.CommunityPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
	return nil
}

func (s *MemoryStore) GetCommunityPost(id string) (domain.CommunityPost, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.CommunityPost{}, false, nil
}

func (s *MemoryStore) ListCommunityPosts(communityID string) ([]domain.CommunityPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.CommunityPost, 0)
	for _, p := range s.posts {
		if p.CommunityID == communityID {
			res = append(res, p)
		}
	}
	sortPostsNewestFirst(res)
	return res, nil
}

func (s *MemoryStore) ListCommunityPostsByCommunities(communityIDs []string) ([]domain.CommunityPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(communityIDs))
	for _, id := range communityIDs {
		wanted[id] = true
	}
	res := make([]domain.CommunityPost, 0)
	for _, p := range s.posts {
		if wanted[p.CommunityID] {
			res = append(res, p)
		}
	}
	sortPostsNewestFirst(res)
	return res, nil
}

func sortPostsNewestFirst(posts []domain.CommunityPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func (s *MemoryStore) SaveComment(c domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, c)
	return nil
}

func (s *MemoryStore) ListComments(postID string) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			res = append(res, c)
		}
	}
	return res, nil
}

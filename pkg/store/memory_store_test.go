package store

import (
	"testing"
	"time"

	"bluecollarconnect/pkg/domain"
)

func TestListJobPostsFilters(t *testing.T) {
	s := NewMemoryStore()
	posts := []domain.JobPost{
		{ID: "1", EmployerID: "e1", TypeOfWork: "plumbing"},
		{ID: "2", EmployerID: "e1", TypeOfWork: "masonry"},
		{ID: "3", EmployerID: "e2", TypeOfWork: "plumbing"},
	}
	for _, p := range posts {
		if err := s.SaveJobPost(p); err != nil {
			t.Fatalf("save post: %v", err)
		}
	}

	got, err := s.ListJobPosts(domain.JobPostFilter{EmployerID: "e1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("employer filter returned %d posts, want 2", len(got))
	}

	got, err = s.ListJobPosts(domain.JobPostFilter{EmployerID: "e1", TypeOfWork: "plumbing"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("intersection filter = %+v, want only post 1", got)
	}

	got, err = s.ListJobPosts(domain.JobPostFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit filter returned %d posts, want 2", len(got))
	}
}

func TestUpdateProfileFieldsPartialMerge(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SaveProfile(domain.UserProfile{
		UID:        "u1",
		FirstName:  "Ram",
		LastName:   "Kumar",
		Profession: "mason",
	}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := s.UpdateProfileFields("u1", map[string]any{
		"firstName": "Shyam",
		"resume":    "http://objects/abc_cv.pdf",
	}); err != nil {
		t.Fatalf("update fields: %v", err)
	}
	p, ok, err := s.GetProfile("u1")
	if err != nil || !ok {
		t.Fatalf("get profile: ok=%v err=%v", ok, err)
	}
	if p.FirstName != "Shyam" {
		t.Fatalf("firstName = %q, want updated", p.FirstName)
	}
	if p.LastName != "Kumar" || p.Profession != "mason" {
		t.Fatalf("untouched fields changed: %+v", p)
	}
	if p.Resume != "http://objects/abc_cv.pdf" {
		t.Fatalf("resume = %q", p.Resume)
	}
}

func TestCommunityMembershipRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	c := domain.Community{ID: "c1", Name: "Masons United", CreatedAt: time.Now()}
	if err := s.SaveCommunity(c); err != nil {
		t.Fatalf("save community: %v", err)
	}
	if err := s.AddCommunityMember("c1", "u1"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	member, err := s.IsCommunityMember("c1", "u1")
	if err != nil || !member {
		t.Fatalf("membership: member=%v err=%v", member, err)
	}
	joined, err := s.ListCommunitiesByMember("u1")
	if err != nil || len(joined) != 1 || joined[0].ID != "c1" {
		t.Fatalf("joined = %+v err=%v", joined, err)
	}
	if err := s.RemoveCommunityMember("c1", "u1"); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	member, err = s.IsCommunityMember("c1", "u1")
	if err != nil || member {
		t.Fatalf("membership after leave: member=%v err=%v", member, err)
	}
}

func TestSearchCommunitiesByNameCaseInsensitive(t *testing.T) {
	s := NewMemoryStore()
	for _, c := range []domain.Community{
		{ID: "c1", Name: "Masons United"},
		{ID: "c2", Name: "Plumbers Guild"},
	} {
		if err := s.SaveCommunity(c); err != nil {
			t.Fatalf("save community: %v", err)
		}
	}
	found, err := s.SearchCommunitiesByName("mason")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != "c1" {
		t.Fatalf("search = %+v, want only c1", found)
	}
}

func TestCommunityPostsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now().UTC()
	for i, id := range []string{"p1", "p2", "p3"} {
		post := domain.CommunityPost{
			ID:          id,
			CommunityID: "c1",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveCommunityPost(post); err != nil {
			t.Fatalf("save post: %v", err)
		}
	}
	posts, err := s.ListCommunityPosts("c1")
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 3 || posts[0].ID != "p3" || posts[2].ID != "p1" {
		t.Fatalf("posts order = %+v, want newest first", posts)
	}
}

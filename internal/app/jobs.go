package app

import (
	"time"

	"github.com/google/uuid"

	"bluecollarconnect/internal/ingest"
	"bluecollarconnect/pkg/domain"
)

// JobPostRequiredFields are the multipart text fields a job post must carry.
var JobPostRequiredFields = []string{"employer_id", "job_title", "type_of_work"}

// CreateJobPost builds a job post from a parsed form and stores it.
// Optional fields default to empty strings, zero, or false.
func (a *App) CreateJobPost(form *ingest.Form) (domain.JobPost, error) {
	now := time.Now().UTC()
	post := domain.JobPost{
		ID:           uuid.NewString(),
		EmployerID:   form.Value("employer_id"),
		EmployerName: form.Value("employer_name"),
		JobTitle:     form.Value("job_title"),
		PlaceOfWork:  form.Value("place_of_work"),
		Location: domain.Location{
			City:     form.Value("city"),
			State:    form.Value("state"),
			District: form.Value("district"),
			Pincode:  form.Value("pincode"),
		},
		Vacancies:                   form.Int("vacancies"),
		SpecialWomanProvision:       form.Bool("special_woman_provision"),
		SpecialTransgenderProvision: form.Bool("special_transgender_provision"),
		SpecialDisabilityProvision:  form.Bool("special_disability_provision"),
		Wage:                        form.Value("wage"),
		HoursPerWeek:                form.Int("hours_per_week"),
		JobDuration:                 form.Value("job_duration"),
		StartTime:                   form.Value("start_time"),
		EndTime:                     form.Value("end_time"),
		TypeOfWork:                  form.Value("type_of_work"),
		JobRoleDescription:          form.Value("job_role_description"),
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
	if err := a.store.SaveJobPost(post); err != nil {
		return domain.JobPost{}, err
	}
	return post, nil
}

// ListJobPosts returns job posts matching the filter.
func (a *App) ListJobPosts(filter domain.JobPostFilter) ([]domain.JobPost, error) {
	posts, err := a.store.ListJobPosts(filter)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.JobPost{}
	}
	return posts, nil
}

// GetJobPost looks a job post up by id.
func (a *App) GetJobPost(id string) (domain.JobPost, error) {
	post, ok, err := a.store.GetJobPost(id)
	if err != nil {
		return domain.JobPost{}, err
	}
	if !ok {
		return domain.JobPost{}, ErrJobPostNotFound
	}
	return post, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bluecollarconnect/pkg/domain"
)

const migrateLockID int64 = 52915291

var _ Store = (*GormStore)(nil)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&AccountModel{},
			&JobPostModel{},
			&UserProfileModel{},
			&CommunityModel{},
			&CommunityMemberModel{},
			&CommunityPostModel{},
			&CommentModel{},
		)
	}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveAccount registers or updates an identity account.
func (s *GormStore) SaveAccount(a domain.Account) error {
	model := accountToModel(a)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "role", "updated_at"}),
	}).Create(&model).Error
}

// GetAccountByEmail looks up an account by email.
func (s *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// GetAccountByID returns an account by uid.
func (s *GormStore) GetAccountByID(uid string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.First(&model, "uid = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// SaveJobPost writes a job post unconditionally; ids are always fresh.
func (s *GormStore) SaveJobPost(p domain.JobPost) error {
	model := jobPostToModel(p)
	return s.db.Create(&model).Error
}

// ListJobPosts returns posts matching the filter in creation order.
func (s *GormStore) ListJobPosts(filter domain.JobPostFilter) ([]domain.JobPost, error) {
	tx := s.db.Order("created_at ASC")
	if filter.EmployerID != "" {
		tx = tx.Where("employer_id = ?", filter.EmployerID)
	}
	if filter.TypeOfWork != "" {
		tx = tx.Where("type_of_work = ?", filter.TypeOfWork)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	var models []JobPostModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.JobPost, 0, len(models))
	for _, m := range models {
		res = append(res, jobPostFromModel(m))
	}
	return res, nil
}

// GetJobPost retrieves a job post by id.
func (s *GormStore) GetJobPost(id string) (domain.JobPost, bool, error) {
	var model JobPostModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.JobPost{}, false, nil
		}
		return domain.JobPost{}, false, err
	}
	return jobPostFromModel(model), true, nil
}

// SaveProfile stores or replaces a user profile.
func (s *GormStore) SaveProfile(p domain.UserProfile) error {
	model := profileToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "middle_name", "last_name", "phone_number",
			"email_address", "profile_photo", "residential_address", "resume",
			"profession", "gender", "summary", "updated_at",
		}),
	}).Create(&model).Error
}

// GetProfile retrieves the profile for a uid.
func (s *GormStore) GetProfile(uid string) (domain.UserProfile, bool, error) {
	var model UserProfileModel
	if err := s.db.First(&model, "uid = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.UserProfile{}, false, nil
		}
		return domain.UserProfile{}, false, err
	}
	return profileFromModel(model), true, nil
}

// HasProfile checks profile existence without loading it.
func (s *GormStore) HasProfile(uid string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserProfileModel{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfileFields merges only the given wire-named fields.
func (s *GormStore) UpdateProfileFields(uid string, fields map[string]any) error {
	updates := make(map[string]any, len(fields))
	for name, value := range fields {
		column, ok := profileColumns[name]
		if !ok {
			continue
		}
		updates[column] = value
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(&UserProfileModel{}).Where("uid = ?", uid).Updates(updates).Error
}

// SaveCommunity stores or updates a community.
func (s *GormStore) SaveCommunity(c domain.Community) error {
	model := communityToModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(&model).Error
}

// GetCommunity retrieves a community by id.
func (s *GormStore) GetCommunity(id string) (domain.Community, bool, error) {
	var model CommunityModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Community{}, false, nil
		}
		return domain.Community{}, false, err
	}
	return communityFromModel(model), true, nil
}

// ListCommunities returns all communities in creation order.
func (s *GormStore) ListCommunities() ([]domain.Community, error) {
	return s.listCommunities(s.db.Order("created_at ASC"))
}

// SearchCommunitiesByName matches community names case-insensitively.
func (s *GormStore) SearchCommunitiesByName(name string) ([]domain.Community, error) {
	pattern := "%" + strings.TrimSpace(name) + "%"
	return s.listCommunities(s.db.Where("name ILIKE ?", pattern).Order("created_at ASC"))
}

func (s *GormStore) listCommunities(tx *gorm.DB) ([]domain.Community, error) {
	var models []CommunityModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Community, 0, len(models))
	for _, m := range models {
		res = append(res, communityFromModel(m))
	}
	return res, nil
}

// AddCommunityMember records membership; duplicate joins are no-ops.
func (s *GormStore) AddCommunityMember(communityID, userID string) error {
	model := CommunityMemberModel{
		CommunityID: communityID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// RemoveCommunityMember deletes a membership row.
func (s *GormStore) RemoveCommunityMember(communityID, userID string) error {
	return s.db.Delete(&CommunityMemberModel{}, "community_id = ? AND user_id = ?", communityID, userID).Error
}

// IsCommunityMember checks membership.
func (s *GormStore) IsCommunityMember(communityID, userID string) (bool, error) {
	var count int64
	if err := s.db.Model(&CommunityMemberModel{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListCommunitiesByMember returns the communities a user has joined.
func (s *GormStore) ListCommunitiesByMember(userID string) ([]domain.Community, error) {
	return s.listCommunities(s.db.
		Joins("JOIN community_member_models m ON m.community_id = community_models.id").
		Where("m.user_id = ?", userID).
		Order("community_models.created_at ASC"))
}

// SaveCommunityPost stores a post.
func (s *GormStore) SaveCommunityPost(p domain.CommunityPost) error {
	model, err := communityPostToModel(p)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetCommunityPost retrieves a post by id.
func (s *GormStore) GetCommunityPost(id string) (domain.CommunityPost, bool, error) {
	var model CommunityPostModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.CommunityPost{}, false, nil
		}
		return domain.CommunityPost{}, false, err
	}
	return communityPostFromModel(model), true, nil
}

// ListCommunityPosts returns a community's posts, newest first.
func (s *GormStore) ListCommunityPosts(communityID string) ([]domain.CommunityPost, error) {
	return s.listCommunityPosts(s.db.Where("community_id = ?", communityID))
}

// ListCommunityPostsByCommunities returns posts across communities, newest first.
func (s *GormStore) ListCommunityPostsByCommunities(communityIDs []string) ([]domain.CommunityPost, error) {
	if len(communityIDs) == 0 {
		return []domain.CommunityPost{}, nil
	}
	return s.listCommunityPosts(s.db.Where("community_id IN ?", communityIDs))
}

func (s *GormStore) listCommunityPosts(tx *gorm.DB) ([]domain.CommunityPost, error) {
	var models []CommunityPostModel
	if err := tx.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CommunityPost, 0, len(models))
	for _, m := range models {
		res = append(res, communityPostFromModel(m))
	}
	return res, nil
}

// SaveComment stores a comment.
func (s *GormStore) SaveComment(c domain.Comment) error {
	model := commentToModel(c)
	return s.db.Create(&model).Error
}

// ListComments returns a post's comments in chronological order.
func (s *GormStore) ListComments(postID string) ([]domain.Comment, error) {
	var models []CommentModel
	if err := s.db.Where("post_id = ?", postID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Comment, 0, len(models))
	for _, m := range models {
		res = append(res, commentFromModel(m))
	}
	return res, nil
}

func accountToModel(a domain.Account) AccountModel {
	return AccountModel{
		UID:          a.UID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		UID:          m.UID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func jobPostToModel(p domain.JobPost) JobPostModel {
	return JobPostModel{
		ID:                          p.ID,
		EmployerID:                  p.EmployerID,
		EmployerName:                p.EmployerName,
		JobTitle:                    p.JobTitle,
		PlaceOfWork:                 p.PlaceOfWork,
		City:                        p.Location.City,
		State:                       p.Location.State,
		District:                    p.Location.District,
		Pincode:                     p.Location.Pincode,
		Vacancies:                   p.Vacancies,
		SpecialWomanProvision:       p.SpecialWomanProvision,
		SpecialTransgenderProvision: p.SpecialTransgenderProvision,
		SpecialDisabilityProvision:  p.SpecialDisabilityProvision,
		Wage:                        p.Wage,
		HoursPerWeek:                p.HoursPerWeek,
		JobDuration:                 p.JobDuration,
		StartTime:                   p.StartTime,
		EndTime:                     p.EndTime,
		TypeOfWork:                  p.TypeOfWork,
		JobRoleDescription:          p.JobRoleDescription,
		CreatedAt:                   p.CreatedAt,
		UpdatedAt:                   p.UpdatedAt,
	}
}

func jobPostFromModel(m JobPostModel) domain.JobPost {
	return domain.JobPost{
		ID:           m.ID,
		EmployerID:   m.EmployerID,
		EmployerName: m.EmployerName,
		JobTitle:     m.JobTitle,
		PlaceOfWork:  m.PlaceOfWork,
		Location: domain.Location{
			City:     m.City,
			State:    m.State,
			District: m.District,
			Pincode:  m.Pincode,
		},
		Vacancies:                   m.Vacancies,
		SpecialWomanProvision:       m.SpecialWomanProvision,
		SpecialTransgenderProvision: m.SpecialTransgenderProvision,
		SpecialDisabilityProvision:  m.SpecialDisabilityProvision,
		Wage:                        m.Wage,
		HoursPerWeek:                m.HoursPerWeek,
		JobDuration:                 m.JobDuration,
		StartTime:                   m.StartTime,
		EndTime:                     m.EndTime,
		TypeOfWork:                  m.TypeOfWork,
		JobRoleDescription:          m.JobRoleDescription,
		CreatedAt:                   m.CreatedAt,
		UpdatedAt:                   m.UpdatedAt,
	}
}

func profileToModel(p domain.UserProfile) UserProfileModel {
	return UserProfileModel{
		UID:                p.UID,
		FirstName:          p.FirstName,
		MiddleName:         p.MiddleName,
		LastName:           p.LastName,
		PhoneNumber:        p.PhoneNumber,
		EmailAddress:       p.EmailAddress,
		ProfilePhoto:       p.ProfilePhoto,
		ResidentialAddress: p.ResidentialAddress,
		Resume:             p.Resume,
		Profession:         p.Profession,
		Gender:             p.Gender,
		Summary:            p.Summary,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func profileFromModel(m UserProfileModel) domain.UserProfile {
	return domain.UserProfile{
		UID:                m.UID,
		FirstName:          m.FirstName,
		MiddleName:         m.MiddleName,
		LastName:           m.LastName,
		PhoneNumber:        m.PhoneNumber,
		EmailAddress:       m.EmailAddress,
		ProfilePhoto:       m.ProfilePhoto,
		ResidentialAddress: m.ResidentialAddress,
		Resume:             m.Resume,
		Profession:         m.Profession,
		Gender:             m.Gender,
		Summary:            m.Summary,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func communityToModel(c domain.Community) CommunityModel {
	return CommunityModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func communityFromModel(m CommunityModel) domain.Community {
	return domain.Community{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func communityPostToModel(p domain.CommunityPost) (CommunityPostModel, error) {
	var meta datatypes.JSON
	if len(p.Metadata) > 0 {
		raw, err := json.Marshal(p.Metadata)
		if err != nil {
			return CommunityPostModel{}, fmt.Errorf("marshal post metadata: %w", err)
		}
		meta = datatypes.JSON(raw)
	}
	return CommunityPostModel{
		ID:          p.ID,
		CommunityID: p.CommunityID,
		UserID:      p.UserID,
		Title:       p.Title,
		Content:     p.Content,
		Metadata:    meta,
		CreatedAt:   p.CreatedAt,
	}, nil
}

func communityPostFromModel(m CommunityPostModel) domain.CommunityPost {
	var meta map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return domain.CommunityPost{
		ID:          m.ID,
		CommunityID: m.CommunityID,
		UserID:      m.UserID,
		Title:       m.Title,
		Content:     m.Content,
		Metadata:    meta,
		CreatedAt:   m.CreatedAt,
	}
}

func commentToModel(c domain.Comment) CommentModel {
	return CommentModel{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func commentFromModel(m CommentModel) domain.Comment {
	return domain.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

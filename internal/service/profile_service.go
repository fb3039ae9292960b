package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnector/internal/apperr"
	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

// ProfileInput carries the free-form profile fields. Skills arrive as a
// comma-separated string and are split and trimmed on the way in.
type ProfileInput struct {
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         string
	Bio            string
	GithubUsername string
	Social         domain.Social
}

// ExperienceInput carries one work-history entry. A nil To means the
// position is current.
type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

// EducationInput carries one education entry.
type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

// ProfileDetail is a profile joined with its owner's name and avatar.
type ProfileDetail struct {
	domain.Profile
	Owner domain.Owner `json:"owner"`
}

// ProfileService covers profile CRUD and the experience/education
// embedded-list mutations.
type ProfileService interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, input ProfileInput) (*domain.Profile, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*ProfileDetail, error)
	List(ctx context.Context) ([]ProfileDetail, error)
	AddExperience(ctx context.Context, userID primitive.ObjectID, input ExperienceInput) (*domain.Profile, error)
	RemoveExperience(ctx context.Context, userID, entryID primitive.ObjectID) (*domain.Profile, error)
	AddEducation(ctx context.Context, userID primitive.ObjectID, input EducationInput) (*domain.Profile, error)
	RemoveEducation(ctx context.Context, userID, entryID primitive.ObjectID) (*domain.Profile, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
	logger   *logrus.Logger
}

func NewProfileService(profiles repository.ProfileRepository, users repository.UserRepository, logger *logrus.Logger) ProfileService {
	return &profileService{
		profiles: profiles,
		users:    users,
		logger:   logger,
	}
}

func (s *profileService) Upsert(ctx context.Context, userID primitive.ObjectID, input ProfileInput) (*domain.Profile, error) {
	var fields []apperr.FieldError
	if strings.TrimSpace(input.Status) == "" {
		fields = append(fields, apperr.FieldError{Field: "status", Message: "status is required"})
	}
	skills := splitSkills(input.Skills)
	if len(skills) == 0 {
		fields = append(fields, apperr.FieldError{Field: "skills", Message: "skills are required"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Internal("load profile", err)
		}
		profile = &domain.Profile{
			User:       userID,
			Experience: []domain.Experience{},
			Education:  []domain.Education{},
			Date:       time.Now().UTC(),
		}
	}

	profile.Company = input.Company
	profile.Website = input.Website
	profile.Location = input.Location
	profile.Status = input.Status
	profile.Skills = skills
	profile.Bio = input.Bio
	profile.GithubUsername = input.GithubUsername
	profile.Social = input.Social

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, apperr.Internal("save profile", err)
	}
	s.logger.WithField("user", userID.Hex()).Info("profile saved")
	return profile, nil
}

func (s *profileService) GetByUser(ctx context.Context, userID primitive.ObjectID) (*ProfileDetail, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("no profile found for this user")
		}
		return nil, apperr.Internal("load profile", err)
	}
	return s.withOwner(ctx, profile)
}

func (s *profileService) List(ctx context.Context) ([]ProfileDetail, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list profiles", err)
	}

	details := make([]ProfileDetail, 0, len(profiles))
	for i := range profiles {
		detail, err := s.withOwner(ctx, &profiles[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (s *profileService) AddExperience(ctx context.Context, userID primitive.ObjectID, input ExperienceInput) (*domain.Profile, error) {
	var fields []apperr.FieldError
	if strings.TrimSpace(input.Title) == "" {
		fields = append(fields, apperr.FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(input.Company) == "" {
		fields = append(fields, apperr.FieldError{Field: "company", Message: "company is required"})
	}
	if input.From.IsZero() {
		fields = append(fields, apperr.FieldError{Field: "from", Message: "from date is required"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	return s.mutate(ctx, userID, func(profile *domain.Profile) error {
		entry := domain.Experience{
			ID:          primitive.NewObjectID(),
			Title:       input.Title,
			Company:     input.Company,
			Location:    input.Location,
			From:        input.From,
			To:          input.To,
			Current:     input.Current,
			Description: input.Description,
		}
		updated, err := addEntry(profile.Experience, entry, nil)
		if err != nil {
			return err
		}
		profile.Experience = updated
		return nil
	})
}

func (s *profileService) RemoveExperience(ctx context.Context, userID, entryID primitive.ObjectID) (*domain.Profile, error) {
	return s.mutate(ctx, userID, func(profile *domain.Profile) error {
		updated, ok, err := removeEntry(profile.Experience,
			func(e domain.Experience) bool { return e.ID == entryID },
			nil,
		)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("experience entry not found")
		}
		profile.Experience = updated
		return nil
	})
}

func (s *profileService) AddEducation(ctx context.Context, userID primitive.ObjectID, input EducationInput) (*domain.Profile, error) {
	var fields []apperr.FieldError
	if strings.TrimSpace(input.School) == "" {
		fields = append(fields, apperr.FieldError{Field: "school", Message: "school is required"})
	}
	if strings.TrimSpace(input.Degree) == "" {
		fields = append(fields, apperr.FieldError{Field: "degree", Message: "degree is required"})
	}
	if input.From.IsZero() {
		fields = append(fields, apperr.FieldError{Field: "from", Message: "from date is required"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	return s.mutate(ctx, userID, func(profile *domain.Profile) error {
		entry := domain.Education{
			ID:           primitive.NewObjectID(),
			School:       input.School,
			Degree:       input.Degree,
			FieldOfStudy: input.FieldOfStudy,
			From:         input.From,
			To:           input.To,
			Current:      input.Current,
			Description:  input.Description,
		}
		updated, err := addEntry(profile.Education, entry, nil)
		if err != nil {
			return err
		}
		profile.Education = updated
		return nil
	})
}

func (s *profileService) RemoveEducation(ctx context.Context, userID, entryID primitive.ObjectID) (*domain.Profile, error) {
	return s.mutate(ctx, userID, func(profile *domain.Profile) error {
		updated, ok, err := removeEntry(profile.Education,
			func(e domain.Education) bool { return e.ID == entryID },
			nil,
		)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("education entry not found")
		}
		profile.Education = updated
		return nil
	})
}

// mutate loads the caller's profile, applies fn and persists the whole
// document. Two concurrent mutations against the same profile can race
// (last write wins); see the concurrency notes in DESIGN.md.
func (s *profileService) mutate(ctx context.Context, userID primitive.ObjectID, fn func(*domain.Profile) error) (*domain.Profile, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("no profile found for this user")
		}
		return nil, apperr.Internal("load profile", err)
	}

	if err := fn(profile); err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, apperr.Internal("save profile", err)
	}
	return profile, nil
}

func (s *profileService) withOwner(ctx context.Context, profile *domain.Profile) (*ProfileDetail, error) {
	detail := &ProfileDetail{Profile: *profile}
	owner, err := s.users.GetByID(ctx, profile.User)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// orphaned profile, expose without owner detail
			return detail, nil
		}
		return nil, apperr.Internal("load profile owner", err)
	}
	detail.Owner = domain.Owner{ID: owner.ID, Name: owner.Name, Avatar: owner.Avatar}
	return detail, nil
}

func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

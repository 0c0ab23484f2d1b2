package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/schemas"
)

// Profile is the optional public extension of a user
type Profile struct {
	UserID     uuid.UUID         `json:"user_id"`
	Bio        string            `json:"bio,omitempty"`
	Location   string            `json:"location,omitempty"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	ResumeURL  string            `json:"resume_url,omitempty"`
	Social     SocialLinks       `json:"social"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ExperienceEntry is one position in a profile's work history
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	From        string `json:"from,omitempty"` // YYYY-MM or YYYY-MM-DD
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry is one school in a profile
type EducationEntry struct {
	School       string `json:"school"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
	Current      bool   `json:"current,omitempty"`
}

// SocialLinks holds optional profile links
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

// ProfileInput is the editable part of a profile, validated against the profile schema.
type ProfileInput struct {
	Bio        string            `json:"bio,omitempty"`
	Location   string            `json:"location,omitempty"`
	Skills     []string          `json:"skills,omitempty"`
	Experience []ExperienceEntry `json:"experience,omitempty"`
	Education  []EducationEntry  `json:"education,omitempty"`
	ResumeURL  string            `json:"resume_url,omitempty"`
	Social     *SocialLinks      `json:"social,omitempty"`
}

// ProfileService reads and edits user profiles.
type ProfileService struct {
	store Store
	now   func() time.Time
}

// NewProfileService creates a ProfileService backed by store
func NewProfileService(store Store) *ProfileService {
	return &ProfileService{store: store, now: time.Now}
}

// GetProfile returns the profile of userID. Profiles are public.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, storageError("get profile", err)
	}
	if profile == nil {
		return nil, &ErrNotFound{Resource: "profile", ID: userID}
	}
	return profile, nil
}

// UpsertProfile replaces the caller's own profile.
func (s *ProfileService) UpsertProfile(ctx context.Context, caller *User, input ProfileInput) (*Profile, error) {
	if err := Authorize(caller, Authenticated); err != nil {
		return nil, err
	}

	input.Skills = NormalizeSkills(input.Skills)
	if err := schemas.ValidateDocument(schemas.Profile, input); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) && len(schemaErr.Errors) > 0 {
			return nil, &ErrValidation{Field: schemaErr.Errors[0].Field, Message: schemaErr.Errors[0].Message}
		}
		return nil, err
	}

	profile := &Profile{
		UserID:     caller.ID,
		Bio:        input.Bio,
		Location:   input.Location,
		Skills:     input.Skills,
		Experience: input.Experience,
		Education:  input.Education,
		ResumeURL:  input.ResumeURL,
		UpdatedAt:  s.now().UTC(),
	}
	if input.Social != nil {
		profile.Social = *input.Social
	}
	if profile.Experience == nil {
		profile.Experience = []ExperienceEntry{}
	}
	if profile.Education == nil {
		profile.Education = []EducationEntry{}
	}

	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, storageError("upsert profile", err)
	}
	return profile, nil
}

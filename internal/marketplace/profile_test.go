package marketplace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Upsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seeker := f.seeker(t, "Sam")

	_, err := f.profiles.GetProfile(ctx, seeker.ID)
	assert.Equal(t, CodeNotFound, Code(err))

	profile, err := f.profiles.UpsertProfile(ctx, seeker, ProfileInput{
		Bio:    "Backend developer",
		Skills: []string{"Go, go", "Postgres"},
		Experience: []ExperienceEntry{
			{Title: "Engineer", Company: "Acme", From: "2020-01", Current: true},
		},
		Social: &SocialLinks{GitHub: "https://github.com/sam"},
	})
	require.NoError(t, err)
	assert.Equal(t, seeker.ID, profile.UserID)
	assert.Equal(t, []string{"Go", "Postgres"}, profile.Skills)
	assert.NotNil(t, profile.Education)

	got, err := f.profiles.GetProfile(ctx, seeker.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend developer", got.Bio)
	assert.Equal(t, "https://github.com/sam", got.Social.GitHub)

	replaced, err := f.profiles.UpsertProfile(ctx, seeker, ProfileInput{Bio: "Now in Lisbon"})
	require.NoError(t, err)
	assert.Empty(t, replaced.Experience)
	assert.Empty(t, replaced.Social.GitHub)
}

func TestProfileService_UpsertRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seeker := f.seeker(t, "Sam")

	tests := []struct {
		name  string
		input ProfileInput
	}{
		{"experience without company", ProfileInput{Experience: []ExperienceEntry{{Title: "Engineer"}}}},
		{"education without school", ProfileInput{Education: []EducationEntry{{Degree: "BSc"}}}},
		{"malformed date", ProfileInput{Experience: []ExperienceEntry{{Title: "Engineer", Company: "Acme", From: "last year"}}}},
		{"non-http resume url", ProfileInput{ResumeURL: "ftp://example.com/cv.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.profiles.UpsertProfile(ctx, seeker, tt.input)
			assert.Equal(t, CodeValidation, Code(err))
		})
	}

	_, err := f.profiles.UpsertProfile(ctx, nil, ProfileInput{})
	assert.Equal(t, CodeUnauthenticated, Code(err))

	_, err = f.profiles.GetProfile(ctx, uuid.New())
	assert.Equal(t, CodeNotFound, Code(err))
}

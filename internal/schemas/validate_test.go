package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument_ValidProfile(t *testing.T) {
	doc := map[string]any{
		"bio":      "Backend engineer",
		"location": "Berlin",
		"skills":   []string{"Go", "Postgres"},
		"experience": []map[string]any{
			{"title": "Engineer", "company": "Acme", "from": "2020-01", "current": true},
		},
		"social": map[string]any{"github": "https://github.com/example"},
	}

	assert.NoError(t, ValidateDocument(Profile, doc))
}

func TestValidateDocument_MissingRequiredField(t *testing.T) {
	doc := map[string]any{
		"experience": []map[string]any{
			{"title": "Engineer"},
		},
	}

	err := ValidateDocument(Profile, doc)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	require.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, validationErr.Errors[0].Field, "experience")
}

func TestValidateDocument_WrongType(t *testing.T) {
	doc := map[string]any{"skills": "Go, Postgres"}

	err := ValidateDocument(Profile, doc)
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestValidateDocument_BadURL(t *testing.T) {
	doc := map[string]any{"resume_url": "ftp://example.com/cv.pdf"}

	err := ValidateDocument(Profile, doc)
	require.Error(t, err)
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("missing.schema.json", map[string]any{})
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name":"ok"}`))

	err := ValidateJSONString(schema, `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

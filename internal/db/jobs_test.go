package db

import (
	"testing"

	"github.com/jonathan/jobboard/internal/marketplace"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "react", escapeLike("react"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `c\_sharp`, escapeLike("c_sharp"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestBuildJobWhere(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args, next := buildJobWhere(marketplace.JobQuery{})
		assert.Empty(t, where)
		assert.Empty(t, args)
		assert.Equal(t, 1, next)
	})

	t.Run("active only", func(t *testing.T) {
		where, args, next := buildJobWhere(marketplace.JobQuery{ActiveOnly: true})
		assert.Equal(t, "WHERE is_active", where)
		assert.Empty(t, args)
		assert.Equal(t, 1, next)
	})

	t.Run("all filters", func(t *testing.T) {
		where, args, next := buildJobWhere(marketplace.JobQuery{
			ActiveOnly: true,
			Filter: marketplace.JobFilter{
				Search:   "react",
				Location: "berlin",
				Company:  "acme_co",
				Type:     marketplace.JobTypeRemote,
			},
		})
		assert.Contains(t, where, "title ILIKE $1 OR description ILIKE $1")
		assert.Contains(t, where, "s.skill ILIKE $1")
		assert.Contains(t, where, "location ILIKE $2")
		assert.Contains(t, where, "company ILIKE $3")
		assert.Contains(t, where, "type = $4")
		assert.Equal(t, []any{"%react%", "%berlin%", `%acme\_co%`, "Remote"}, args)
		assert.Equal(t, 5, next)
	})
}

func TestTextArray(t *testing.T) {
	assert.Equal(t, []string{}, textArray(nil))
	assert.Equal(t, []string{"Go"}, textArray([]string{"Go"}))
}

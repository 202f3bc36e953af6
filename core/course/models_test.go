package course

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourse_MarshalJSON(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	c := Course{
		ID:        "kesirler",
		Title:     "Kesirler",
		Category:  CategoryGrade6,
		ImageURL:  "https://example.com/k.png",
		Sections:  []Section{},
		Content:   []Content{{ID: "content-1", Type: "youtube", EmbedURL: "https://www.youtube.com/embed/x"}},
		CreatedAt: at,
		UpdatedAt: at,
	}
	out, err := json.Marshal(c)
	require.NoError(t, err)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &got))
	for _, key := range []string{"id", "title", "description", "category", "imageUrl", "sections", "content", "createdAt", "updatedAt"} {
		assert.Contains(t, got, key)
	}
	assert.Len(t, got, 9)
	assert.JSONEq(t, `"2024-03-01T10:30:00Z"`, string(got["updatedAt"]))
	assert.Contains(t, string(got["content"]), `"embedUrl"`)
}

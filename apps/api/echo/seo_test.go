package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkanmatematik/platform/tests"
)

func TestSEO(t *testing.T) {
	app := setup(t)
	c := testutil.SampleCourse("kesirler")
	c.UpdatedAt = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	testutil.CreateCourse(t, app.courseRepo, c)

	t.Run("robots", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/robots.txt")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "User-agent: *\nAllow: /")
		assert.Contains(t, rec.Body.String(), "Sitemap: ")
		assert.Contains(t, rec.Body.String(), "/sitemap.xml")
	})

	t.Run("sitemap", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/sitemap.xml")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
		assert.Contains(t, body, "/sinif/lgs</loc>")
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
		assert.Contains(t, body, "/courses/kesirler</loc>")
		assert.Contains(t, body, "<lastmod>2024-03-01T10:30:00Z</lastmod>")
		assert.Contains(t, body, "<changefreq>daily</changefreq>")
		assert.Contains(t, body, "<priority>0.7</priority>")
	})
}

package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkanmatematik/platform/core/progress"
	"github.com/berkanmatematik/platform/core/user"
	"github.com/berkanmatematik/platform/tests"
)

func TestProgressAPI(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Öğrenci", "ogrenci@example.com", "g00dp4ss", user.RoleUser)
	other := app.createUser(t, "Diğer", "diger@example.com", "g00dp4ss", user.RoleUser)
	token := app.getToken(t, student)
	testutil.CreateCourse(t, app.courseRepo, testutil.SampleCourse("kesirler"))
	testutil.CreateCourse(t, app.courseRepo, testutil.SampleCourse("untouched"))

	toggle := func(t *testing.T, lessonID string) progress.CourseProgress {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/kesirler/progress/"+lessonID+"/toggle", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var p progress.CourseProgress
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		return p
	}

	runHTTPTests(t, app, []httpTest{
		{
			name:     "requires auth",
			method:   http.MethodGet,
			path:     "/v1/courses/kesirler/progress",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "fresh progress",
			method:   http.MethodGet,
			path:     "/v1/courses/kesirler/progress",
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{"courseId":"kesirler","completedLessons":[],"completed":0,"total":4,"percentage":0}`),
		},
		{
			name:     "unknown lesson",
			method:   http.MethodPost,
			path:     "/v1/courses/kesirler/progress/l9-9/toggle",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "Ders bulunamadı."}),
		},
		{
			name:     "unknown course",
			method:   http.MethodPost,
			path:     "/v1/courses/nope/progress/l1-1/toggle",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "Kurs bulunamadı."}),
		},
		{
			name:     "empty dashboard",
			method:   http.MethodGet,
			path:     "/v1/dashboard",
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
	})

	t.Run("toggle", func(t *testing.T) {
		p := toggle(t, "l2-1")
		assert.Equal(t, []string{"l2-1"}, p.CompletedLessons)
		assert.Equal(t, 25.0, p.Percentage)

		p = toggle(t, "l1-1")
		assert.Equal(t, []string{"l1-1", "l2-1"}, p.CompletedLessons) // lesson order
		assert.Equal(t, 2, p.Completed)
		assert.Equal(t, 50.0, p.Percentage)

		p = toggle(t, "l1-1")
		assert.Equal(t, []string{"l2-1"}, p.CompletedLessons)
	})

	t.Run("dashboard lists started courses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var entries []progress.DashboardEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "kesirler", entries[0].Course.ID)
		assert.Equal(t, progress.Summary{Completed: 1, Total: 4, Percentage: 25}, entries[0].Progress)
	})

	t.Run("progress is per user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/kesirler/progress", app.getToken(t, other))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"completed":0`)
	})
}

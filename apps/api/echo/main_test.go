package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"

	. "github.com/berkanmatematik/platform/apps/api/echo"
	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/progress"
	"github.com/berkanmatematik/platform/core/session"
	"github.com/berkanmatematik/platform/core/user"
	appfs "github.com/berkanmatematik/platform/fs"
	emailsvc "github.com/berkanmatematik/platform/services/email"
	inmemcache "github.com/berkanmatematik/platform/storage/cache/inmem"
	inmemdb "github.com/berkanmatematik/platform/storage/database/inmem"
	"github.com/berkanmatematik/platform/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	Server
	conf       *core.Config
	usrRepo    user.Repository
	courseRepo course.Repository
	usrSvc     user.Service
	mailSvc    *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)

	// set up DB & repos
	db := inmemdb.Open()
	app := &testApp{
		conf:       conf,
		usrRepo:    inmemdb.NewUserRepository(db),
		courseRepo: inmemdb.NewCourseRepository(db),
	}

	// set up validation & templates
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	core.ParseEmailTemplates(appfs.FS, conf, logger)

	// set up services
	app.mailSvc = emailsvc.NewConsoleServiceMock(conf, logger)
	app.usrSvc = user.NewService(app.usrRepo, app.mailSvc, conf)
	courseSvc := course.NewService(app.courseRepo)
	progressSvc := progress.NewService(inmemdb.NewProgressRepository(db), courseSvc)
	sessions := session.NewManager(inmemcache.NewSessionStore(), app.usrSvc, conf.Cache.SessionTTL, logger)
	t.Cleanup(sessions.Close)

	// set up server
	app.Server = NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     app.usrSvc,
		CourseSvc:   courseSvc,
		ProgressSvc: progressSvc,
		Sessions:    sessions,
		Validate:    validate,
		Translator:  translator,
	})
	return app
}

func (app *testApp) createUser(t *testing.T, name, email, pwd, role string) user.User {
	return testutil.CreateUser(t, app.usrRepo, name, email, pwd, role)
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, app.conf), app.conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

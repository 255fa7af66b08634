package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/adapt/apps/api/echo"
	"github.com/trezcool/adapt/core"
	"github.com/trezcool/adapt/core/lostfound"
	"github.com/trezcool/adapt/core/maildir"
	"github.com/trezcool/adapt/core/qna"
	"github.com/trezcool/adapt/core/sharedlib"
	"github.com/trezcool/adapt/core/user"
	"github.com/trezcool/adapt/realtime"
	emailsvc "github.com/trezcool/adapt/services/email"
	mediasvc "github.com/trezcool/adapt/services/media"
	inmemdb "github.com/trezcool/adapt/storage/database/inmem"
)

const tokenCookieName = "token"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	app     Server
	conf    *core.Config
	usrRepo user.Repository
	media   *mediasvc.DummyService
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		Debug:       true,
		TestMode:    true,
		Env:         "TEST",
		AppName:     "aDApt",
		SecretKey:   []byte("s3cr3t"),
		AdminSecret: "@dm1nS3cr3t",

		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmailAddr:      "noreply@adapt.test",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta: 1 * time.Hour,
			ShutdownTimeout:    5 * time.Second,
		},
		Cloudinary: core.CloudinaryConfig{
			MaxFileSize: 500 * 1024,
		},
	}

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)

	// set up services
	logger := nopLogger{}
	media := mediasvc.NewDummyService()
	hub := realtime.NewHub(logger, nil)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	qnaSvc := qna.NewService(inmemdb.NewQnARepository(db), media, hub)
	libSvc := sharedlib.NewService(inmemdb.NewSharedLibRepository(db), media)
	mailDirSvc := maildir.NewService(inmemdb.NewMailDirRepository(db))
	lnfSvc := lostfound.NewService(inmemdb.NewLostFoundRepository(db), media, hub)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	app := NewServer(
		ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			QnASvc:       qnaSvc,
			SharedLibSvc: libSvc,
			MailDirSvc:   mailDirSvc,
			LostFoundSvc: lnfSvc,
			Hub:          hub,
			Validate:     validate,
			Translator:   translator,
		},
	)

	return &testEnv{
		app:     app,
		conf:    conf,
		usrRepo: usrRepo,
		media:   media,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func (env *testEnv) createUser(t *testing.T, name, email, pwd, role string) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     core.CleanString(email, true /* lower */),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := GenerateToken(env.conf, GetUserClaims(env.conf, usr))
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
	extra    interface{}
}

// newAuthRequest builds a JSON request carrying the session token in the
// HTTP-only cookie, the way browsers send it.
func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newFormRequest builds a form-encoded request for endpoints that take an
// optional file part but got none.
func newFormRequest(method, path, token string, fields url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

// newUploadRequest builds a multipart request with a "file" part.
func newUploadRequest(
	t *testing.T, method, path, token string, fields map[string]string, filename string, content []byte,
) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(): %v", err)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile(): %v", err)
	}
	if _, err = part.Write(content); err != nil {
		t.Fatalf("part.Write(): %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("multipart.Writer.Close(): %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	// list order is not part of the contract
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(tt.wantData)),
			B:        difflib.SplitLines(rec.Body.String()),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Errorf("failed! data mismatch:\n%s", diff)
	}
}

// tokenCookie returns the session cookie set on the response, if any.
func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			return c
		}
	}
	return nil
}

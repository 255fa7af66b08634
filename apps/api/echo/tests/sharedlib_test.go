package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/adapt/core/sharedlib"
	"github.com/trezcool/adapt/core/user"
)

func Test_sharedLibApi_courseCodes(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	admin := env.createUser(t, "Boss", "boss@test.cd", "passwd", user.RoleAdmin)
	usrToken := env.getToken(t, usr)
	adminToken := env.getToken(t, admin)

	t.Run("list is public", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/sharedlib/course_codes")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte("[]")}, rec)
	})

	t.Run("create requires admin", func(t *testing.T) {
		body := marchallObj(t, sharedlib.NewCourseCode{Code: "EECS"})
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/add", usrToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)
	})

	var code sharedlib.CourseCode
	t.Run("created", func(t *testing.T) {
		body := marchallObj(t, sharedlib.NewCourseCode{Code: "EECS"})
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/add", adminToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &code); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if code.ID == "" || code.Code != "EECS" {
			t.Errorf("failed! course code = %+v", code)
		}
	})

	t.Run("duplicate match is case-insensitive", func(t *testing.T) {
		body := marchallObj(t, sharedlib.NewCourseCode{Code: "eecs"})
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/add", adminToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "category already exists"})}, rec)
	})

	t.Run("list round-trip", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/sharedlib/course_codes")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, code)}, rec)
	})

	t.Run("delete by name is case-insensitive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/eecs/remove", adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/eecs/remove", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "category not found"})}, rec)
	})
}

func Test_sharedLibApi_courses(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	admin := env.createUser(t, "Boss", "boss@test.cd", "passwd", user.RoleAdmin)
	token := env.getToken(t, usr)
	adminToken := env.getToken(t, admin)

	// seed a course code
	var code sharedlib.CourseCode
	req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/add", adminToken, marchallObj(t, sharedlib.NewCourseCode{Code: "EECS"}))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seeding course code: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &code); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}

	t.Run("unknown code rejected", func(t *testing.T) {
		body := marchallObj(t, sharedlib.NewCourse{Name: "Algorithms"})
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/MATH/courses/add", token, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "category not found"})}, rec)
	})

	var course sharedlib.Course
	t.Run("created under a lower-cased code", func(t *testing.T) {
		body := marchallObj(t, sharedlib.NewCourse{Name: "Algorithms"})
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/eecs/courses/add", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if course.CodeID != code.ID || course.Name != "Algorithms" {
			t.Errorf("failed! course = %+v", course)
		}
	})

	t.Run("duplicate match is case-insensitive", func(t *testing.T) {
		body := marchallObj(t, sharedlib.NewCourse{Name: "ALGORITHMS"})
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/EECS/courses/add", token, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "course already exists"})}, rec)
	})

	t.Run("listed by code ID, no session needed", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/sharedlib/course_codes/"+code.ID+"/courses")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, course)}, rec)
	})

	t.Run("delete under an unknown code is its own 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/MATH/courses/algorithms/remove", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "category not found"})}, rec)
	})

	t.Run("delete by names is case-insensitive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/EECS/courses/algorithms/remove", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/EECS/courses/algorithms/remove", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"})}, rec)
	})
}

func Test_sharedLibApi_files(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	admin := env.createUser(t, "Boss", "boss@test.cd", "passwd", user.RoleAdmin)
	token := env.getToken(t, usr)
	adminToken := env.getToken(t, admin)

	// seed a course code and a course
	req, rec := newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/add", adminToken, marchallObj(t, sharedlib.NewCourseCode{Code: "EECS"}))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seeding course code: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var course sharedlib.Course
	req, rec = newAuthRequest(http.MethodPost, "/api/sharedlib/course_codes/EECS/courses/add", token, marchallObj(t, sharedlib.NewCourse{Name: "Algorithms"}))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seeding course: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}

	base := "/api/sharedlib/course_codes/EECS/courses/" + course.ID + "/files"

	t.Run("file part is mandatory", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, base+"/add", token, map[string][]string{"title": {"Notes"}})
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"file": "this field is required"})}, rec)
	})

	var file sharedlib.CourseFile
	t.Run("uploaded", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, base+"/add", token, map[string]string{"title": "Notes"}, "notes.pdf", []byte("%PDF-1.4"))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &file); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if file.CourseID != course.ID || file.Title != "Notes" {
			t.Errorf("failed! file = %+v", file)
		}
		if file.File == nil || file.File.URL == "" || file.File.PublicID == "" {
			t.Fatalf("failed! attachment = %+v", file.File)
		}
		if env.media.Count() != 1 {
			t.Errorf("failed! media count = %d; want 1", env.media.Count())
		}
	})

	t.Run("listed by course ID, no session needed", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, base)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, file)}, rec)
	})

	t.Run("delete by title is case-insensitive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, base+"/notes/remove", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if env.media.Count() != 0 {
			t.Errorf("failed! media count = %d; want 0", env.media.Count())
		}

		req, rec = newAuthRequest(http.MethodPost, base+"/notes/remove", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "file not found"})}, rec)
	})
}

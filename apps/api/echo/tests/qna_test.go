package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/trezcool/adapt/core/qna"
	"github.com/trezcool/adapt/core/user"
)

func Test_qnaApi_categories(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	admin := env.createUser(t, "Boss", "boss@test.cd", "passwd", user.RoleAdmin)
	usrToken := env.getToken(t, usr)
	adminToken := env.getToken(t, admin)

	tests := []httpTest{
		{
			name: "list is public", method: http.MethodGet, path: "/api/qna/categories",
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
		{
			name: "create requires auth", method: http.MethodPost, path: "/api/qna/categories/add",
			body: marchallObj(t, qna.NewCategory{Name: "Exams"}), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "create requires admin", method: http.MethodPost, path: "/api/qna/categories/add",
			body: marchallObj(t, qna.NewCategory{Name: "Exams"}), token: usrToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "name required", method: http.MethodPost, path: "/api/qna/categories/add",
			body: []byte("{}"), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"category": "this field is required"}),
		},
		{
			name: "created", method: http.MethodPost, path: "/api/qna/categories/add",
			body: marchallObj(t, qna.NewCategory{Name: "Exams"}), token: adminToken,
			wantCode: http.StatusCreated,
		},
		{
			name: "duplicate rejected", method: http.MethodPost, path: "/api/qna/categories/add",
			body: marchallObj(t, qna.NewCategory{Name: "Exams"}), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "category already exists"}),
		},
		{
			name: "list round-trip", method: http.MethodGet, path: "/api/qna/categories",
			wantCode: http.StatusOK, wantData: marchallList(t, "Exams"),
		},
		{
			name: "delete requires admin", method: http.MethodDelete, path: "/api/qna/categories/Exams/remove",
			token: usrToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "deleted", method: http.MethodDelete, path: "/api/qna/categories/Exams/remove",
			token: adminToken, wantCode: http.StatusNoContent,
		},
		{
			name: "delete of absent is 404", method: http.MethodDelete, path: "/api/qna/categories/Exams/remove",
			token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "category not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var cat qna.Category
				if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if cat.ID == "" || cat.Name != "Exams" {
					t.Errorf("failed! category = %+v", cat)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_qnaApi_questions(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	admin := env.createUser(t, "Boss", "boss@test.cd", "passwd", user.RoleAdmin)
	token := env.getToken(t, usr)
	adminToken := env.getToken(t, admin)

	// seed a category
	req, rec := newAuthRequest(http.MethodPost, "/api/qna/categories/add", adminToken, marchallObj(t, qna.NewCategory{Name: "Exams"}))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seeding category: code = %v; body %s", rec.Code, rec.Body.String())
	}

	t.Run("unknown category rejected", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/api/qna/categories/Nope/questions", token, url.Values{"text": {"anyone has last year's paper?"}})
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "category not found"})}, rec)

		req, rec = newAuthRequest(http.MethodGet, "/api/qna/categories/Nope/questions", token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("text or file required", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/api/qna/categories/Exams/questions", token, url.Values{})
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"text": "this field is required"})}, rec)
	})

	var question qna.Question
	t.Run("posted and listed", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/api/qna/categories/Exams/questions", token, url.Values{"text": {"anyone has last year's paper?"}})
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &question); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if question.ID == "" || question.UserID != usr.ID {
			t.Errorf("failed! question = %+v", question)
		}

		// listing needs no session
		req, rec = newRequest(http.MethodGet, "/api/qna/categories/Exams/questions")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, question)}, rec)
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), 600*1024)
		req, rec := newUploadRequest(t, http.MethodPost, "/api/qna/categories/Exams/questions", token, nil, "paper.jpg", big)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusRequestEntityTooLarge, wantData: marchallObj(t, httpErr{Error: "file exceeds the maximum allowed size"})}, rec)
	})

	t.Run("unsupported format rejected", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/api/qna/categories/Exams/questions", token, nil, "paper.exe", []byte("MZ"))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "file type is not allowed"})}, rec)
	})

	var withFile qna.Question
	t.Run("upload within limits accepted", func(t *testing.T) {
		content := bytes.Repeat([]byte("a"), 100*1024)
		req, rec := newUploadRequest(t, http.MethodPost, "/api/qna/categories/Exams/questions", token, nil, "paper.jpg", content)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &withFile); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if withFile.File == nil || withFile.File.URL == "" || withFile.File.PublicID == "" {
			t.Fatalf("failed! attachment = %+v", withFile.File)
		}
		if env.media.Count() != 1 {
			t.Errorf("failed! media count = %d; want 1", env.media.Count())
		}
	})

	t.Run("delete removes the attachment too", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/qna/categories/Exams/questions/"+withFile.ID, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if env.media.Count() != 0 {
			t.Errorf("failed! media count = %d; want 0", env.media.Count())
		}

		// second delete finds nothing
		req, rec = newAuthRequest(http.MethodDelete, "/api/qna/categories/Exams/questions/"+withFile.ID, token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "question not found"})}, rec)
	})

	var answer qna.Answer
	t.Run("answers", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/api/qna/categories/Exams/answers", token, url.Values{
			"question_id": {"nope"}, "text": {"check the library portal"},
		})
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "question not found"})}, rec)

		req, rec = newFormRequest(http.MethodPost, "/api/qna/categories/Exams/answers", token, url.Values{
			"question_id": {question.ID}, "text": {"check the library portal"},
		})
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if answer.QuestionID != question.ID || answer.SenderID != usr.ID {
			t.Errorf("failed! answer = %+v", answer)
		}

		// unlike questions, the answer thread requires a session
		req, rec = newRequest(http.MethodGet, "/api/qna/categories/Exams/questions/"+question.ID+"/answers")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

		req, rec = newAuthRequest(http.MethodGet, "/api/qna/categories/Exams/questions/"+question.ID+"/answers", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, answer)}, rec)
	})

	t.Run("answer delete idempotence", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/qna/categories/Exams/answers/"+answer.ID, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodDelete, "/api/qna/categories/Exams/answers/"+answer.ID, token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "answer not found"})}, rec)
	})
}

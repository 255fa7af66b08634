package tests

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"testing"

	echoapi "github.com/trezcool/adapt/apps/api/echo"
	"github.com/trezcool/adapt/core/user"
	emailsvc "github.com/trezcool/adapt/services/email"
)

func Test_authApi_signup(t *testing.T) {
	env := setup(t)

	existing := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{"name": reqMsg, "email": reqMsg, "password": reqMsg}),
		},
		{
			name: "invalid email & short password", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{Name: "Jon", Email: "lol", Password: "12345"}),
			wantData: marchallObj(t, map[string]string{
				"email":    "email must be a valid email address",
				"password": "password must be at least 6 characters in length",
			}),
		},
		{
			name: "email taken", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "Jon", Email: existing.Email, Password: "passwd"}),
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "signed up", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{Name: "Jon Snow", Email: "jon@test.cd", Password: "passwd"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/signup"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var profile user.Profile
				if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if profile.ID == "" {
					t.Error("failed! empty profile ID")
				}
				if profile.Role != user.RoleUser {
					t.Errorf("failed! role = %q; want %q", profile.Role, user.RoleUser)
				}
				cookie := tokenCookie(rec)
				if cookie == nil {
					t.Fatal("failed! session cookie not set")
				}
				if !cookie.HttpOnly {
					t.Error("failed! session cookie must be HTTP-only")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
			if cookie := tokenCookie(rec); cookie != nil {
				t.Error("failed! session cookie set on error response")
			}
		})
	}
}

func Test_authApi_login(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	admin := env.createUser(t, "Boss", "boss@test.cd", "passwd", user.RoleAdmin)

	invalidCreds := marchallObj(t, httpErr{Error: "invalid credentials"})
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "who@test.cd", Password: "passwd"}),
			wantData: invalidCreds,
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: usr.Email, Password: "nope"}),
			wantData: invalidCreds,
		},
		{
			name: "admins must use the elevated path", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: admin.Email, Password: "passwd"}),
			wantData: invalidCreds,
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "JANE@test.cd", Password: "passwd"}),
			wantData: marchallObj(t, usr.Profile()),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			cookie := tokenCookie(rec)
			if tt.wantCode == http.StatusOK {
				if cookie == nil {
					t.Fatal("failed! session cookie not set")
				}
				if !cookie.HttpOnly {
					t.Error("failed! session cookie must be HTTP-only")
				}
				if cookie.SameSite != http.SameSiteLaxMode {
					t.Errorf("failed! SameSite = %v; want Lax", cookie.SameSite)
				}
			} else if cookie != nil {
				t.Error("failed! session cookie set on error response")
			}
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodPost, "/api/auth/logout")
	env.app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.SuccessResponse{Success: "logged out"})}
	checkCodeAndData(t, tt, rec)

	cookie := tokenCookie(rec)
	if cookie == nil {
		t.Fatal("failed! expiring session cookie not set")
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("failed! MaxAge = %d; want < 0", cookie.MaxAge)
	}
}

func Test_authApi_adminSignup(t *testing.T) {
	env := setup(t)

	newAdmin := user.NewUser{Name: "Boss", Email: "boss@test.cd", Password: "passwd"}
	tests := []httpTest{
		{
			name: "missing admin code", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.AdminSignupRequest{NewUser: newAdmin}),
			wantData: marchallObj(t, httpErr{Error: "invalid admin key"}),
		},
		{
			name: "wrong admin code", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.AdminSignupRequest{NewUser: newAdmin, Code: "letmein"}),
			wantData: marchallObj(t, httpErr{Error: "invalid admin key"}),
		},
		{
			name: "admin signed up", wantCode: http.StatusCreated,
			body: marchallObj(t, echoapi.AdminSignupRequest{NewUser: newAdmin, Code: env.conf.AdminSecret}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/adminsignup"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var profile user.Profile
				if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if profile.Role != user.RoleAdmin {
					t.Errorf("failed! role = %q; want %q", profile.Role, user.RoleAdmin)
				}
				if tokenCookie(rec) == nil {
					t.Error("failed! session cookie not set")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
			if tokenCookie(rec) != nil {
				t.Error("failed! session cookie set on error response")
			}
		})
	}
}

func Test_authApi_adminLogin(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	admin := env.createUser(t, "Boss", "boss@test.cd", "passwd", user.RoleAdmin)

	tests := []httpTest{
		{
			name: "wrong admin code", wantCode: http.StatusForbidden,
			body: marchallObj(t, echoapi.AdminLoginRequest{
				LoginRequest: echoapi.LoginRequest{Email: admin.Email, Password: "passwd"},
				Code:         "letmein",
			}),
			wantData: marchallObj(t, httpErr{Error: "invalid admin key"}),
		},
		{
			name: "regular user rejected", wantCode: http.StatusBadRequest,
			body: marchallObj(t, echoapi.AdminLoginRequest{
				LoginRequest: echoapi.LoginRequest{Email: usr.Email, Password: "passwd"},
				Code:         env.conf.AdminSecret,
			}),
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "admin logged in", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.AdminLoginRequest{
				LoginRequest: echoapi.LoginRequest{Email: admin.Email, Password: "passwd"},
				Code:         env.conf.AdminSecret,
			}),
			wantData: marchallObj(t, admin.Profile()),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/adminlogin"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK && tokenCookie(rec) == nil {
				t.Error("failed! session cookie not set")
			}
		})
	}
}

func Test_authApi_check(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "session valid", token: env.getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr.Profile())},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/auth/check"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			// the password hash must never cross the REST boundary
			if tt.wantCode == http.StatusOK {
				var raw map[string]interface{}
				if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				for _, k := range []string{"password", "password_hash"} {
					if _, ok := raw[k]; ok {
						t.Errorf("failed! %q leaked in profile", k)
					}
				}
			}
		})
	}
}

func Test_authApi_updateProfile(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	token := env.getToken(t, usr)

	body := marchallObj(t, user.UpdateProfile{Name: "Jane Doe"})
	req, rec := newAuthRequest(http.MethodPut, "/api/auth/profile", token, body)
	env.app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var profile user.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if profile.Name != "Jane Doe" {
		t.Errorf("failed! name = %q; want %q", profile.Name, "Jane Doe")
	}
	if profile.Email != usr.Email {
		t.Errorf("failed! email = %q; want %q", profile.Email, usr.Email)
	}
}

func Test_authApi_resetPassword(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "who@test.cd"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: usr.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: usr.Name, Address: usr.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
				} else if len(emailsvc.SentMessages) > 0 {
					t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
				}
			}
		})
	}
}

func Test_authApi_confirmPasswordReset(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane", "jane@test.cd", "passwd", user.RoleUser)
	validUID := user.EncodeUID(usr)
	validToken, err := user.MakeToken(env.conf, usr)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}

	tests := []httpTest{
		{
			name: "mismatched confirmation", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: "n3wpasswd", PasswordConfirm: "other"}),
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: "@@@", Password: "n3wpasswd", PasswordConfirm: "n3wpasswd"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "AAAA-sigsig", UID: validUID, Password: "n3wpasswd", PasswordConfirm: "n3wpasswd"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "password reset", wantCode: http.StatusOK,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: "n3wpasswd", PasswordConfirm: "n3wpasswd"}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the new password must now authenticate
	body := marchallObj(t, echoapi.LoginRequest{Email: usr.Email, Password: "n3wpasswd"})
	req, rec := newRequest(http.MethodPost, "/api/auth/login", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("failed! login with new password: code = %v; body %s", rec.Code, rec.Body.String())
	}
}

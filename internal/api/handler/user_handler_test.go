package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/folio-hub/portfolio-api/internal/api/handler"
	"github.com/folio-hub/portfolio-api/internal/api/middleware"
	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

type stubUserService struct {
	users     map[string]*domain.User
	patches   []domain.UserPatch
	deleteErr error
	queries   []string
}

func (s *stubUserService) GetUserInfo(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) ListUsers(context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUserService) SearchUsers(_ context.Context, query string) ([]*domain.User, error) {
	s.queries = append(s.queries, query)
	return []*domain.User{}, nil
}

func (s *stubUserService) UpdateUser(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	s.patches = append(s.patches, patch)
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if v, ok := patch.Description.Get(); ok {
		u.Description = v
	}
	return u, nil
}

func (s *stubUserService) GetProfileImageURL(_ context.Context, id string) (string, error) {
	u, ok := s.users[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	if u.ProfileImageURL == "" {
		return "", domain.ErrProfileImageNotFound
	}
	return u.ProfileImageURL, nil
}

func (s *stubUserService) DeleteUserCascade(context.Context, string) error {
	return s.deleteErr
}

type stubImageService struct {
	err     error
	uploads []domain.ImageUpload
}

func (s *stubImageService) Ingest(_ context.Context, userID string, upload domain.ImageUpload) (*domain.ProfileImage, error) {
	s.uploads = append(s.uploads, upload)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ProfileImage{URL: "http://localhost:8080/profileImg/" + userID + ".png"}, nil
}

func newUserFixture() (*stubUserService, *stubImageService, *stubAuthService) {
	users := &stubUserService{users: map[string]*domain.User{
		"u1": {ID: "u1", Name: "Kim", Email: "kim@example.com", Description: "before"},
	}}
	return users, &stubImageService{}, &stubAuthService{}
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func TestUserHandler_Current(t *testing.T) {
	users, images, auth := newUserFixture()
	h := handler.NewUserHandler(users, auth, images, 1<<20)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/user/current", nil), rec)
	c.Set(middleware.ContextUserID, "u1")
	serve(e, c, h.Current)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/user/current", nil), rec)
	serve(e, c, h.Current)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rec.Code)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	users, images, auth := newUserFixture()
	h := handler.NewUserHandler(users, auth, images, 1<<20)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := withParam(e.NewContext(httptest.NewRequest(http.MethodGet, "/users/ghost", nil), rec), "id", "ghost")
	serve(e, c, h.Get)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_Update_PartialBody(t *testing.T) {
	users, images, auth := newUserFixture()
	h := handler.NewUserHandler(users, auth, images, 1<<20)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := withParam(e.NewContext(jsonRequest(http.MethodPut, "/users/u1", `{"description":"hello","name":null}`), rec), "id", "u1")
	serve(e, c, h.Update)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(users.patches) != 1 {
		t.Fatalf("expected one patch, got %d", len(users.patches))
	}
	p := users.patches[0]
	if p.Name.IsSet() || p.Email.IsSet() {
		t.Fatalf("null and absent keys must stay unset: %+v", p)
	}
	if v, ok := p.Description.Get(); !ok || v != "hello" {
		t.Fatalf("description not set: %+v", p)
	}

	var user map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &user)
	if user["name"] != "Kim" || user["description"] != "hello" {
		t.Fatalf("unexpected user: %v", user)
	}
}

func TestUserHandler_Search_Unescapes(t *testing.T) {
	users, images, auth := newUserFixture()
	h := handler.NewUserHandler(users, auth, images, 1<<20)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := withParam(e.NewContext(httptest.NewRequest(http.MethodGet, "/userlist/search/kim%20park", nil), rec), "name", "kim%20park")
	serve(e, c, h.Search)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(users.queries) != 1 || users.queries[0] != "kim park" {
		t.Fatalf("unexpected queries %v", users.queries)
	}
	if rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty json array, got %q", rec.Body.String())
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	users, images, auth := newUserFixture()
	auth.changePasswordFn = func(_ context.Context, userID, current, next string) (domain.PasswordChange, error) {
		if userID != "u1" || current != "old" || next != "new" {
			t.Fatalf("unexpected args: %s %s %s", userID, current, next)
		}
		return domain.PasswordChange{Changed: false}, nil
	}
	h := handler.NewUserHandler(users, auth, images, 1<<20)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := withParam(e.NewContext(jsonRequest(http.MethodPut, "/users/password/u1", `{"pw":"old","newPw":"new"}`), rec), "id", "u1")
	serve(e, c, h.ChangePassword)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["changed"] != false {
		t.Fatalf("expected changed=false, got %v", resp)
	}
}

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(data)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPut, "/users/profileImg/u1", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUserHandler_UploadProfileImage(t *testing.T) {
	users, images, auth := newUserFixture()
	h := handler.NewUserHandler(users, auth, images, 1<<20)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := withParam(e.NewContext(multipartRequest(t, "img", "me.png", []byte("png-bytes")), rec), "id", "u1")
	serve(e, c, h.UploadProfileImage)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(images.uploads) != 1 || images.uploads[0].Filename != "me.png" || string(images.uploads[0].Data) != "png-bytes" {
		t.Fatalf("unexpected uploads: %+v", images.uploads)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["url"] != "http://localhost:8080/profileImg/u1.png" {
		t.Fatalf("unexpected url: %v", resp)
	}
}

func TestUserHandler_UploadProfileImage_Failures(t *testing.T) {
	cases := []struct {
		name     string
		field    string
		data     []byte
		limit    int64
		ingest   error
		wantCode int
	}{
		{"missing file", "other", []byte("x"), 1 << 20, nil, http.StatusBadRequest},
		{"too large", "img", bytes.Repeat([]byte("x"), 64), 16, nil, http.StatusRequestEntityTooLarge},
		{"undecodable", "img", []byte("x"), 1 << 20, domain.ErrImageDecode, http.StatusUnprocessableEntity},
		{"write failed", "img", []byte("x"), 1 << 20, domain.ErrImageWrite, http.StatusInternalServerError},
		{"in progress", "img", []byte("x"), 1 << 20, domain.ErrUploadInProgress, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users, images, auth := newUserFixture()
			images.err = tc.ingest
			h := handler.NewUserHandler(users, auth, images, tc.limit)
			e := newTestEcho()

			rec := httptest.NewRecorder()
			c := withParam(e.NewContext(multipartRequest(t, tc.field, "a.png", tc.data), rec), "id", "u1")
			serve(e, c, h.UploadProfileImage)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUserHandler_GetProfileImageURL(t *testing.T) {
	users, images, auth := newUserFixture()
	h := handler.NewUserHandler(users, auth, images, 1<<20)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	c := withParam(e.NewContext(httptest.NewRequest(http.MethodGet, "/users/profileImg/u1", nil), rec), "id", "u1")
	serve(e, c, h.GetProfileImageURL)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before upload, got %d", rec.Code)
	}

	users.users["u1"].ProfileImageURL = "http://localhost:8080/profileImg/u1.jpg"
	rec = httptest.NewRecorder()
	c = withParam(e.NewContext(httptest.NewRequest(http.MethodGet, "/users/profileImg/u1", nil), rec), "id", "u1")
	serve(e, c, h.GetProfileImageURL)
	if rec.Code != http.StatusOK || rec.Body.String() != "http://localhost:8080/profileImg/u1.jpg" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestUserHandler_Delete(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"ok", nil, http.StatusOK},
		{"missing", domain.ErrUserNotFound, http.StatusNotFound},
		{"partial", &domain.PartialFailureError{UserID: "u1", Deleted: []string{"user"}, Failed: map[string]error{"projects": errors.New("timeout")}}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users, images, auth := newUserFixture()
			users.deleteErr = tc.err
			h := handler.NewUserHandler(users, auth, images, 1<<20)
			e := newTestEcho()

			rec := httptest.NewRecorder()
			c := withParam(e.NewContext(httptest.NewRequest(http.MethodDelete, "/users/u1", nil), rec), "id", "u1")
			serve(e, c, h.Delete)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

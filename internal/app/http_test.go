package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolio/api/internal/config"
)

func newTestServer(t *testing.T) (*HTTPServer, *fakeStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}
	fake := newFakeStore()
	svc := &Service{
		cfg: config.Config{
			AdminPasswordHash: string(hash),
			SessionSecret:     "test-secret",
			SessionTTL:        time.Hour,
		},
		store: fake,
	}
	return NewHTTPServer(svc, "*"), fake
}

func doJSON(t *testing.T, server *HTTPServer, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return decoded
}

func login(t *testing.T, server *HTTPServer) string {
	t.Helper()
	recorder := doJSON(t, server, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "letmein"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("login status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	token, _ := decodeResponse(t, recorder)["token"].(string)
	if token == "" {
		t.Fatal("expected login response to include a token")
	}
	return token
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/api/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
}

func TestListProjectsEmpty(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/api/projects", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	decoded := decodeResponse(t, recorder)
	if _, ok := decoded["projects"]; !ok {
		t.Fatalf("expected projects key in %v", decoded)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/api/projects/missing", "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
	if decodeResponse(t, recorder)["code"] != "NOT_FOUND" {
		t.Fatalf("body = %s", recorder.Body.String())
	}
}

func TestCreateProjectRequiresAuth(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doJSON(t, server, http.MethodPost, "/api/projects", "", map[string]string{"title": "Nope"})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestAdminLoginWrongPassword(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doJSON(t, server, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "wrong"})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestCreateAndFetchProject(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server)

	recorder := doJSON(t, server, http.MethodPost, "/api/projects", token, map[string]any{
		"title":       "Line Follower Robot",
		"description": "A robot that follows lines.",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	decoded := decodeResponse(t, recorder)
	if decoded["success"] != true {
		t.Fatalf("expected success envelope, got %v", decoded)
	}
	data, _ := decoded["data"].(map[string]any)
	if data["slug"] != "line-follower-robot" {
		t.Fatalf("slug = %v", data["slug"])
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/projects/line-follower-robot", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("get status = %d", recorder.Code)
	}
}

func TestUpdateProjectBumpsVersion(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server)

	recorder := doJSON(t, server, http.MethodPost, "/api/projects", token, map[string]any{"title": "Versioned"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create status = %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodPut, "/api/projects/versioned", token, map[string]any{
		"description":     "v2",
		"content_version": 41,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	data, _ := decodeResponse(t, recorder)["data"].(map[string]any)
	if data["content_version"] != float64(2) {
		t.Fatalf("content_version = %v, want 2", data["content_version"])
	}
}

func TestUpdateProjectClearsOmittedFields(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server)

	recorder := doJSON(t, server, http.MethodPost, "/api/projects", token, map[string]any{
		"title":        "Cleared",
		"technologies": []string{"Go", "Postgres"},
		"sections":     map[string]string{"objective": "orig"},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create status = %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodPut, "/api/projects/cleared", token, map[string]any{
		"description": "only field",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	data, _ := decodeResponse(t, recorder)["data"].(map[string]any)
	if techs, _ := data["technologies"].([]any); len(techs) != 0 {
		t.Fatalf("technologies = %v, want empty after omission", techs)
	}
	if sections, _ := data["sections"].(map[string]any); len(sections) != 0 {
		t.Fatalf("sections = %v, want cleared after omission", sections)
	}
	if data["show_toc"] != true {
		t.Fatalf("show_toc = %v, want default true", data["show_toc"])
	}
	if data["description"] != "only field" {
		t.Fatalf("description = %v", data["description"])
	}
}

func TestUpdateProjectRequiresAuth(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doJSON(t, server, http.MethodPut, "/api/projects/anything", "", map[string]any{"description": "x"})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestProjectPageEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server)

	recorder := doJSON(t, server, http.MethodPost, "/api/projects", token, map[string]any{
		"title": "Paged",
		"sections": map[string]string{
			"objective": "Some **bold** text.",
		},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create status = %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/projects/paged/page", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("page status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	decoded := decodeResponse(t, recorder)
	sections, _ := decoded["sections"].([]any)
	if len(sections) == 0 {
		t.Fatalf("expected sections in page payload: %v", decoded)
	}
	if _, ok := decoded["toc"]; !ok {
		t.Fatal("expected toc in page payload")
	}
}

func TestSectionsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/api/sections", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	decoded := decodeResponse(t, recorder)
	sections, _ := decoded["sections"].([]any)
	if len(sections) != 9 {
		t.Fatalf("expected 9 registered sections, got %d", len(sections))
	}
}

func TestAdminSessionEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/admin/session", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if decodeResponse(t, recorder)["authenticated"] == true {
		t.Fatal("expected unauthenticated session without token")
	}

	token := login(t, server)
	recorder = doJSON(t, server, http.MethodGet, "/api/admin/session", token, nil)
	if decodeResponse(t, recorder)["authenticated"] != true {
		t.Fatalf("expected authenticated session, body = %s", recorder.Body.String())
	}
}

func TestCategoriesAndTechnologies(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/categories", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("categories status = %d", recorder.Code)
	}
	recorder = doJSON(t, server, http.MethodGet, "/api/technologies", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("technologies status = %d", recorder.Code)
	}
}

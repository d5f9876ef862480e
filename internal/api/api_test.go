package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bcnelson/yatube/internal/api"
	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/config"
	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/storage/memory"
	"github.com/bcnelson/yatube/internal/storage/storagetest"
)

// testServer creates a test server with in-memory storage
type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()

	sessions, err := auth.NewSessionManager(bytes.Repeat([]byte("k"), auth.KeySize), time.Hour, false)
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}

	// OIDC disabled for tests
	handler := api.NewRouter(
		service.NewPostService(store),
		service.NewAccountService(store),
		sessions,
		config.SecurityConfig{},
		nil,
	)

	return &testServer{
		handler: handler,
		store:   store,
	}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

type pageResponse struct {
	Count       int            `json:"count"`
	NumPages    int            `json:"num_pages"`
	Page        int            `json:"page"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
	Results     []*domain.Post `json:"results"`
}

func decodePage(t *testing.T, rr *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	var page pageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to decode page: %v (%s)", err, rr.Body.String())
	}
	return page
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/health")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("Expected X-Frame-Options DENY, got %q", got)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected X-Content-Type-Options nosniff, got %q", got)
	}
}

func TestPostsPagination(t *testing.T) {
	ts := newTestServer(t)
	alice := storagetest.NewUser(t, ts.store, "alice")
	for i := range 25 {
		storagetest.NewPost(t, ts.store, alice, nil, fmt.Sprintf("post %d", i), time.Duration(i)*time.Minute)
	}

	tests := []struct {
		query    string
		page     int
		size     int
		hasNext  bool
		hasPrev  bool
		firstTxt string
	}{
		{"", 1, 10, true, false, "post 24"},
		{"?page=2", 2, 10, true, true, "post 14"},
		{"?page=3", 3, 5, false, true, "post 4"},
		{"?page=0", 1, 10, true, false, "post 24"},
		{"?page=x", 1, 10, true, false, "post 24"},
		{"?page=42", 3, 5, false, true, "post 4"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := ts.request("GET", "/api/v1/posts"+tt.query)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}

			page := decodePage(t, rr)
			if page.Count != 25 || page.NumPages != 3 {
				t.Errorf("Expected count 25 over 3 pages, got %d over %d", page.Count, page.NumPages)
			}
			if page.Page != tt.page {
				t.Errorf("Expected page %d, got %d", tt.page, page.Page)
			}
			if len(page.Results) != tt.size {
				t.Fatalf("Expected %d results, got %d", tt.size, len(page.Results))
			}
			if page.HasNext != tt.hasNext || page.HasPrevious != tt.hasPrev {
				t.Errorf("Expected has_next=%v has_previous=%v, got %v %v", tt.hasNext, tt.hasPrev, page.HasNext, page.HasPrevious)
			}
			if page.Results[0].Text != tt.firstTxt {
				t.Errorf("Expected first post %q, got %q", tt.firstTxt, page.Results[0].Text)
			}
			if page.Results[0].AuthorUsername != "alice" {
				t.Errorf("Expected author alice, got %q", page.Results[0].AuthorUsername)
			}
		})
	}
}

func TestEmptyPostList(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/api/v1/posts")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"results":[]`)) {
		t.Errorf("Expected empty results array, got %s", rr.Body.String())
	}

	page := decodePage(t, rr)
	if page.Count != 0 || page.NumPages != 1 || page.Page != 1 {
		t.Errorf("Unexpected empty page metadata: %+v", page)
	}
}

func TestGetPost(t *testing.T) {
	ts := newTestServer(t)
	alice := storagetest.NewUser(t, ts.store, "alice")
	cats := storagetest.NewGroup(t, ts.store, "cats")
	p := storagetest.NewPost(t, ts.store, alice, cats, "meow", time.Minute)

	rr := ts.request("GET", "/api/v1/posts/"+p.ID)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp struct {
		ID              string       `json:"id"`
		Text            string       `json:"text"`
		GroupSlug       string       `json:"group_slug"`
		Author          *domain.User `json:"author_profile"`
		AuthorPostCount int          `json:"author_post_count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode post: %v", err)
	}
	if resp.ID != p.ID || resp.Text != "meow" || resp.GroupSlug != "cats" {
		t.Errorf("Unexpected post: %+v", resp)
	}
	if resp.Author == nil || resp.Author.Username != "alice" || resp.AuthorPostCount != 1 {
		t.Errorf("Unexpected author data: %+v", resp)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("example.com")) {
		t.Errorf("Author email leaked: %s", rr.Body.String())
	}
}

func TestNotFoundErrors(t *testing.T) {
	ts := newTestServer(t)
	storagetest.NewUser(t, ts.store, "alice")

	paths := []string{
		"/api/v1/posts/00000000-0000-0000-0000-000000000000",
		"/api/v1/posts/garbage",
		"/api/v1/groups/nope/posts",
		"/api/v1/profiles/nobody/posts",
		"/api/v1/nothing",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rr := ts.request("GET", path)
			if rr.Code != http.StatusNotFound {
				t.Fatalf("Expected status 404, got %d", rr.Code)
			}

			var apiErr domain.APIError
			if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
				t.Fatalf("Failed to decode error: %v (%s)", err, rr.Body.String())
			}
			if apiErr.Code != http.StatusNotFound || apiErr.Message == "" {
				t.Errorf("Unexpected error body: %+v", apiErr)
			}
		})
	}
}

func TestGroupEndpoints(t *testing.T) {
	ts := newTestServer(t)
	alice := storagetest.NewUser(t, ts.store, "alice")
	cats := storagetest.NewGroup(t, ts.store, "cats")
	storagetest.NewGroup(t, ts.store, "birds")
	storagetest.NewPost(t, ts.store, alice, cats, "meow", time.Minute)
	storagetest.NewPost(t, ts.store, alice, nil, "plain", 2*time.Minute)

	rr := ts.request("GET", "/api/v1/groups")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var groups []*domain.Group
	if err := json.Unmarshal(rr.Body.Bytes(), &groups); err != nil {
		t.Fatalf("Failed to decode groups: %v", err)
	}
	if len(groups) != 2 || groups[0].Slug != "birds" || groups[1].Slug != "cats" {
		t.Errorf("Unexpected groups: %s", rr.Body.String())
	}

	rr = ts.request("GET", "/api/v1/groups/cats/posts")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	page := decodePage(t, rr)
	if page.Count != 1 || page.Results[0].Text != "meow" {
		t.Errorf("Unexpected group page: %+v", page)
	}
}

func TestProfileEndpoint(t *testing.T) {
	ts := newTestServer(t)
	alice := storagetest.NewUser(t, ts.store, "alice")
	bob := storagetest.NewUser(t, ts.store, "bob")
	storagetest.NewPost(t, ts.store, alice, nil, "from alice", time.Minute)
	storagetest.NewPost(t, ts.store, bob, nil, "from bob", 2*time.Minute)

	rr := ts.request("GET", "/api/v1/profiles/alice/posts")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	page := decodePage(t, rr)
	if page.Count != 1 || page.Results[0].Text != "from alice" {
		t.Errorf("Unexpected profile page: %+v", page)
	}
}

func TestWebMounted(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/create/")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rr.Code)
	}

	rr = ts.request("GET", "/definitely/missing/")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestConditionalGet(t *testing.T) {
	ts := newTestServer(t)
	alice := storagetest.NewUser(t, ts.store, "alice")
	p := storagetest.NewPost(t, ts.store, alice, nil, "cache me", time.Minute)

	rr := ts.request("GET", "/api/v1/posts/"+p.ID)
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected an ETag header")
	}

	req := httptest.NewRequest("GET", "/api/v1/posts/"+p.ID, nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotModified {
		t.Errorf("Expected status 304, got %d", rr.Code)
	}
}

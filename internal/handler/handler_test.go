package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/unirank/rankbrowser/internal/cache"
	"github.com/unirank/rankbrowser/internal/repository"
	"github.com/unirank/rankbrowser/internal/response"
	"github.com/unirank/rankbrowser/internal/service"
	"github.com/unirank/rankbrowser/internal/state"
	"github.com/unirank/rankbrowser/internal/validator"
	"github.com/unirank/rankbrowser/internal/view"
)

const overallFixture = `[
	{"US Rank":"#1","University Name":"Princeton University","大学名称":"普林斯顿大学","School Website":"www.princeton.edu"},
	{"US Rank":"#2","University Name":"MIT","大学名称":"麻省理工学院"}
]`

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// backend is a scripted ranking API that counts requests per path.
type backend struct {
	mu     sync.Mutex
	hits   map[string]int
	routes map[string]http.HandlerFunc
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.EscapedPath()]++
	h, ok := b.routes[r.URL.EscapedPath()]
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h(w, r)
}

func (b *backend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[path] = h
}

func (b *backend) json(path, body string) {
	b.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) fail(path string, status int) {
	b.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

type testApp struct {
	engine  *gin.Engine
	backend *backend
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	b := &backend{hits: map[string]int{}, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	repo := repository.NewRankingRepository(srv.URL, 5*time.Second)
	rankings := service.NewRankingService(repo, state.NewUniversities(), zerolog.Nop())
	subjects := service.NewSubjectService(repo, cache.NewMemory(time.Minute), service.SubjectOptions{Concurrency: 2}, zerolog.Nop())
	pages := NewPageHandler(rankings, subjects, zerolog.Nop())
	api := NewAPIHandler(rankings, subjects)

	tmpl, err := view.LoadTemplates()
	require.NoError(t, err)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.SetHTMLTemplate(tmpl)
	r.GET("/", pages.Index)
	r.GET("/search", pages.Search)
	r.GET("/reset", pages.Reset)
	r.GET("/universities/:name", pages.University)
	r.POST("/subject-search", pages.SubjectSearch)
	r.GET("/health", api.Health)
	r.GET("/api/v1/universities", api.ListUniversities)
	r.POST("/api/v1/universities/search", api.SearchUniversities)
	r.POST("/api/v1/universities/reset", api.ResetUniversities)
	r.GET("/api/v1/universities/:name", api.GetUniversity)
	r.GET("/api/v1/subjects", api.ListSubjects)
	r.GET("/api/v1/subjects/:subject/specialties", api.ListSpecialties)
	r.POST("/api/v1/subjects/search", api.SearchSubjects)

	return &testApp{engine: r, backend: b}
}

func (a *testApp) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, nil, "")
}

func (a *testApp) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (a *testApp) postJSON(target, body string) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, strings.NewReader(body), "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

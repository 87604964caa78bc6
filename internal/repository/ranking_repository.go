package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/unirank/rankbrowser/internal/model"
)

const (
	userAgent    = "rankbrowser/1.0"
	maxErrorBody = 4 << 10
)

// StatusError reports a non-2xx answer from the ranking API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the API's {"error": ...} text when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the ranking API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// RankingRepository reads ranking data from the upstream ranking API.
// Every call is a single attempt; failures are returned to the caller.
type RankingRepository struct {
	baseURL string
	client  *http.Client
}

// NewRankingRepository creates a repository for the API at baseURL.
func NewRankingRepository(baseURL string, timeout time.Duration) *RankingRepository {
	return &RankingRepository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// OverallRanking fetches the full university list.
func (r *RankingRepository) OverallRanking(ctx context.Context) ([]model.University, error) {
	var list []model.University
	if err := r.get(ctx, "/api/overall-ranking", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UniversitySubjects fetches a university's subject and specialty rankings.
func (r *RankingRepository) UniversitySubjects(ctx context.Context, universityName string) ([]model.SubjectRanking, error) {
	var pairs []subjectPair
	if err := r.get(ctx, "/api/university-subjects/"+url.PathEscape(universityName), &pairs); err != nil {
		return nil, err
	}
	rankings := make([]model.SubjectRanking, len(pairs))
	for i, p := range pairs {
		rankings[i] = p.ranking
	}
	return rankings, nil
}

// Search posts the criteria; empty criteria fields are never transmitted.
func (r *RankingRepository) Search(ctx context.Context, criteria model.SearchCriteria) ([]model.University, error) {
	var list []model.University
	if err := r.post(ctx, "/api/search", criteria, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SubjectsAndSpecialties fetches the subject/specialty catalog.
func (r *RankingRepository) SubjectsAndSpecialties(ctx context.Context) (model.Catalog, error) {
	catalog := model.Catalog{}
	if err := r.get(ctx, "/api/subjects-and-specialties", &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// SearchSubjects lists universities ranked in a subject or specialty.
func (r *RankingRepository) SearchSubjects(ctx context.Context, req model.SubjectSearchRequest) ([]model.SubjectSearchResult, error) {
	var results []model.SubjectSearchResult
	if err := r.post(ctx, "/api/search-subjects", req, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// USNewsRanking resolves a university's US News rank. An empty string means
// the API answered without a ranking.
func (r *RankingRepository) USNewsRanking(ctx context.Context, universityName string) (string, error) {
	var out struct {
		Ranking model.Text `json:"ranking"`
	}
	body := map[string]string{"university_name": universityName}
	if err := r.post(ctx, "/api/search-us-news-ranking", body, &out); err != nil {
		return "", err
	}
	return out.Ranking.String(), nil
}

// ────────────────────────────────────────────────────────────────────────────
// Transport
// ────────────────────────────────────────────────────────────────────────────

func (r *RankingRepository) get(ctx context.Context, path string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return r.do(req, path, dst)
}

func (r *RankingRepository) post(ctx context.Context, path string, body, dst interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return r.do(req, path, dst)
}

func (r *RankingRepository) do(req *http.Request, path string, dst interface{}) error {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: req.Method, Path: path, StatusCode: resp.StatusCode}
		var apiErr struct {
			Error string `json:"error"`
		}
		if raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); json.Unmarshal(raw, &apiErr) == nil {
			se.Message = apiErr.Error
		}
		return se
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// subjectPair decodes the API's [subjectName, subjectData] tuple encoding.
type subjectPair struct {
	ranking model.SubjectRanking
}

func (p *subjectPair) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("subject entry: want [name, data], got %d elements", len(pair))
	}

	var data struct {
		OverallRank model.Text `json:"综合排名"`
		Specialties []struct {
			Name model.Text `json:"专业名称"`
			Rank model.Text `json:"专业排名"`
		} `json:"专业"`
	}
	if err := json.Unmarshal(pair[0], &p.ranking.Subject); err != nil {
		return fmt.Errorf("subject name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &data); err != nil {
		return fmt.Errorf("subject %q: %w", p.ranking.Subject, err)
	}

	p.ranking.OverallRank = data.OverallRank
	p.ranking.Specialties = make([]model.Specialty, len(data.Specialties))
	for i, s := range data.Specialties {
		p.ranking.Specialties[i] = model.Specialty{Name: s.Name, Rank: s.Rank}
	}
	return nil
}

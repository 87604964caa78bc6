package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unirank/rankbrowser/internal/cache"
	"github.com/unirank/rankbrowser/internal/model"
)

func newSubjectService(t *testing.T, concurrency int) (*backend, *SubjectService) {
	t.Helper()
	b, repo := newBackend(t)
	opts := SubjectOptions{CatalogTTL: time.Minute, RankTTL: time.Minute, Concurrency: concurrency}
	return b, NewSubjectService(repo, cache.NewMemory(time.Minute), opts, nopLogger())
}

func usNewsHandler(ranks map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		rank, ok := ranks[body["university_name"]]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = fmt.Fprintf(w, `{"ranking":%q}`, rank)
	}
}

func TestCatalog_IsCached(t *testing.T) {
	b, svc := newSubjectService(t, 1)
	b.json("/api/subjects-and-specialties", `{"Law":[],"Engineering":["Civil","Mechanical"]}`)

	catalog, err := svc.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Law"}, catalog.Subjects())

	_, err = svc.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, b.count("/api/subjects-and-specialties"))
}

func TestCatalog_Error(t *testing.T) {
	_, svc := newSubjectService(t, 1)
	_, err := svc.Catalog(context.Background())
	assert.ErrorContains(t, err, "load subject catalog")
}

func TestSpecialties(t *testing.T) {
	b, svc := newSubjectService(t, 1)
	b.json("/api/subjects-and-specialties", `{"Engineering":["Civil","Mechanical"]}`)

	none, err := svc.Specialties(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, 0, b.total())

	got, err := svc.Specialties(context.Background(), "Engineering")
	require.NoError(t, err)
	assert.Equal(t, []string{"Civil", "Mechanical"}, got)

	unknown, err := svc.Specialties(context.Background(), "Alchemy")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestSubjectSearch_RequiresSubject(t *testing.T) {
	b, svc := newSubjectService(t, 1)

	_, err := svc.Search(context.Background(), model.SubjectSearchRequest{Specialty: "Civil"})
	assert.ErrorIs(t, err, ErrSubjectRequired)
	assert.Equal(t, 0, b.total())
}

func TestSubjectSearch_EmptyResultIsNoMatch(t *testing.T) {
	b, svc := newSubjectService(t, 1)
	b.handle("/api/search-subjects", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"subject":"Engineering","specialty":""}`, string(raw))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := svc.Search(context.Background(), model.SubjectSearchRequest{Subject: "Engineering"})
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, 0, b.count("/api/search-us-news-ranking"))
}

func TestSubjectSearch_BackendError(t *testing.T) {
	b, svc := newSubjectService(t, 1)
	b.handle("/api/search-subjects", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	_, err := svc.Search(context.Background(), model.SubjectSearchRequest{Subject: "Engineering"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, err.Error(), "boom")
}

func TestSubjectSearch_FailedRankLookupFallsBack(t *testing.T) {
	b, svc := newSubjectService(t, 2)
	b.json("/api/search-subjects", `[
		{"大学名称":"麻省理工学院","University Name":"MIT","subject":"Engineering","specialty":"Civil","overall_ranking":1,"subject_ranking":3},
		{"大学名称":"某大学","University Name":"Broken U","subject":"Engineering","specialty":"Civil","overall_ranking":"N/A","subject_ranking":7}
	]`)
	b.handle("/api/search-us-news-ranking", usNewsHandler(map[string]string{"MIT": "#2"}))

	res, err := svc.Search(context.Background(), model.SubjectSearchRequest{Subject: "Engineering", Specialty: "Civil"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Groups, 1)

	rows := res.Groups[0].Results
	require.Len(t, rows, 2)
	assert.Equal(t, "#2", rows[0].USNewsRank)
	assert.Equal(t, RankAboveHundred, rows[1].USNewsRank)
	assert.Equal(t, model.Text("某大学"), rows[1].ChineseName)
	assert.Equal(t, model.Text("7"), rows[1].SubjectRanking)
	assert.Equal(t, model.Text("N/A"), rows[1].OverallRanking)
}

func TestSubjectSearch_EmptyRankingFallsBack(t *testing.T) {
	b, svc := newSubjectService(t, 1)
	b.json("/api/search-subjects", `[{"University Name":"Quiet College","subject":"Law","specialty":""}]`)
	b.handle("/api/search-us-news-ranking", usNewsHandler(map[string]string{"Quiet College": ""}))

	res, err := svc.Search(context.Background(), model.SubjectSearchRequest{Subject: "Law"})
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, DefaultSpecialty, res.Groups[0].Specialty)
	assert.Equal(t, RankAboveHundred, res.Groups[0].Results[0].USNewsRank)
}

func TestSubjectSearch_OrderPreservedUnderConcurrency(t *testing.T) {
	const n = 40
	b, svc := newSubjectService(t, 8)

	rows := make([]map[string]string, n)
	ranks := map[string]string{}
	for i := range rows {
		name := fmt.Sprintf("University %02d", i)
		rows[i] = map[string]string{"University Name": name, "subject": "Physics", "specialty": "Optics"}
		ranks[name] = fmt.Sprintf("#%d", i+1)
	}
	payload, err := json.Marshal(rows)
	require.NoError(t, err)
	b.json("/api/search-subjects", string(payload))

	var inFlight, peak int32
	lookup := usNewsHandler(ranks)
	b.handle("/api/search-us-news-ranking", func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		lookup(w, r)
		atomic.AddInt32(&inFlight, -1)
	})

	res, err := svc.Search(context.Background(), model.SubjectSearchRequest{Subject: "Physics", Specialty: "Optics"})
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	require.Len(t, res.Groups[0].Results, n)
	for i, r := range res.Groups[0].Results {
		assert.Equal(t, fmt.Sprintf("University %02d", i), r.EnglishName.String())
		assert.Equal(t, fmt.Sprintf("#%d", i+1), r.USNewsRank)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(8))
}

func TestUSNewsRank_CachesSuccessOnly(t *testing.T) {
	b, svc := newSubjectService(t, 1)
	b.handle("/api/search-us-news-ranking", usNewsHandler(map[string]string{"MIT": "#2"}))

	assert.Equal(t, "#2", svc.USNewsRank(context.Background(), "MIT"))
	assert.Equal(t, "#2", svc.USNewsRank(context.Background(), "MIT"))
	assert.Equal(t, RankAboveHundred, svc.USNewsRank(context.Background(), "Broken U"))
	assert.Equal(t, RankAboveHundred, svc.USNewsRank(context.Background(), "Broken U"))

	assert.Equal(t, 3, b.count("/api/search-us-news-ranking"))
}

func TestGroupBySpecialty_FirstSeenOrder(t *testing.T) {
	results := []model.SubjectSearchResult{
		{EnglishName: "A", Specialty: "Optics"},
		{EnglishName: "B", Specialty: ""},
		{EnglishName: "C", Specialty: "Optics"},
		{EnglishName: "D", Specialty: "Acoustics"},
	}

	groups := GroupBySpecialty(results)
	require.Len(t, groups, 3)
	assert.Equal(t, "Optics", groups[0].Specialty)
	assert.Equal(t, DefaultSpecialty, groups[1].Specialty)
	assert.Equal(t, "Acoustics", groups[2].Specialty)

	require.Len(t, groups[0].Results, 2)
	assert.Equal(t, model.Text("A"), groups[0].Results[0].EnglishName)
	assert.Equal(t, model.Text("C"), groups[0].Results[1].EnglishName)

	assert.Empty(t, GroupBySpecialty(nil))
}

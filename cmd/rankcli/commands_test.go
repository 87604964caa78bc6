package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unirank/rankbrowser/internal/config"
	"github.com/urfave/cli"
)

func testSession(t *testing.T, handler http.HandlerFunc) (*session, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{BackendURL: srv.URL, BackendTimeout: 5 * time.Second, USNewsConcurrency: 2}
	s := newSession(context.Background(), cfg, zerolog.Nop())
	out := &bytes.Buffer{}
	s.out, s.width = out, 0
	return s, out
}

func cliContext(t *testing.T, args []string, flags map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for name := range flags {
		set.String(name, "", "")
	}
	require.NoError(t, set.Parse(args))
	for name, v := range flags {
		require.NoError(t, set.Set(name, v))
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short\n", clip("short\n", 10))
	assert.Equal(t, "abcd…\n", clip("abcdefgh\n", 5))
	assert.Equal(t, "麻省理…", clip("麻省理工学院", 4))
}

func TestClipWriter_HoldsPartialLines(t *testing.T) {
	var out bytes.Buffer
	w := &clipWriter{w: &out, width: 4}

	_, _ = io.WriteString(w, "abc")
	assert.Empty(t, out.String())
	_, _ = io.WriteString(w, "defg\nxy\n")
	assert.Equal(t, "abc…\nxy\n", out.String())
}

func TestList_PrintsTable(t *testing.T) {
	s, out := testSession(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"US Rank":"#1","University Name":"Princeton University","大学名称":"普林斯顿大学"},{"University Name":"MIT"}]`)
	})

	require.NoError(t, s.list(cliContext(t, nil, nil)))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Princeton University")
	assert.Contains(t, lines[2], "N/A")
}

func TestShow_UnknownName(t *testing.T) {
	s, _ := testSession(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"University Name":"MIT"}]`)
	})

	err := s.show(cliContext(t, []string{"Harvard"}, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Harvard"`)

	err = s.show(cliContext(t, nil, nil))
	assert.Contains(t, err.Error(), errMissingName.Error())
}

func TestSubjectSearch_RequiresSubject(t *testing.T) {
	s, _ := testSession(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("backend must not be called")
	})

	err := s.subjectSearch(cliContext(t, nil, map[string]string{"subject": ""}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--subject")
}

func TestSubjectSearch_PrintsGroups(t *testing.T) {
	s, out := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/search-subjects":
			_, _ = io.WriteString(w, `[{"University Name":"MIT","subject":"Engineering","specialty":"Civil","subject_ranking":1}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	require.NoError(t, s.subjectSearch(cliContext(t, nil, map[string]string{"subject": "Engineering", "specialty": "Civil"})))
	text := out.String()
	assert.Contains(t, text, "Engineering - Civil (1)")
	assert.Contains(t, text, "大于100")
}

package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unirank/rankbrowser/internal/model"
)

func uni(name, rank string) model.University {
	return model.University{model.FieldEnglishName: model.Text(name), model.FieldRank: model.Text(rank)}
}

func TestUniversities_ReplaceAndFind(t *testing.T) {
	s := NewUniversities()
	loaded, _ := s.Loaded()
	assert.False(t, loaded)

	s.Replace([]model.University{uni("MIT", "#1"), uni("Stanford University", "#2")})

	loaded, at := s.Loaded()
	assert.True(t, loaded)
	assert.False(t, at.IsZero())
	assert.Equal(t, 2, s.Len())

	u, ok := s.Find("MIT")
	require.True(t, ok)
	assert.Equal(t, "#1", u.Rank())

	_, ok = s.Find("mit")
	assert.False(t, ok, "lookup is an exact match")
}

func TestUniversities_ReplaceDropsPreviousList(t *testing.T) {
	s := NewUniversities()
	s.Replace([]model.University{uni("MIT", "#1")})
	s.Replace([]model.University{uni("Yale University", "#5")})

	_, ok := s.Find("MIT")
	assert.False(t, ok)
	assert.Len(t, s.All(), 1)
}

func TestUniversities_DuplicateNamesResolveToFirst(t *testing.T) {
	s := NewUniversities()
	s.Replace([]model.University{uni("MIT", "#1"), uni("MIT", "#99")})

	u, ok := s.Find("MIT")
	require.True(t, ok)
	assert.Equal(t, "#1", u.Rank())
}

func TestUniversities_ConcurrentAccess(t *testing.T) {
	s := NewUniversities()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Replace([]model.University{uni("MIT", "#1")})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Find("MIT")
			_ = s.All()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/unirank/rankbrowser/internal/model"
	"github.com/unirank/rankbrowser/internal/repository"
	"github.com/unirank/rankbrowser/internal/state"
)

// Selection is everything shown for one selected university.
type Selection struct {
	University model.University
	Subjects   []model.SubjectRanking
	// SubjectsErr is set when the subject ranking fetch failed; the detail
	// part of the selection is still valid.
	SubjectsErr error
}

// RankingService loads, searches and selects universities from the overall ranking.
type RankingService struct {
	repo   *repository.RankingRepository
	store  *state.Universities
	loadMu sync.Mutex
	log    zerolog.Logger
}

// NewRankingService creates a new RankingService.
func NewRankingService(repo *repository.RankingRepository, store *state.Universities, log zerolog.Logger) *RankingService {
	return &RankingService{
		repo:  repo,
		store: store,
		log:   log.With().Str("component", "ranking_service").Logger(),
	}
}

// LoadOverallRanking fetches the full list and replaces the in-memory store.
// On failure the previously loaded list stays in place.
func (s *RankingService) LoadOverallRanking(ctx context.Context) ([]model.University, error) {
	list, err := s.repo.OverallRanking(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load overall ranking")
		return nil, fmt.Errorf("load overall ranking: %w", err)
	}

	s.store.Replace(list)
	s.log.Info().Int("count", len(list)).Msg("overall ranking loaded")
	return list, nil
}

// EnsureLoaded loads the ranking once if no list has been stored yet.
func (s *RankingService) EnsureLoaded(ctx context.Context) error {
	if loaded, _ := s.store.Loaded(); loaded {
		return nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if loaded, _ := s.store.Loaded(); loaded {
		return nil
	}
	_, err := s.LoadOverallRanking(ctx)
	return err
}

// Universities returns the full in-memory list.
func (s *RankingService) Universities() []model.University {
	return s.store.All()
}

// Status reports how many universities are held and when they were loaded.
// loadedAt is zero before the first successful load.
func (s *RankingService) Status() (count int, loadedAt time.Time) {
	_, loadedAt = s.store.Loaded()
	return s.store.Len(), loadedAt
}

// Search filters the ranking on the backend. The store is left untouched so
// that Reset can always return the full list.
func (s *RankingService) Search(ctx context.Context, criteria model.SearchCriteria) ([]model.University, error) {
	list, err := s.repo.Search(ctx, criteria)
	if err != nil {
		s.log.Error().Err(err).Interface("criteria", criteria).Msg("search failed")
		return nil, fmt.Errorf("search universities: %w", err)
	}
	s.log.Debug().Interface("criteria", criteria).Int("count", len(list)).Msg("search completed")
	return list, nil
}

// Reset clears every criterion and returns the full list held in memory.
// It never calls the backend.
func (s *RankingService) Reset() (model.SearchCriteria, []model.University) {
	return model.SearchCriteria{}, s.store.All()
}

// SubjectRankings fetches a university's subject rankings. A 404 from the
// backend means the university has no subject data and yields an empty list.
func (s *RankingService) SubjectRankings(ctx context.Context, universityName string) ([]model.SubjectRanking, error) {
	subjects, err := s.repo.UniversitySubjects(ctx, universityName)
	if repository.IsNotFound(err) {
		s.log.Debug().Str("university", universityName).Msg("no subject data")
		return []model.SubjectRanking{}, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("university", universityName).Msg("failed to load subject ranking")
		return nil, fmt.Errorf("load subject ranking for %q: %w", universityName, err)
	}
	return subjects, nil
}

// Select resolves name against the loaded list and, on a match, gathers the
// detail record and then its subject rankings. An unknown name reports false
// and does nothing else.
func (s *RankingService) Select(ctx context.Context, name string) (*Selection, bool) {
	u, ok := s.store.Find(name)
	if !ok {
		return nil, false
	}
	return s.selectionFor(ctx, u), true
}

// DefaultSelection selects the first university of the loaded list.
func (s *RankingService) DefaultSelection(ctx context.Context) (*Selection, bool) {
	all := s.store.All()
	if len(all) == 0 {
		return nil, false
	}
	return s.selectionFor(ctx, all[0]), true
}

func (s *RankingService) selectionFor(ctx context.Context, u model.University) *Selection {
	sel := &Selection{University: u}
	sel.Subjects, sel.SubjectsErr = s.SubjectRankings(ctx, u.Name())
	return sel
}

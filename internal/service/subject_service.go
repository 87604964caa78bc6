package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/unirank/rankbrowser/internal/cache"
	"github.com/unirank/rankbrowser/internal/config"
	"github.com/unirank/rankbrowser/internal/model"
	"github.com/unirank/rankbrowser/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Domain Errors
var (
	ErrSubjectRequired = errors.New("a subject must be selected")
	ErrNoMatch         = errors.New("no matching results")
)

const (
	// DefaultSpecialty groups results that carry no specialty.
	DefaultSpecialty = "综合"
	// RankAboveHundred is shown when no US News rank could be resolved.
	RankAboveHundred = "大于100"
)

// SubjectOptions tunes caching and lookup fan-out.
type SubjectOptions struct {
	CatalogTTL time.Duration
	RankTTL    time.Duration
	// Concurrency bounds parallel US News lookups; values below 1 mean 1.
	Concurrency int
}

// SubjectResults is a subject search grouped for display.
type SubjectResults struct {
	Subject   string                 `json:"subject"`
	Specialty string                 `json:"specialty"`
	Total     int                    `json:"total"`
	Groups    []model.SpecialtyGroup `json:"groups"`
}

// SubjectService serves the subject/specialty catalog and subject searches.
type SubjectService struct {
	repo  *repository.RankingRepository
	cache cache.Store
	opts  SubjectOptions
	log   zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(repo *repository.RankingRepository, store cache.Store, opts SubjectOptions, log zerolog.Logger) *SubjectService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &SubjectService{
		repo:  repo,
		cache: store,
		opts:  opts,
		log:   log.With().Str("component", "subject_service").Logger(),
	}
}

// Catalog returns the subject → specialties mapping, served from cache when possible.
func (s *SubjectService) Catalog(ctx context.Context) (model.Catalog, error) {
	key := config.CacheKey.CatalogKey()

	var catalog model.Catalog
	if err := cache.GetJSON(ctx, s.cache, key, &catalog); err == nil {
		return catalog, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Msg("catalog cache read failed")
	}

	catalog, err := s.repo.SubjectsAndSpecialties(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load subject catalog")
		return nil, fmt.Errorf("load subject catalog: %w", err)
	}

	if err := cache.SetJSON(ctx, s.cache, key, catalog, s.opts.CatalogTTL); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache write failed")
	}
	return catalog, nil
}

// Specialties lists the specialties of subject. No subject yields no
// specialties, which keeps the dependent selector disabled.
func (s *SubjectService) Specialties(ctx context.Context, subject string) ([]string, error) {
	if subject == "" {
		return nil, nil
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	specialties, _ := catalog.Specialties(subject)
	return specialties, nil
}

// Search runs a subject search, resolves each row's US News rank and groups
// the rows by specialty.
func (s *SubjectService) Search(ctx context.Context, req model.SubjectSearchRequest) (*SubjectResults, error) {
	if req.Subject == "" {
		return nil, ErrSubjectRequired
	}

	results, err := s.repo.SearchSubjects(ctx, req)
	if err != nil {
		s.log.Error().Err(err).Str("subject", req.Subject).Str("specialty", req.Specialty).Msg("subject search failed")
		return nil, fmt.Errorf("search subject %q: %w", req.Subject, err)
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	s.resolveUSNewsRanks(ctx, results)

	s.log.Info().
		Str("subject", req.Subject).
		Str("specialty", req.Specialty).
		Int("count", len(results)).
		Msg("subject search completed")

	return &SubjectResults{
		Subject:   req.Subject,
		Specialty: req.Specialty,
		Total:     len(results),
		Groups:    GroupBySpecialty(results),
	}, nil
}

// USNewsRank resolves one university's US News rank. Any failure, or an
// answer without a ranking, yields RankAboveHundred; it never errors.
func (s *SubjectService) USNewsRank(ctx context.Context, universityName string) string {
	key := config.CacheKey.USNewsRankKey(universityName)
	if b, err := s.cache.Get(ctx, key); err == nil {
		return string(b)
	}

	rank, err := s.repo.USNewsRanking(ctx, universityName)
	if err != nil {
		s.log.Warn().Err(err).Str("university", universityName).Msg("US News rank lookup failed")
		return RankAboveHundred
	}
	if rank == "" {
		rank = RankAboveHundred
	}

	if err := s.cache.Set(ctx, key, []byte(rank), s.opts.RankTTL); err != nil {
		s.log.Warn().Err(err).Msg("rank cache write failed")
	}
	return rank
}

// resolveUSNewsRanks fills USNewsRank for every row with at most
// opts.Concurrency lookups in flight. Each lookup writes only its own row,
// so row order is the request order regardless of arrival order.
func (s *SubjectService) resolveUSNewsRanks(ctx context.Context, results []model.SubjectSearchResult) {
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i := range results {
		g.Go(func() error {
			results[i].USNewsRank = s.USNewsRank(ctx, results[i].EnglishName.String())
			return nil
		})
	}
	// Lookups never fail; a miss resolves to the fallback rank.
	g.Wait()
}

// GroupBySpecialty buckets results by specialty, keeping groups in the order
// their specialty first appears and rows in their original order.
func GroupBySpecialty(results []model.SubjectSearchResult) []model.SpecialtyGroup {
	var groups []model.SpecialtyGroup
	index := map[string]int{}
	for _, r := range results {
		specialty := r.Specialty.String()
		if specialty == "" {
			specialty = DefaultSpecialty
		}
		i, ok := index[specialty]
		if !ok {
			i = len(groups)
			index[specialty] = i
			groups = append(groups, model.SpecialtyGroup{Specialty: specialty})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	return groups
}

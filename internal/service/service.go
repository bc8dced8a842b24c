// Package service ties the recommender to the saved team, the candidate pool
// and the history log. The HTTP, MCP and Discord front ends all call it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pmurley/afl-trade-bot/internal/cache"
	"github.com/pmurley/afl-trade-bot/internal/captain"
	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/playerdb"
	"github.com/pmurley/afl-trade-bot/internal/recommender"
	"github.com/pmurley/afl-trade-bot/internal/storage"
	"github.com/pmurley/afl-trade-bot/pkg/logger"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request sources recorded in the history log
const (
	SourceHTTP    = "http"
	SourceMCP     = "mcp"
	SourceDiscord = "discord"
)

var (
	// ErrBadRequest marks caller mistakes (bad price, missing roster).
	ErrBadRequest = errors.New("bad request")
	// ErrPoolUnavailable is returned when the player pool is requested but
	// none is configured or loaded.
	ErrPoolUnavailable = errors.New("player pool is not available")

	ErrPlayerNotFound = errors.New("player not found in pool")
)

// RecommendRequest is the input to Recommend. When UseSavedTeam is set the
// roster comes from the team repository and CurrentTeam is ignored. When
// UsePlayerPool is false the roster doubles as the candidate pool.
type RecommendRequest struct {
	CurrentTeam    []models.Player
	MaxRookiePrice int
	UseSavedTeam   bool
	UsePlayerPool  bool
	Source         string
}

// Result is the outcome of a recommendation run. It marshals to
// {"status":"ok","combinations":[...]} or {"status":"error","message":"..."}.
type Result struct {
	Status       string
	Combinations []models.Combination
	Message      string
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Status == StatusOK {
		combos := r.Combinations
		if combos == nil {
			combos = []models.Combination{}
		}
		return json.Marshal(struct {
			Status       string               `json:"status"`
			Combinations []models.Combination `json:"combinations"`
		}{r.Status, combos})
	}
	return json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{r.Status, r.Message})
}

// PoolLoader is satisfied by *playerdb.Client
type PoolLoader interface {
	Configured() bool
	LoadInitialData(ctx context.Context, cache *cache.Cache) (*playerdb.Result, error)
}

type Service struct {
	recommender           *recommender.Recommender
	teams                 storage.TeamRepository
	history               *storage.HistoryStorage
	pool                  *cache.Cache
	loader                PoolLoader
	defaultMaxRookiePrice int
	log                   *logger.Logger
	loads                 singleflight.Group
}

type Options struct {
	Recommender           *recommender.Recommender
	Teams                 storage.TeamRepository
	History               *storage.HistoryStorage
	Pool                  *cache.Cache
	Loader                PoolLoader
	DefaultMaxRookiePrice int
	Logger                *logger.Logger
}

func New(opts Options) *Service {
	s := &Service{
		recommender:           opts.Recommender,
		teams:                 opts.Teams,
		history:               opts.History,
		pool:                  opts.Pool,
		loader:                opts.Loader,
		defaultMaxRookiePrice: opts.DefaultMaxRookiePrice,
		log:                   opts.Logger,
	}
	if s.recommender == nil {
		s.recommender = recommender.New(recommender.DefaultThresholds())
	}
	if s.defaultMaxRookiePrice <= 0 {
		s.defaultMaxRookiePrice = 300000
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

func (s *Service) DefaultMaxRookiePrice() int {
	return s.defaultMaxRookiePrice
}

// Recommend runs the recommender. Recommender failures come back as a Result
// with StatusError; the returned error is reserved for invalid input and
// storage or pool failures.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (Result, error) {
	maxPrice := req.MaxRookiePrice
	if maxPrice == 0 {
		maxPrice = s.defaultMaxRookiePrice
	}
	if maxPrice < 0 {
		return Result{}, fmt.Errorf("%w: maxRookiePrice must be positive", ErrBadRequest)
	}

	roster := req.CurrentTeam
	if req.UseSavedTeam {
		saved, err := s.LoadTeam(ctx)
		if err != nil {
			return Result{}, err
		}
		roster = saved
	} else if err := models.ValidateRoster(roster); err != nil {
		return Result{}, err
	}

	pool := roster
	if req.UsePlayerPool {
		p, err := s.Pool(ctx)
		if err != nil {
			return Result{}, err
		}
		pool = p
	}

	combos, err := s.recommender.Recommend(roster, pool, maxPrice)
	result := Result{Status: StatusOK, Combinations: combos}
	if err != nil {
		result = Result{Status: StatusError, Message: err.Error()}
	}

	s.record(req.Source, len(roster), maxPrice, result)
	return result, nil
}

func (s *Service) record(source string, rosterSize, maxPrice int, result Result) {
	if s.history == nil {
		return
	}
	entry := &storage.HistoryEntry{
		Source:         source,
		RosterSize:     rosterSize,
		MaxRookiePrice: maxPrice,
		Status:         result.Status,
		ResultCount:    len(result.Combinations),
		Message:        result.Message,
	}
	if len(result.Combinations) > 0 {
		entry.BestScore = result.Combinations[0].OverallScore
	}
	if err := s.history.Add(entry); err != nil {
		s.log.Warn("Failed to record recommendation history:", err)
	}
}

// LoadTeam returns the saved team
func (s *Service) LoadTeam(ctx context.Context) ([]models.Player, error) {
	if s.teams == nil {
		return nil, storage.ErrTeamNotFound
	}
	return s.teams.Load(ctx)
}

// SaveTeam validates and stores the team
func (s *Service) SaveTeam(ctx context.Context, players []models.Player) error {
	if err := models.ValidateRoster(players); err != nil {
		return err
	}
	if s.teams == nil {
		return fmt.Errorf("no team store configured")
	}
	return s.teams.Save(ctx, players)
}

// Captain ranks the saved team for the captaincy
func (s *Service) Captain(ctx context.Context, n int) (captain.Suggestion, error) {
	team, err := s.LoadTeam(ctx)
	if err != nil {
		return captain.Suggestion{}, err
	}
	return captain.Suggest(team, n)
}

// Pool returns the cached candidate pool, loading it on a cache miss
func (s *Service) Pool(ctx context.Context) (models.PlayerList, error) {
	if s.pool == nil {
		return nil, ErrPoolUnavailable
	}
	if pool, ok := s.pool.GetPool(); ok {
		return pool, nil
	}
	if s.loader == nil || !s.loader.Configured() {
		return nil, ErrPoolUnavailable
	}
	if _, err := s.ReloadPool(ctx); err != nil {
		return nil, err
	}
	pool, ok := s.pool.GetPool()
	if !ok {
		return nil, ErrPoolUnavailable
	}
	return pool, nil
}

// HasPool reports whether a candidate pool can be used
func (s *Service) HasPool() bool {
	if s.pool == nil {
		return false
	}
	if _, ok := s.pool.GetPool(); ok {
		return true
	}
	return s.loader != nil && s.loader.Configured()
}

// ReloadPool loads the pool again. The cached pool is only replaced on
// success; concurrent callers share one load.
func (s *Service) ReloadPool(ctx context.Context) (*playerdb.Result, error) {
	if s.pool == nil || s.loader == nil || !s.loader.Configured() {
		return nil, ErrPoolUnavailable
	}
	v, err, _ := s.loads.Do("pool", func() (interface{}, error) {
		return s.loader.LoadInitialData(ctx, s.pool)
	})
	if err != nil {
		return nil, err
	}
	result := v.(*playerdb.Result)
	s.log.Info(fmt.Sprintf("Loaded %d players into pool (%d rows skipped)", len(result.Players), result.Skipped))
	return result, nil
}

// PoolStats summarises the cached pool
func (s *Service) PoolStats(ctx context.Context) (models.Stats, error) {
	if _, err := s.Pool(ctx); err != nil {
		return models.Stats{}, err
	}
	stats, ok := s.pool.PoolStats()
	if !ok {
		return models.Stats{}, ErrPoolUnavailable
	}
	return stats, nil
}

// PoolLoadedAt is when the cached pool was last replaced; zero if never.
func (s *Service) PoolLoadedAt() time.Time {
	if s.pool == nil {
		return time.Time{}
	}
	return s.pool.LoadedAt()
}

// SearchPool returns pool players whose name contains query, best
// projected first. limit <= 0 returns every match.
func (s *Service) SearchPool(ctx context.Context, query string, limit int) (models.PlayerList, error) {
	pool, err := s.Pool(ctx)
	if err != nil {
		return nil, err
	}
	matches := pool.SearchByName(strings.TrimSpace(query))
	matches.SortByProjected()
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = models.PlayerList{}
	}
	return matches, nil
}

func (s *Service) PoolPlayer(ctx context.Context, id models.PlayerID) (models.Player, error) {
	pool, err := s.Pool(ctx)
	if err != nil {
		return models.Player{}, err
	}
	p, ok := pool.FindByID(id)
	if !ok {
		return models.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p, nil
}

// History returns the most recent recommendation runs
func (s *Service) History(limit int) ([]storage.HistoryEntry, error) {
	if s.history == nil {
		return []storage.HistoryEntry{}, nil
	}
	return s.history.Recent(limit)
}

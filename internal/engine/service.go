package engine

import (
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"ngp/internal/storage"
	"ngp/internal/timeutil"
)

// RNG is the single random source the engine consumes: one uniform pick when
// seeding a cycle target and one draw per reflection-token decision.
// *math/rand.Rand satisfies it; tests inject a seeded instance.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

type Service struct {
	db    *sql.DB
	clock timeutil.Clock
	rng   RNG
	log   *zap.Logger

	// Guards the credit-check-then-append sequence in CompleteMission.
	mu sync.Mutex

	players     *storage.PlayerRepo
	skills      *storage.SkillRepo
	missions    *storage.MissionRepo
	completions *storage.CompletionRepo
	journal     *storage.JournalRepo
	rewards     *storage.RewardRepo
	capsules    *storage.CapsuleRepo
}

type Option func(*Service)

func WithClock(c timeutil.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithRNG(r RNG) Option {
	return func(s *Service) { s.rng = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:          db,
		clock:       timeutil.SystemClock{},
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         zap.NewNop(),
		players:     storage.NewPlayerRepo(db),
		skills:      storage.NewSkillRepo(db),
		missions:    storage.NewMissionRepo(db),
		completions: storage.NewCompletionRepo(db),
		journal:     storage.NewJournalRepo(db),
		rewards:     storage.NewRewardRepo(db),
		capsules:    storage.NewCapsuleRepo(db),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) DB() *sql.DB                         { return s.db }
func (s *Service) Clock() timeutil.Clock               { return s.clock }
func (s *Service) PlayerRepo() *storage.PlayerRepo     { return s.players }
func (s *Service) SkillRepo() *storage.SkillRepo       { return s.skills }
func (s *Service) MissionRepo() *storage.MissionRepo   { return s.missions }
func (s *Service) CompletionRepo() *storage.CompletionRepo {
	return s.completions
}
func (s *Service) JournalRepo() *storage.JournalRepo { return s.journal }
func (s *Service) RewardRepo() *storage.RewardRepo   { return s.rewards }
func (s *Service) CapsuleRepo() *storage.CapsuleRepo { return s.capsules }

// txRepos bundles repos bound to one transaction.
type txRepos struct {
	players     *storage.PlayerRepo
	skills      *storage.SkillRepo
	missions    *storage.MissionRepo
	completions *storage.CompletionRepo
	journal     *storage.JournalRepo
	capsules    *storage.CapsuleRepo
}

func reposFor(tx storage.DBTX) txRepos {
	return txRepos{
		players:     storage.NewPlayerRepo(tx),
		skills:      storage.NewSkillRepo(tx),
		missions:    storage.NewMissionRepo(tx),
		completions: storage.NewCompletionRepo(tx),
		journal:     storage.NewJournalRepo(tx),
		capsules:    storage.NewCapsuleRepo(tx),
	}
}

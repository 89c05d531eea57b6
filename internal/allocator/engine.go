package allocator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rhyrak/go-allocate/internal/logger"
	"github.com/rhyrak/go-allocate/internal/tracing"
	"github.com/rhyrak/go-allocate/pkg/model"
	"github.com/rs/zerolog"
)

var ErrStuckStudent = errors.New("no admissible course left for student")

type Outcome int

const (
	Complete Outcome = iota
	Aborted
)

func (o Outcome) String() string {
	if o == Aborted {
		return "aborted"
	}
	return "complete"
}

// Grant describes one committed allocation.
type Grant struct {
	Student *model.Student
	Rank    int
	Course  *model.Course
}

type Result struct {
	Outcome      Outcome
	StuckStudent model.StudentID
	Grants       int
	Bumps        map[model.CourseID]int
}

// Err returns ErrStuckStudent wrapped with the student's ID for aborted runs.
func (r *Result) Err() error {
	if r.Outcome != Aborted {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStuckStudent, r.StuckStudent)
}

type Option func(*Engine)

// WithSeed makes the tie-break between equally unhappy students reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

func WithRewards(rewards []int, groupPenalty int) Option {
	return func(e *Engine) {
		e.rewards = rewards
		e.groupPenalty = groupPenalty
	}
}

// WithObserver registers fn to be called after every committed grant.
func WithObserver(fn func(Grant)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// Engine owns the store for the duration of a run. It is not safe for
// concurrent use and a store must only be run once.
type Engine struct {
	store        *model.Store
	evaluator    *Evaluator
	checker      *Checker
	rng          *rand.Rand
	rewards      []int
	groupPenalty int
	observer     func(Grant)
	log          zerolog.Logger
	candidates   []*model.Student
}

// NewEngine applies opts over the default rewards and penalty. It fails with
// ErrInvalidConfiguration when the resulting reward table would let granted
// preferences outweigh an unmet group.
func NewEngine(store *model.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:        store,
		rewards:      defaultRewardTable,
		groupPenalty: DefaultGroupPenalty,
		log:          logger.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := ValidateRewards(e.rewards, e.groupPenalty); err != nil {
		return nil, err
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.evaluator = NewEvaluator(e.rewards, e.groupPenalty, store.Groups)
	e.checker = NewChecker(store)
	return e, nil
}

// NewEngineFromConfiguration builds an engine using the configured reward
// table, group penalty and seed.
func NewEngineFromConfiguration(store *model.Store, cfg *Configuration, opts ...Option) (*Engine, error) {
	base := []Option{WithRewards(cfg.Rewards, cfg.GroupPenalty)}
	if cfg.Seed != 0 {
		base = append(base, WithSeed(cfg.Seed))
	}
	return NewEngine(store, append(base, opts...)...)
}

func (e *Engine) Evaluator() *Evaluator {
	return e.evaluator
}

func (e *Engine) Checker() *Checker {
	return e.checker
}

// Run allocates until every student holds ncourses courses or some student
// has no admissible preference left. Grants made before an abort are kept.
func (e *Engine) Run(ctx context.Context) *Result {
	_, span := tracing.StartSpan(ctx, "allocator.run")
	span.WithInt("students", len(e.store.Students)).WithInt("courses", len(e.store.Courses))

	for _, s := range e.store.Students {
		e.evaluator.Evaluate(s)
	}

	result := &Result{Bumps: make(map[model.CourseID]int, len(e.store.Courses))}
	for {
		student := e.nextStudent()
		if student == nil {
			result.Outcome = Complete
			break
		}
		if !e.allocateNext(student) {
			result.Outcome = Aborted
			result.StuckStudent = student.ID
			e.log.Warn().
				Str("student", string(student.ID)).
				Int("allocated", student.Allocated).
				Int("ncourses", student.NCourses).
				Msg("couldn't allocate enough places")
			break
		}
		result.Grants++
	}

	for _, c := range e.store.Courses {
		result.Bumps[c.ID] = c.Bumps
	}

	e.log.Info().
		Str("outcome", result.Outcome.String()).
		Int("grants", result.Grants).
		Int("demand", e.store.Demand()).
		Msg("allocation finished")

	span.WithInt("grants", result.Grants).WithAttributes(map[string]string{"outcome": result.Outcome.String()})
	tracing.EndSpan(span, result.Err())
	return result
}

// nextStudent picks uniformly at random among the unfinished students with
// the lowest happiness. Returns nil when everyone is complete.
func (e *Engine) nextStudent() *model.Student {
	e.candidates = e.candidates[:0]
	for _, s := range e.store.Students {
		if s.Complete() {
			continue
		}
		switch {
		case len(e.candidates) == 0 || s.Happiness < e.candidates[0].Happiness:
			e.candidates = append(e.candidates[:0], s)
		case s.Happiness == e.candidates[0].Happiness:
			e.candidates = append(e.candidates, s)
		}
	}
	if len(e.candidates) == 0 {
		return nil
	}
	return e.candidates[e.rng.Intn(len(e.candidates))]
}

// allocateNext grants the student's most preferred admissible course.
// Returns false if no rank is admissible.
func (e *Engine) allocateNext(s *model.Student) bool {
	for rank := 1; rank <= s.Ranks(); rank++ {
		switch e.checker.Check(s, rank) {
		case Admissible:
			return e.grant(s, rank)
		case RejectCapacity:
			s.CourseAt(rank).Bump()
		}
	}
	return false
}

func (e *Engine) grant(s *model.Student, rank int) bool {
	course := s.CourseAt(rank)
	if !course.Place() {
		return false
	}
	s.Got[rank-1] = true
	s.Allocated++
	for _, g := range e.store.GroupsOf(course.ID) {
		s.Satisfied[g] = true
	}
	e.evaluator.Evaluate(s)

	e.log.Debug().
		Str("student", string(s.ID)).
		Str("course", string(course.ID)).
		Int("rank", rank).
		Int("happiness", s.Happiness).
		Msg("granted")

	if e.observer != nil {
		e.observer(Grant{Student: s, Rank: rank, Course: course})
	}
	return true
}

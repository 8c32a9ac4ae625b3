// internal/intake/engine.go
//
// Intake – orchestrator.
//
// Context
//   Engine.Submit is the single entry point for one posted application.  It
//   runs every section in a fixed order, collects all problems, and only
//   when the submission is otherwise clean consults the Registry for
//   duplicates.  The result is either an *Accepted (already registered) or
//   a *ValidationError carrying the draft and its problems.
//
// Order
//   Personal → Address → Education → Experience (uses DOB) → Language →
//   Social Media → Files/Availability → Uniqueness.
//
// Concurrency
//   Sections are pure and run on the caller's goroutine.  The duplicate
//   check and the Append that follows it are serialized by e.mu, so two
//   concurrent submissions with the same email cannot both be accepted.
//   Registries backed by a shared store must still enforce their own
//   constraint across processes and report it as ErrDuplicate.
//
//------------------------------------------------------------------------------

package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/metrics"
)

const duplicateMsg = "An application with this email or mobile number already exists."

// Registry is the uniqueness index of accepted applications.
type Registry interface {
	ContainsEmail(ctx context.Context, email string) (bool, error)
	ContainsMobile(ctx context.Context, mobile string) (bool, error)
	Append(ctx context.Context, a *Accepted) error
}

// Engine validates and accepts applications.  Safe for concurrent use.
type Engine struct {
	rules    Rules
	registry Registry
	files    FileStore
	log      *zap.SugaredLogger
	now      func() time.Time

	mu sync.Mutex // guards check-then-append on registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces DefaultRules.
func WithRules(r Rules) Option { return func(e *Engine) { e.rules = r } }

// WithLogger sets the logger; defaults to zap.S().
func WithLogger(l *zap.SugaredLogger) Option { return func(e *Engine) { e.log = l } }

// WithClock overrides time.Now, which fixes “today” for the age rules.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New builds an Engine.  registry and files are required.
func New(registry Registry, files FileStore, opts ...Option) (*Engine, error) {
	if registry == nil || files == nil {
		return nil, errors.New("intake: registry and file store are required")
	}
	e := &Engine{
		rules:    DefaultRules(),
		registry: registry,
		files:    files,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = zap.S()
	}
	if err := e.rules.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Rules returns the active rule set.
func (e *Engine) Rules() Rules { return e.rules }

// Submit validates sub.  It returns the registered *Accepted on success, a
// *ValidationError when the applicant must correct input, or any other error
// when the registry itself failed.
func (e *Engine) Submit(ctx context.Context, sub *form.Submission) (*Accepted, error) {
	start := time.Now()
	defer func() { metrics.SubmissionDuration.Observe(time.Since(start).Seconds()) }()

	now := e.now()
	app, errs := e.validate(ctx, sub, civilDate(now))

	if !errs.Empty() {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		e.log.Infow("application rejected", "errors", errs.Count(), "keys", errs.Keys())
		return nil, &ValidationError{Draft: app, Errors: errs}
	}

	acc, err := e.register(ctx, app, now)
	switch {
	case err == nil:
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
		e.log.Infow("application accepted",
			"education", len(app.Education),
			"experience", len(app.Experience),
			"languages", len(app.Languages),
			"duration", time.Since(start),
		)
		return acc, nil
	case errors.Is(err, ErrDuplicate):
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		e.log.Infow("application rejected as duplicate")
		errs.Add("duplicate", DuplicateEntry, duplicateMsg)
		return nil, &ValidationError{Draft: app, Errors: errs}
	default:
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		e.log.Errorw("application registry failed", "err", err)
		return nil, err
	}
}

// validate runs every section and returns the draft with its problems.
func (e *Engine) validate(ctx context.Context, sub *form.Submission, today time.Time) (Application, *Errors) {
	var app Application
	errs := NewErrors()

	var dob DOB
	steps := []struct {
		section string
		run     func()
	}{
		{"personal", func() { dob = validatePersonal(sub, e.rules, today, &app, errs) }},
		{"address", func() { validateAddress(sub, e.rules, &app, errs) }},
		{"education", func() {
			var slots []FieldErrors
			app.Education, slots = validateEducation(sub, e.rules)
			errs.SetRecords("education", slots)
		}},
		{"experience", func() {
			var slots []FieldErrors
			app.Experience, slots = validateExperience(sub, e.rules, dob)
			errs.SetRecords("experience", slots)
		}},
		{"language", func() { app.Languages = validateLanguages(sub, e.rules, errs) }},
		{"social_media", func() {
			var slots []FieldErrors
			app.SocialMedia, slots = validateSocialMedia(sub, e.rules)
			errs.SetRecords("social_media", slots)
		}},
		{"files", func() { e.validateFiles(ctx, sub, &app, errs) }},
	}
	for _, s := range steps {
		before := errs.Count()
		s.run()
		if n := errs.Count() - before; n > 0 {
			metrics.FieldErrorsTotal.WithLabelValues(s.section).Add(float64(n))
		}
	}
	return app, errs
}

// register performs the gated uniqueness check and the Append under one
// lock.  ErrDuplicate signals a match from either step.
func (e *Engine) register(ctx context.Context, app Application, now time.Time) (*Accepted, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	dup, err := e.registry.ContainsEmail(ctx, app.Email)
	if err != nil {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}
	if !dup {
		if dup, err = e.registry.ContainsMobile(ctx, app.Mobile); err != nil {
			return nil, fmt.Errorf("check mobile uniqueness: %w", err)
		}
	}
	if dup {
		return nil, ErrDuplicate
	}

	acc := newAccepted(app, now)
	if err := e.registry.Append(ctx, acc); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("register application: %w", err)
	}
	return acc, nil
}

// civilDate drops the clock part of t in its own location and returns
// midnight UTC of that calendar day, matching form.ParseDate.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

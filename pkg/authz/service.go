package authz

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// Decision is the result of evaluating one request under its mode.
type Decision struct {
	Request Request
	Mode    Mode
	Allowed bool
}

// Permits reports whether the caller may go on. Only enforce mode blocks.
func (d Decision) Permits() bool {
	return d.Allowed || d.Mode != ModeEnforce
}

// Service evaluates requests against a casbin model and policy loaded from files.
type Service struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
	flags    FlagProvider
	log      *logrus.Entry
}

func NewService(cfg Config) (*Service, error) {
	if cfg.ModelPath == "" || cfg.PolicyPath == "" {
		return nil, ErrMissingPath
	}
	adapter := fileadapter.NewAdapter(filepath.Clean(cfg.PolicyPath))
	enforcer, err := casbin.NewEnforcer(filepath.Clean(cfg.ModelPath), adapter)
	if err != nil {
		return nil, errors.Wrap(err, "authz: build enforcer")
	}
	return &Service{
		enforcer: enforcer,
		flags:    cfg.provider(),
		log:      cfg.entry(),
	}, nil
}

// Mode is the global mode of the current flags.
func (s *Service) Mode() Mode {
	return ParseMode(s.flags.Flags().Mode)
}

// Decide evaluates req under the mode configured for its object. Disabled
// objects are allowed without asking casbin.
func (s *Service) Decide(ctx context.Context, req Request) (Decision, error) {
	d := Decision{Request: req, Mode: s.flags.Flags().ModeFor(req.Object), Allowed: true}
	if d.Mode == ModeDisabled {
		return d, nil
	}
	start := time.Now()
	allowed, err := s.Check(ctx, req)
	if err != nil {
		return Decision{}, err
	}
	d.Allowed = allowed
	observe(d, time.Since(start))
	if !allowed {
		s.log.WithContext(ctx).WithFields(logrus.Fields{
			"subject": req.Subject,
			"object":  req.Object,
			"action":  req.Action,
			"mode":    d.Mode,
		}).Warn("authz denied")
	}
	return d, nil
}

// Authorize returns a *ForbiddenError when the decision does not permit req.
func (s *Service) Authorize(ctx context.Context, req Request) error {
	d, err := s.Decide(ctx, req)
	if err != nil {
		return err
	}
	if !d.Permits() {
		return &ForbiddenError{Request: req}
	}
	return nil
}

// Check asks casbin directly, ignoring the mode.
func (s *Service) Check(_ context.Context, req Request) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ok, err := s.enforcer.Enforce(req.Subject, req.Object, req.Action)
	if err != nil {
		return false, errors.Wrap(err, "authz: enforce")
	}
	return ok, nil
}

// ReloadPolicy re-reads the policy file.
func (s *Service) ReloadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enforcer.LoadPolicy(); err != nil {
		return errors.Wrap(err, "authz: reload policy")
	}
	s.log.WithContext(ctx).Info("authz policy reloaded")
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/probeops/console/internal/domain/probe"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/observability/statsd"
	"github.com/probeops/console/internal/ports"
)

// JMESPathEvaluator abstracts expression validation and evaluation so tests
// can substitute a stub.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if expr == "" {
		return errors.New("expression is empty")
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// ProbeServiceOptions groups dependencies for ProbeService.
type ProbeServiceOptions struct {
	Backend   ports.Backend
	Sessions  *SessionManager
	Evaluator JMESPathEvaluator
	Metrics   statsd.Sink
	Logger    *slog.Logger
}

// ProbeService validates probe requests, forwards them to the backend under
// the profile's token, and optionally projects the result through a JMESPath
// expression.
type ProbeService struct {
	backend   ports.Backend
	sessions  *SessionManager
	evaluator JMESPathEvaluator
	metrics   statsd.Sink
	logger    *slog.Logger
}

// NewProbeService constructs a ProbeService.
func NewProbeService(opts ProbeServiceOptions) (*ProbeService, error) {
	if opts.Backend == nil {
		return nil, errors.New("Backend is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("Sessions is required")
	}

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = jmespathLibEvaluator{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ProbeService{
		backend:   opts.Backend,
		sessions:  opts.Sessions,
		evaluator: evaluator,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "probe_service"),
	}, nil
}

// Run executes one probe for the profile. The request is validated locally
// before it ever reaches the backend; an Extract expression, when present,
// projects the raw result and returns only the projection.
func (s *ProbeService) Run(ctx context.Context, profileID string, req probe.Request) (json.RawMessage, error) {
	token, err := s.sessions.Token(profileID)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Extract != "" {
		if err := s.evaluator.Validate(req.Extract); err != nil {
			return nil, apperrors.ValidationField("extract", "invalid extract expression: "+err.Error())
		}
	}

	started := time.Now()
	raw, err := s.backend.RunProbe(ctx, token, req)
	if err != nil {
		s.count("probe.run", map[string]string{"kind": string(req.Kind), "result": "failure"})
		return nil, err
	}
	s.timing("probe.duration", time.Since(started), map[string]string{"kind": string(req.Kind)})
	s.count("probe.run", map[string]string{"kind": string(req.Kind), "result": "success"})

	if req.Extract == "" {
		return raw, nil
	}
	return s.extract(raw, req.Extract)
}

// extract applies the JMESPath projection to the raw result document.
func (s *ProbeService) extract(raw json.RawMessage, expr string) (json.RawMessage, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode probe result")
	}

	projected, err := s.evaluator.Evaluate(expr, doc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "evaluate extract expression")
	}

	encoded, err := json.Marshal(projected)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode extracted result")
	}
	return encoded, nil
}

// History returns the profile's recent probe results.
func (s *ProbeService) History(ctx context.Context, profileID string, limit int) (json.RawMessage, error) {
	token, err := s.sessions.Token(profileID)
	if err != nil {
		return nil, err
	}
	return s.backend.ProbeHistory(ctx, token, limit)
}

func (s *ProbeService) count(name string, tags map[string]string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(name, 1, tags)
}

func (s *ProbeService) timing(name string, d time.Duration, tags map[string]string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Timing(name, d, tags)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probeops/console/internal/domain/probe"
	apperrors "github.com/probeops/console/internal/errors"
)

type probeFixture struct {
	*sessionFixture
	service *ProbeService
}

func newProbeFixture(t *testing.T) *probeFixture {
	t.Helper()

	base := newSessionFixture(t)
	service, err := NewProbeService(ProbeServiceOptions{
		Backend:  base.backend,
		Sessions: base.manager,
	})
	require.NoError(t, err)

	_, err = base.manager.Login(context.Background(), "p1", validCreds())
	require.NoError(t, err)

	return &probeFixture{sessionFixture: base, service: service}
}

func TestProbeService_RunRequiresAuth(t *testing.T) {
	f := newProbeFixture(t)

	_, err := f.service.Run(context.Background(), "anon", probe.Request{
		Kind: probe.KindPing, Target: "example.com",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, 0, f.backend.Calls("RunProbe"))
}

func TestProbeService_RunValidatesBeforeForwarding(t *testing.T) {
	f := newProbeFixture(t)

	_, err := f.service.Run(context.Background(), "p1", probe.Request{
		Kind: probe.KindPing, Target: "not a host!",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, f.backend.Calls("RunProbe"))
}

func TestProbeService_RunPassesRawResult(t *testing.T) {
	f := newProbeFixture(t)
	f.backend.RunProbeFunc = func(_ context.Context, _ string, req probe.Request) (json.RawMessage, error) {
		assert.Equal(t, probe.KindPing, req.Kind)
		return json.RawMessage(`{"status":"success","rtt_ms":12.5}`), nil
	}

	raw, err := f.service.Run(context.Background(), "p1", probe.Request{
		Kind: probe.KindPing, Target: "example.com",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","rtt_ms":12.5}`, string(raw))
}

func TestProbeService_ExtractProjectsResult(t *testing.T) {
	f := newProbeFixture(t)
	f.backend.RunProbeFunc = func(context.Context, string, probe.Request) (json.RawMessage, error) {
		return json.RawMessage(`{"records":[{"type":"A","value":"1.2.3.4"},{"type":"A","value":"5.6.7.8"}]}`), nil
	}

	raw, err := f.service.Run(context.Background(), "p1", probe.Request{
		Kind: probe.KindDNS, Target: "example.com", Extract: "records[].value",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `["1.2.3.4","5.6.7.8"]`, string(raw))
}

func TestProbeService_InvalidExtractRejectedLocally(t *testing.T) {
	f := newProbeFixture(t)

	_, err := f.service.Run(context.Background(), "p1", probe.Request{
		Kind: probe.KindPing, Target: "example.com", Extract: "records[",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, f.backend.Calls("RunProbe"), "invalid expressions never reach the backend")
}

func TestProbeService_EvaluatorStub(t *testing.T) {
	base := newSessionFixture(t)
	service, err := NewProbeService(ProbeServiceOptions{
		Backend:  base.backend,
		Sessions: base.manager,
		Evaluator: stubEvaluator{
			evaluate: func(expr string, data any) (any, error) {
				return nil, errors.New("projection exploded")
			},
		},
	})
	require.NoError(t, err)

	_, err = base.manager.Login(context.Background(), "p1", validCreds())
	require.NoError(t, err)

	_, err = service.Run(context.Background(), "p1", probe.Request{
		Kind: probe.KindPing, Target: "example.com", Extract: "anything",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProbeService_History(t *testing.T) {
	f := newProbeFixture(t)
	f.backend.ProbeHistoryFunc = func(_ context.Context, _ string, limit int) (json.RawMessage, error) {
		assert.Equal(t, 25, limit)
		return json.RawMessage(`[{"id":1}]`), nil
	}

	raw, err := f.service.History(context.Background(), "p1", 25)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(raw))
}

type stubEvaluator struct {
	validate func(expr string) error
	evaluate func(expr string, data any) (any, error)
}

func (s stubEvaluator) Validate(expr string) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(expr)
}

func (s stubEvaluator) Evaluate(expr string, data any) (any, error) {
	if s.evaluate == nil {
		return nil, nil
	}
	return s.evaluate(expr, data)
}

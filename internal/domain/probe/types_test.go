package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/probeops/console/internal/errors"
)

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindPing.Valid())
	assert.True(t, KindTraceroute.Valid())
	assert.True(t, KindDNS.Valid())
	assert.True(t, KindWhois.Valid())
	assert.False(t, Kind("portscan").Valid())
}

func TestRequest_Validate_Ping(t *testing.T) {
	assert.NoError(t, Request{Kind: KindPing, Target: "example.com"}.Validate())
	assert.NoError(t, Request{Kind: KindPing, Target: "10.0.0.1"}.Validate())
	assert.NoError(t, Request{Kind: KindTraceroute, Target: "2001:db8::1"}.Validate())

	err := Request{Kind: KindPing, Target: "not a host"}.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRequest_Validate_DNS(t *testing.T) {
	assert.NoError(t, Request{Kind: KindDNS, Target: "example.co.uk", RecordType: "MX"}.Validate())
	assert.NoError(t, Request{Kind: KindDNS, Target: "example.com"}.Validate())

	err := Request{Kind: KindDNS, Target: "example.com", RecordType: "BOGUS"}.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// A bare public suffix is not a registrable domain.
	err = Request{Kind: KindDNS, Target: "co.uk"}.Validate()
	require.Error(t, err)

	// IP literals are host targets, not whois/dns targets.
	err = Request{Kind: KindDNS, Target: "10.0.0.1"}.Validate()
	require.Error(t, err)
}

func TestRequest_Validate_Whois(t *testing.T) {
	assert.NoError(t, Request{Kind: KindWhois, Target: "probeops.com"}.Validate())

	err := Request{Kind: KindWhois, Target: ""}.Validate()
	require.Error(t, err)

	err = Request{Kind: KindWhois, Target: "localhost"}.Validate()
	require.Error(t, err)
}

func TestRequest_Validate_UnknownKind(t *testing.T) {
	err := Request{Kind: "portscan", Target: "example.com"}.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

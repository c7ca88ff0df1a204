package probe

// Package probe contains domain types for diagnostic probe requests. The
// console validates targets before forwarding; probe execution itself is the
// backend's business.

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"

	apperrors "github.com/probeops/console/internal/errors"
)

// Kind identifies a probe type.
type Kind string

const (
	KindPing       Kind = "ping"
	KindTraceroute Kind = "traceroute"
	KindDNS        Kind = "dns"
	KindWhois      Kind = "whois"
)

// Valid reports whether the kind is one of the known probe types.
func (k Kind) Valid() bool {
	switch k {
	case KindPing, KindTraceroute, KindDNS, KindWhois:
		return true
	default:
		return false
	}
}

// dnsRecordTypes lists the record types the backend resolver understands.
var dnsRecordTypes = map[string]bool{
	"A": true, "AAAA": true, "CNAME": true, "MX": true,
	"NS": true, "TXT": true, "SOA": true, "PTR": true,
}

// Request is a validated probe request ready to forward to the backend.
type Request struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target"`
	// RecordType applies to DNS probes only.
	RecordType string `json:"record_type,omitempty"`
	// Extract is an optional JMESPath expression applied to the raw result.
	Extract string `json:"extract,omitempty"`
}

// Validate checks the request shape. Host-style targets (ping, traceroute)
// accept hostnames or IP literals; domain-style targets (dns, whois) must
// carry a registrable domain.
func (r Request) Validate() error {
	if !r.Kind.Valid() {
		return apperrors.ValidationField("kind", "unknown probe type")
	}
	target := strings.TrimSpace(r.Target)
	if target == "" {
		return apperrors.ValidationField("target", "target is required")
	}

	switch r.Kind {
	case KindPing, KindTraceroute:
		if !validHostTarget(target) {
			return apperrors.ValidationField("target", "target must be a hostname or IP address")
		}
	case KindDNS:
		if r.RecordType != "" && !dnsRecordTypes[strings.ToUpper(r.RecordType)] {
			return apperrors.ValidationField("record_type", "unsupported DNS record type")
		}
		if !validDomainTarget(target) {
			return apperrors.ValidationField("target", "target must be a registrable domain")
		}
	case KindWhois:
		if !validDomainTarget(target) {
			return apperrors.ValidationField("target", "target must be a registrable domain")
		}
	}
	return nil
}

// validHostTarget accepts IP literals and plausible hostnames.
func validHostTarget(target string) bool {
	if net.ParseIP(target) != nil {
		return true
	}
	if strings.ContainsAny(target, " /\\@") {
		return false
	}
	return len(target) <= 253 && strings.Trim(target, ".") != ""
}

// validDomainTarget requires an effective TLD plus one, i.e. a domain a
// registrar would actually hand out.
func validDomainTarget(target string) bool {
	host := strings.TrimSuffix(strings.ToLower(target), ".")
	if host == "" || net.ParseIP(host) != nil {
		return false
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	return etld1 != ""
}

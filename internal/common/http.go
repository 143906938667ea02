package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating client address, trusting proxy headers
// when present.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		// first hop in the chain is the original client
		if first, _, ok := strings.Cut(fwd, ","); ok {
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		return fwd
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr)); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// ProxyList is a set of networks whose forwarding headers are trusted.
type ProxyList []*net.IPNet

// ParseProxies parses CIDRs or bare IPs. Invalid entries are logged and
// skipped.
func ParseProxies(entries []string) ProxyList {
	var list ProxyList
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if _, network, err := net.ParseCIDR(entry); err == nil {
			list = append(list, network)
			continue
		}

		// A bare IP is a single-host network
		ip := net.ParseIP(entry)
		if ip == nil {
			slog.Warn("realip: invalid trusted proxy, skipping", "entry", entry)
			continue
		}
		bits := 128
		if ip.To4() != nil {
			ip, bits = ip.To4(), 32
		}
		list = append(list, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return list
}

// Contains reports whether ip is inside any trusted network.
func (l ProxyList) Contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, network := range l {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the client that sent r. Forwarding
// headers count only when the connection comes from a trusted proxy;
// X-Real-IP wins over the first X-Forwarded-For entry.
func (l ProxyList) ClientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if !l.Contains(net.ParseIP(remote)) {
		return remote
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return remote
}

// TrustedRealIP rewrites r.RemoteAddr to the client IP resolved by
// ProxyList.ClientIP. Untrusted clients cannot spoof their address with
// forwarding headers, which keeps rate limiting per real client.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	proxies := ParseProxies(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.RemoteAddr = proxies.ClientIP(r)
			next.ServeHTTP(w, r)
		})
	}
}

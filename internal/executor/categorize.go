package executor

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"
)

type hintRule struct {
	needles []string
	all     bool // every needle must appear
	hint    string
}

// Order matters: proxy failures often also mention "connection refused".
var hintRules = []hintRule{
	{[]string{"proxy"}, false, "Proxy connection failed - verify proxy settings"},
	{[]string{"no such host", "dial tcp: lookup", "dns"}, false, "DNS resolution failed - verify the hostname and network"},
	{[]string{"connection refused"}, false, "Connection refused - check that the server is running and the port is correct"},
	{[]string{"connection reset"}, false, "Connection reset by server - it may have crashed or dropped the connection"},
	{[]string{"network is unreachable", "no route to host"}, false, "Network unreachable - check network connection and firewall settings"},
	{[]string{"unknown authority", "not trusted"}, false, "TLS certificate is not trusted by this machine"},
	{[]string{"certificate has expired", "expired"}, false, "TLS certificate has expired"},
	{[]string{"certificate is valid for", "doesn't match"}, false, "TLS hostname mismatch - certificate does not match the requested host"},
	{[]string{"tls", "x509", "certificate", "handshake"}, false, "TLS error - check the server certificate and TLS settings"},
	{[]string{"stopped after", "redirect"}, true, "Too many redirects - check the server configuration or URL"},
	{[]string{"unsupported protocol", "invalid url", "missing protocol scheme"}, false, "Invalid URL - check the URL format and protocol (http/https)"},
	{[]string{"eof"}, false, "Connection closed unexpectedly - the server terminated the connection"},
	{[]string{"timeout", "timed out"}, false, "Connection timeout - the server took too long to respond"},
}

// Hint turns a transport error into a short explanation of the likely cause
func Hint(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - try increasing the timeout"
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return "TLS certificate signed by unknown authority"
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return "Connection refused - check that the server is running and the port is correct"
		case syscall.ECONNRESET:
			return "Connection reset by server - it may have crashed or dropped the connection"
		case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return "Network unreachable - check network connection and firewall settings"
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNS resolution failed - verify the hostname and network"
	}

	return hintFromText(err.Error())
}

func hintFromText(msg string) string {
	lower := strings.ToLower(msg)
	for _, rule := range hintRules {
		if rule.matches(lower) {
			return rule.hint
		}
	}
	return "Request failed: " + msg
}

func (r hintRule) matches(s string) bool {
	for _, n := range r.needles {
		found := strings.Contains(s, n)
		if r.all && !found {
			return false
		}
		if !r.all && found {
			return true
		}
	}
	return r.all
}

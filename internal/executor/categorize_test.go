package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "Request timeout"},
		{"cancelled", context.Canceled, "Request cancelled"},
		{"refused text", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), "Connection refused"},
		{"proxy before refused", errors.New("proxyconnect tcp: connection refused"), "Proxy connection failed"},
		{"dns", errors.New("dial tcp: lookup nowhere.invalid: no such host"), "DNS resolution failed"},
		{"redirects", errors.New("stopped after 10 redirects"), "Too many redirects"},
		{"tls", errors.New("remote error: tls: handshake failure"), "TLS error"},
		{"unknown", errors.New("something odd"), "Request failed: something odd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hint(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("Hint() = %q, want empty", got)
				}
				return
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Hint() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

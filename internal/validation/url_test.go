package validation

import (
	"errors"
	"net"
	"strings"
	"testing"
)

func TestNewEndpointValidator(t *testing.T) {
	v := NewEndpointValidator()
	if !v.AllowLocalhost {
		t.Error("Expected AllowLocalhost to be true for the local backend")
	}
	if v.AddScheme {
		t.Error("Expected AddScheme to be false for endpoints")
	}
}

func TestNewArticleURLValidator(t *testing.T) {
	v := NewArticleURLValidator()
	if v.AllowLocalhost {
		t.Error("Expected AllowLocalhost to be false for article links")
	}
	if v.AllowPrivateIPs {
		t.Error("Expected AllowPrivateIPs to be false for article links")
	}
}

func TestEndpointValidation(t *testing.T) {
	v := NewEndpointValidator()

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  error
	}{
		{name: "default backend", input: "http://localhost:3000/api/news", expected: "http://localhost:3000/api/news"},
		{name: "loopback ip", input: "http://127.0.0.1:41234/api/news", expected: "http://127.0.0.1:41234/api/news"},
		{name: "private network", input: "http://192.168.1.20/api/news", expected: "http://192.168.1.20/api/news"},
		{name: "remote https", input: " https://news.example.org/api/news ", expected: "https://news.example.org/api/news"},
		{name: "empty", input: "", wantErr: ErrEmptyURL},
		{name: "ftp scheme", input: "ftp://example.org/news", wantErr: ErrUnsafeScheme},
		{name: "missing scheme", input: "localhost:3000/api/news", wantErr: ErrUnsafeScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateAndNormalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndNormalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestArticleURLValidation(t *testing.T) {
	v := NewArticleURLValidator()

	tests := []struct {
		name     string
		input    string
		expected string
		errorMsg string
	}{
		{name: "https link", input: "https://www3.nhk.or.jp/news/html/20250101/k1.html", expected: "https://www3.nhk.or.jp/news/html/20250101/k1.html"},
		{name: "scheme added", input: "news.example.org/a", expected: "https://news.example.org/a"},
		{name: "image with query", input: "https://img.example.org/a.jpg?w=640", expected: "https://img.example.org/a.jpg?w=640"},
		{name: "javascript", input: "javascript:alert(1)", errorMsg: "http or https"},
		{name: "file", input: "file:///etc/passwd", errorMsg: "http or https"},
		{name: "localhost", input: "http://localhost:8080/admin", errorMsg: "localhost"},
		{name: "loopback", input: "http://127.0.0.1/", errorMsg: "localhost"},
		{name: "private ip", input: "http://10.1.2.3/", errorMsg: "private IP"},
		{name: "ipv6 link local", input: "http://[fe80::1]/", errorMsg: "private IP"},
		{name: "unroutable", input: "http://0.0.0.0/", errorMsg: "unroutable"},
		{name: "html injection", input: "https://a.example.org/<script>", errorMsg: "invalid characters"},
		{name: "script in query", input: "https://a.example.org/?x=javascript:alert(1)", errorMsg: "suspicious"},
		{name: "traversal", input: "https://a.example.org/x/../../etc", errorMsg: "traversal"},
		{name: "too long", input: "https://a.example.org/" + strings.Repeat("a", 5000), errorMsg: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.errorMsg != "" {
				if err == nil {
					t.Fatalf("ValidateAndNormalize(%q) = %q, want error containing %q", tt.input, got, tt.errorMsg)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error %q does not contain %q", err, tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndNormalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValid(t *testing.T) {
	v := NewArticleURLValidator()
	if !v.Valid("https://example.org/") {
		t.Error("expected public https URL to be valid")
	}
	if v.Valid("") {
		t.Error("expected empty URL to be invalid")
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"10.0.0.1", true},
		{"172.16.5.4", true},
		{"172.32.0.1", false},
		{"192.168.0.1", true},
		{"169.254.1.1", true},
		{"8.8.8.8", false},
		{"fd00::1", true},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		if got := isPrivateIP(net.ParseIP(tt.ip)); got != tt.private {
			t.Errorf("isPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
		}
	}
}

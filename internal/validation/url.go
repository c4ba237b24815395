package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL     = errors.New("URL cannot be empty")
	ErrUnsafeScheme = errors.New("URL must use http or https protocol")
)

// URLValidator checks URLs that newsdesk either calls (the news endpoint) or
// hands to an external program (article links and images).
type URLValidator struct {
	// AllowLocalhost determines if localhost URLs are permitted
	AllowLocalhost bool
	// AllowPrivateIPs determines if private IP addresses are permitted
	AllowPrivateIPs bool
	// AddScheme prefixes https:// to scheme-less input instead of rejecting it
	AddScheme bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewEndpointValidator accepts the local development backend.
func NewEndpointValidator() *URLValidator {
	return &URLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		AddScheme:       false,
		MaxLength:       2048,
	}
}

// NewArticleURLValidator is used before a link leaves the process, so local
// and private targets are refused.
func NewArticleURLValidator() *URLValidator {
	return &URLValidator{
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		AddScheme:       true,
		MaxLength:       4096,
	}
}

// ValidateAndNormalize validates a URL and returns the normalized version
func (v *URLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", ErrEmptyURL
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}

	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	lower := strings.ToLower(input)
	hasHTTP := strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
	if !hasHTTP {
		if strings.Contains(lower, "://") || strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "file:") {
			return "", ErrUnsafeScheme
		}
		if !v.AddScheme {
			return "", ErrUnsafeScheme
		}
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", ErrUnsafeScheme
	}

	if parsedURL.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if err := v.validateHostSecurity(parsedURL.Hostname()); err != nil {
		return "", err
	}

	if err := validatePathSecurity(parsedURL); err != nil {
		return "", err
	}

	return parsedURL.String(), nil
}

// Valid reports whether input passes ValidateAndNormalize.
func (v *URLValidator) Valid(input string) bool {
	_, err := v.ValidateAndNormalize(input)
	return err == nil
}

func (v *URLValidator) validateHostSecurity(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	if isUnroutable(hostname) {
		return fmt.Errorf("unroutable host %s", hostname)
	}

	return nil
}

func validatePathSecurity(parsedURL *url.URL) error {
	if strings.Contains(parsedURL.Path, "/../") || strings.HasSuffix(parsedURL.Path, "/..") {
		return fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	query := strings.ToLower(parsedURL.RawQuery)
	if strings.Contains(query, "<script") || strings.Contains(query, "javascript:") {
		return fmt.Errorf("suspicious query parameters detected")
	}

	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost") ||
		strings.HasPrefix(hostname, "127.")
}

var privateBlocks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"127.0.0.0/8",
	"fc00::/7",
	"fe80::/10",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func isPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

func isUnroutable(hostname string) bool {
	switch hostname {
	case "0.0.0.0", "255.255.255.255", "::":
		return true
	}
	return false
}

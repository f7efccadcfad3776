// Package navigation enforces an operator-configured URL policy on browser
// navigation: glob patterns matched against the target's host, with denied
// patterns taking precedence over allowed ones.
package navigation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// PolicyViolation is returned when a navigation target is rejected. It
// surfaces as a tool-level error, so the model sees the rejection as a tool
// result and can react.
type PolicyViolation struct {
	URL    string
	Reason string
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("navigation to %s blocked: %s", e.URL, e.Reason)
}

// Guard matches navigation targets against compiled host patterns. A guard
// with no allowed patterns permits every host not explicitly denied.
type Guard struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// NewGuard compiles the pattern lists. Patterns match the target URL's
// host, e.g. "*.example.com" or "docs.example.*".
func NewGuard(allowed, denied []string) (*Guard, error) {
	g := &Guard{}

	for _, pattern := range allowed {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		g.allowedPatterns = append(g.allowedPatterns, compiled)
	}

	for _, pattern := range denied {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		g.deniedPatterns = append(g.deniedPatterns, compiled)
	}

	return g, nil
}

// Allow checks a navigation target against the policy.
func (g *Guard) Allow(target string) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return &PolicyViolation{URL: target, Reason: "target is not a valid URL"}
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return &PolicyViolation{URL: target, Reason: "target has no host"}
	}

	// Denied patterns take precedence.
	for _, pattern := range g.deniedPatterns {
		if pattern.Match(host) {
			return &PolicyViolation{URL: target, Reason: fmt.Sprintf("host %s is denied by policy", host)}
		}
	}

	if len(g.allowedPatterns) == 0 {
		return nil
	}

	for _, pattern := range g.allowedPatterns {
		if pattern.Match(host) {
			return nil
		}
	}

	return &PolicyViolation{URL: target, Reason: fmt.Sprintf("host %s is not in the allowed list", host)}
}

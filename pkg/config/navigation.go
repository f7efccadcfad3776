package config

import (
	"sync"

	"github.com/gobwas/glob"
)

const (
	// SectionIDNavigation is the identifier for the navigation policy section
	SectionIDNavigation = "navigation"
)

// NavigationSection manages the host patterns the navigation guard
// enforces on browser navigation.
type NavigationSection struct {
	AllowedHosts []string
	DeniedHosts  []string
	mu           sync.RWMutex
}

// NewNavigationSection creates a new navigation policy section. Empty
// lists mean every host is allowed.
func NewNavigationSection() *NavigationSection {
	return &NavigationSection{}
}

// ID returns the section identifier.
func (s *NavigationSection) ID() string {
	return SectionIDNavigation
}

// Title returns the section title.
func (s *NavigationSection) Title() string {
	return "Navigation Policy"
}

// Description returns the section description.
func (s *NavigationSection) Description() string {
	return "Glob patterns matched against navigation target hosts. Denied patterns take precedence; an empty allowed list permits every host not denied."
}

// Data returns the current configuration data.
func (s *NavigationSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"allowed_hosts": toInterfaceSlice(s.AllowedHosts),
		"denied_hosts":  toInterfaceSlice(s.DeniedHosts),
	}
}

// SetData updates the configuration from the provided data.
func (s *NavigationSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if allowed, ok := toStringSlice(data["allowed_hosts"]); ok {
		s.AllowedHosts = allowed
	}
	if denied, ok := toStringSlice(data["denied_hosts"]); ok {
		s.DeniedHosts = denied
	}
	return nil
}

// Validate checks that every pattern compiles.
func (s *NavigationSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pattern := range append(append([]string{}, s.AllowedHosts...), s.DeniedHosts...) {
		if _, err := glob.Compile(pattern); err != nil {
			return err
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *NavigationSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AllowedHosts = nil
	s.DeniedHosts = nil
}

// GetAllowedHosts returns the allowed host patterns.
func (s *NavigationSection) GetAllowedHosts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.AllowedHosts...)
}

// GetDeniedHosts returns the denied host patterns.
func (s *NavigationSection) GetDeniedHosts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.DeniedHosts...)
}

// SetHosts replaces both pattern lists.
func (s *NavigationSection) SetHosts(allowed, denied []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AllowedHosts = append([]string(nil), allowed...)
	s.DeniedHosts = append([]string(nil), denied...)
}

func toInterfaceSlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toStringSlice(raw interface{}) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

package actor

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/mobility/internal/fault"
)

// Role is the capacity an actor acts in for a session.
type Role string

const (
	RoleAssociate Role = "associate"
	RoleManager   Role = "manager"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAssociate || r == RoleManager
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q: %w", s, fault.ErrValidation)
	}
	return r, nil
}

// Actor is a person using the system
type Actor struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email,omitempty"`
	Role                Role       `json:"role,omitempty"`
	Title               string     `json:"title,omitempty"`
	Department          string     `json:"department,omitempty"`
	YearsExperience     int        `json:"yearsExperience,omitempty"`
	Skills              []string   `json:"skills"`
	DesiredTechnologies []string   `json:"desiredTechnologies"`
	OpenToOpportunities bool       `json:"openToOpportunities"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`

	// Predefined marks entries served from the read-only directories.
	Predefined bool `json:"-"`
}

// AllSkills returns declared skills followed by desired technologies.
func (a Actor) AllSkills() []string {
	out := make([]string, 0, len(a.Skills)+len(a.DesiredTechnologies))
	out = append(out, a.Skills...)
	return append(out, a.DesiredTechnologies...)
}

// HasMinimumProfile reports whether at least one skill is declared.
func (a Actor) HasMinimumProfile() bool {
	for _, s := range a.Skills {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Validate checks the fields every stored actor must carry.
func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("actor id required: %w", fault.ErrValidation)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("actor %s: name required: %w", a.ID, fault.ErrValidation)
	}
	if a.Role != "" && !a.Role.Valid() {
		return fmt.Errorf("actor %s: unknown role %q: %w", a.ID, a.Role, fault.ErrValidation)
	}
	if a.YearsExperience < 0 {
		return fmt.Errorf("actor %s: negative experience: %w", a.ID, fault.ErrValidation)
	}
	return nil
}

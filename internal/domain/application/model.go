package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/mobility/internal/fault"
)

// Status is an application's lifecycle state.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusDeclined Status = "Declined"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// ParseDecision parses a manager decision. Only terminal statuses are decisions.
func ParseDecision(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accepted", "accept":
		return StatusAccepted, nil
	case "declined", "decline":
		return StatusDeclined, nil
	default:
		return "", fmt.Errorf("unknown decision %q: %w", s, ErrInvalidInput)
	}
}

// ValidateTransition checks a status change against the lifecycle.
func ValidateTransition(from, to Status) error {
	if !to.Terminal() {
		return fmt.Errorf("cannot move to %s: %w", to, ErrInvalidInput)
	}
	if from != StatusPending {
		return fmt.Errorf("application already %s: %w", from, ErrAlreadyDecided)
	}
	return nil
}

// Snapshot freezes the associate's profile at submission time.
type Snapshot struct {
	Name                string   `json:"name"`
	Email               string   `json:"email,omitempty"`
	Title               string   `json:"title,omitempty"`
	Department          string   `json:"department,omitempty"`
	YearsExperience     int      `json:"yearsExperience"`
	Skills              []string `json:"skills"`
	DesiredTechnologies []string `json:"desiredTechnologies"`
}

// Application links an associate to a project.
type Application struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"projectId"`
	ProjectTitle string     `json:"projectTitle,omitempty"`
	AssociateID  string     `json:"associateId"`
	Associate    Snapshot   `json:"associate"`
	CoverText    string     `json:"coverText,omitempty"`
	MatchScore   int        `json:"matchScore"`
	Status       Status     `json:"status"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy    string     `json:"updatedBy,omitempty"`
}

// Active reports whether the application still blocks a new one under the reject_active policy.
func (a Application) Active() bool {
	return a.Status == StatusPending || a.Status == StatusAccepted
}

// Validate checks the fields every stored application must carry.
func (a Application) Validate() error {
	if a.ProjectID <= 0 {
		return fmt.Errorf("application %d: project reference required: %w", a.ID, fault.ErrValidation)
	}
	if strings.TrimSpace(a.AssociateID) == "" {
		return fmt.Errorf("application %d: associate reference required: %w", a.ID, fault.ErrValidation)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("application %d: unknown status %q: %w", a.ID, a.Status, fault.ErrValidation)
	}
	if a.MatchScore < 0 || a.MatchScore > 100 {
		return fmt.Errorf("application %d: match score %d out of range: %w", a.ID, a.MatchScore, fault.ErrValidation)
	}
	return nil
}

// DuplicatePolicy governs repeat applications for the same associate and project.
type DuplicatePolicy string

const (
	// DuplicateRejectActive blocks a new application while a Pending or Accepted one exists.
	DuplicateRejectActive DuplicatePolicy = "reject_active"
	// DuplicateAllow accepts any number of applications per pair.
	DuplicateAllow DuplicatePolicy = "allow"
)

// Valid reports whether p is a known policy.
func (p DuplicatePolicy) Valid() bool {
	return p == DuplicateRejectActive || p == DuplicateAllow
}

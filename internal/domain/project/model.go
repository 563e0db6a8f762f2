package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/mobility/internal/domain/match"
	"github.com/rpggio/mobility/internal/fault"
)

// Urgency drives a project's application deadline.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Window returns how long applications stay open for the urgency tier.
func (u Urgency) Window() time.Duration {
	switch u {
	case UrgencyHigh:
		return 14 * 24 * time.Hour
	case UrgencyMedium:
		return 21 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// ParseUrgency normalizes an urgency name. Unknown names keep the default window.
func ParseUrgency(s string) Urgency {
	return Urgency(strings.ToLower(strings.TrimSpace(s)))
}

// DeadlineFor derives a deadline from the creation time and urgency.
func DeadlineFor(createdAt time.Time, u Urgency) time.Time {
	return createdAt.Add(u.Window())
}

// Project is a posted internal opportunity
type Project struct {
	ID                    int64      `json:"id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description,omitempty"`
	Department            string     `json:"department,omitempty"`
	Location              string     `json:"location,omitempty"`
	RequiredSkills        []string   `json:"requiredSkills"`
	PreferredSkills       []string   `json:"preferredSkills"`
	ManagerID             string     `json:"managerId"`
	ManagerName           string     `json:"managerName,omitempty"`
	ApplicationWindowOpen bool       `json:"applicationWindowOpen"`
	ViewCount             int64      `json:"viewCount"`
	ApplicationCount      int64      `json:"applicationCount"`
	Urgency               Urgency    `json:"urgency,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	Deadline              time.Time  `json:"deadline"`
	UpdatedAt             *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy             string     `json:"updatedBy,omitempty"`
}

// Validate checks the fields every stored project must carry.
func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("project %d: title required: %w", p.ID, fault.ErrValidation)
	}
	if strings.TrimSpace(p.ManagerID) == "" {
		return fmt.Errorf("project %d: owning manager required: %w", p.ID, fault.ErrValidation)
	}
	if p.ViewCount < 0 || p.ApplicationCount < 0 {
		return fmt.Errorf("project %d: negative counter: %w", p.ID, fault.ErrValidation)
	}
	return nil
}

// Listing pairs a project with its match against the viewing actor.
type Listing struct {
	Project Project       `json:"project"`
	Match   *match.Result `json:"match,omitempty"`
}

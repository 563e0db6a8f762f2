package analytics

import (
	"github.com/rpggio/mobility/internal/domain/application"
	"github.com/rpggio/mobility/internal/domain/match"
)

// StatusCounts tallies applications by status.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
}

// Add counts one application.
func (c *StatusCounts) Add(s application.Status) {
	switch s {
	case application.StatusPending:
		c.Pending++
	case application.StatusAccepted:
		c.Accepted++
	case application.StatusDeclined:
		c.Declined++
	}
}

// Total returns the number of counted applications.
func (c StatusCounts) Total() int {
	return c.Pending + c.Accepted + c.Declined
}

// AssociateReport summarizes an associate's activity and prospects.
type AssociateReport struct {
	ActorID           string             `json:"actorId"`
	Applications      StatusCounts       `json:"applications"`
	AverageMatchScore float64            `json:"averageMatchScore"`
	OpenProjects      int                `json:"openProjects"`
	OpenByTier        map[match.Tier]int `json:"openByTier"`
}

// ProjectStats summarizes one owned project.
type ProjectStats struct {
	ProjectID             int64        `json:"projectId"`
	Title                 string       `json:"title"`
	ApplicationWindowOpen bool         `json:"applicationWindowOpen"`
	Views                 int64        `json:"views"`
	Applications          StatusCounts `json:"applications"`
	AverageMatchScore     float64      `json:"averageMatchScore"`
}

// ManagerReport summarizes a manager's projects.
type ManagerReport struct {
	ManagerID    string         `json:"managerId"`
	Projects     []ProjectStats `json:"projects"`
	OpenProjects int            `json:"openProjects"`
	TotalViews   int64          `json:"totalViews"`
	Applications StatusCounts   `json:"applications"`
}

package mcp

import (
	"github.com/rpggio/mobility/internal/authz"
	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/project"
)

type NoParams struct{}

type LoginParams struct {
	ActorID     string `json:"actor_id" jsonschema:"Directory or self-service identifier of the person logging in"`
	DisplayName string `json:"display_name,omitempty" jsonschema:"Name shown for a first-time login"`
}

type SelectRoleParams struct {
	Role string `json:"role" jsonschema:"associate or manager; fixed for the rest of the session"`
}

type CheckAccessParams struct {
	Area string `json:"area" jsonschema:"shared, associate, manager, discovery or analytics"`
}

type GetProfileParams struct {
	ID string `json:"id,omitempty" jsonschema:"Actor id (omit for the caller's own profile)"`
}

type ProfileParams struct {
	Name                string   `json:"name"`
	Email               string   `json:"email,omitempty"`
	Title               string   `json:"title,omitempty"`
	Department          string   `json:"department,omitempty"`
	YearsExperience     int      `json:"years_experience,omitempty"`
	Skills              []string `json:"skills,omitempty" jsonschema:"Declared skills; at least one unlocks discovery"`
	DesiredTechnologies []string `json:"desired_technologies,omitempty"`
	OpenToOpportunities bool     `json:"open_to_opportunities,omitempty"`
}

func (p ProfileParams) request() actor.ProfileRequest {
	return actor.ProfileRequest{
		Name:                p.Name,
		Email:               p.Email,
		Title:               p.Title,
		Department:          p.Department,
		YearsExperience:     p.YearsExperience,
		Skills:              p.Skills,
		DesiredTechnologies: p.DesiredTechnologies,
		OpenToOpportunities: p.OpenToOpportunities,
	}
}

type DiscoverProjectsParams struct {
	IncludeClosed bool   `json:"include_closed,omitempty" jsonschema:"Also rank projects whose application window is closed"`
	MinTier       string `json:"min_tier,omitempty" jsonschema:"high, medium, low or none"`
	Limit         int    `json:"limit,omitempty"`
}

type ProjectIDParams struct {
	ID int64 `json:"id"`
}

type ProjectParams struct {
	Title                 string   `json:"title"`
	Description           string   `json:"description,omitempty"`
	Department            string   `json:"department,omitempty"`
	Location              string   `json:"location,omitempty"`
	RequiredSkills        []string `json:"required_skills,omitempty"`
	PreferredSkills       []string `json:"preferred_skills,omitempty"`
	Urgency               string   `json:"urgency,omitempty" jsonschema:"high (14 days), medium (21 days) or low (30 days)"`
	ApplicationWindowOpen *bool    `json:"application_window_open,omitempty"`
}

func (p ProjectParams) request() project.CreateRequest {
	return project.CreateRequest{
		Title:                 p.Title,
		Description:           p.Description,
		Department:            p.Department,
		Location:              p.Location,
		RequiredSkills:        p.RequiredSkills,
		PreferredSkills:       p.PreferredSkills,
		Urgency:               project.ParseUrgency(p.Urgency),
		ApplicationWindowOpen: p.ApplicationWindowOpen,
	}
}

type UpdateProjectParams struct {
	ID                    int64    `json:"id"`
	Title                 string   `json:"title"`
	Description           string   `json:"description,omitempty"`
	Department            string   `json:"department,omitempty"`
	Location              string   `json:"location,omitempty"`
	RequiredSkills        []string `json:"required_skills,omitempty"`
	PreferredSkills       []string `json:"preferred_skills,omitempty"`
	Urgency               string   `json:"urgency,omitempty"`
	ApplicationWindowOpen *bool    `json:"application_window_open,omitempty" jsonschema:"Omit to keep the current window state"`
}

func (p UpdateProjectParams) request() project.UpdateRequest {
	return ProjectParams{
		Title:                 p.Title,
		Description:           p.Description,
		Department:            p.Department,
		Location:              p.Location,
		RequiredSkills:        p.RequiredSkills,
		PreferredSkills:       p.PreferredSkills,
		Urgency:               p.Urgency,
		ApplicationWindowOpen: p.ApplicationWindowOpen,
	}.request()
}

type ApplicationIDParams struct {
	ID int64 `json:"id"`
}

type SubmitApplicationParams struct {
	ProjectID int64  `json:"project_id"`
	CoverText string `json:"cover_text,omitempty"`
}

type DecideApplicationParams struct {
	ID       int64  `json:"id"`
	Decision string `json:"decision" jsonschema:"accept or decline"`
}

// LogoutResponse acknowledges a closed session.
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

// SelectRoleResponse carries the session after its role is fixed.
type SelectRoleResponse struct {
	Session identity.Session `json:"session"`
}

// CheckAccessResponse is a navigation decision for an area.
type CheckAccessResponse struct {
	Area string `json:"area"`
	authz.Decision
}

package authz

// Scope is the role an operation is restricted to.
type Scope int

const (
	ScopeAnyRole Scope = iota
	ScopeAssociate
	ScopeManager
)

// Operation is a guarded capability.
type Operation struct {
	Name         string
	Scope        Scope
	NeedsProfile bool
}

var (
	OpProfileRead  = Operation{Name: "profile.read"}
	OpProfileWrite = Operation{Name: "profile.write"}

	OpProjectBrowse    = Operation{Name: "project.browse"}
	OpProjectDiscover  = Operation{Name: "project.discover", Scope: ScopeAssociate, NeedsProfile: true}
	OpProjectView      = Operation{Name: "project.view", Scope: ScopeAssociate}
	OpProjectRead      = Operation{Name: "project.read", Scope: ScopeManager}
	OpProjectListOwned = Operation{Name: "project.list_owned", Scope: ScopeManager}
	OpProjectCreate    = Operation{Name: "project.create", Scope: ScopeManager}
	OpProjectUpdate    = Operation{Name: "project.update", Scope: ScopeManager}
	OpProjectDelete    = Operation{Name: "project.delete", Scope: ScopeManager}
	OpProjectToggle    = Operation{Name: "project.toggle", Scope: ScopeManager}

	OpApplicationList   = Operation{Name: "application.list"}
	OpApplicationRead   = Operation{Name: "application.read"}
	OpApplicationSubmit = Operation{Name: "application.submit", Scope: ScopeAssociate}
	OpApplicationDecide = Operation{Name: "application.decide", Scope: ScopeManager}

	OpAnalyticsAssociate = Operation{Name: "analytics.associate", Scope: ScopeAssociate, NeedsProfile: true}
	OpAnalyticsManager   = Operation{Name: "analytics.manager", Scope: ScopeManager}
)

// Area is a role-scoped navigation area of the front-end.
type Area string

const (
	AreaShared    Area = "shared"
	AreaAssociate Area = "associate"
	AreaManager   Area = "manager"
	AreaDiscovery Area = "discovery"
	AreaAnalytics Area = "analytics"
)

var areaOps = map[Area]Operation{
	AreaShared:    {Name: "area.shared"},
	AreaAssociate: {Name: "area.associate", Scope: ScopeAssociate},
	AreaManager:   {Name: "area.manager", Scope: ScopeManager},
	AreaDiscovery: OpProjectDiscover,
	AreaAnalytics: OpAnalyticsAssociate,
}

// Redirect targets for denied navigation.
const (
	RedirectLogin      = "/login"
	RedirectSelectRole = "/select-role"
	RedirectProfile    = "/profile"
	RedirectForbidden  = "/forbidden"
)

// Decision is the outcome of a navigation check.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

package role

const (
	PermAll           = "all"
	PermDashboardView = "dashboard.view"
	PermModelsView    = "models.view"
	PermModelsManage  = "models.manage"
	PermTemplatesView = "templates.view"
	PermTemplatesEdit = "templates.manage"
	PermFollowUpsView = "followups.view"
	PermFollowUpsEdit = "followups.manage"
	PermKnowledgeView = "knowledge.view"
	PermKnowledgeEdit = "knowledge.manage"
	PermWidgetView    = "widget.view"
	PermWidgetManage  = "widget.manage"
	PermUsersView     = "users.view"
	PermUsersManage   = "users.manage"
	PermRolesView     = "roles.view"
	PermRolesManage   = "roles.manage"
	PermTenantsView   = "tenants.view"
	PermTenantsManage = "tenants.manage"
)

type Permission struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       string `json:"group"`
}

// Catalog is every permission a role or user may hold.
var Catalog = []Permission{
	{PermAll, "Full access to every feature", "system"},
	{PermDashboardView, "View the dashboard overview", "dashboard"},
	{PermModelsView, "View AI model connections", "models"},
	{PermModelsManage, "Create, edit and delete AI model connections", "models"},
	{PermTemplatesView, "View prompt templates", "templates"},
	{PermTemplatesEdit, "Create, edit and delete prompt templates", "templates"},
	{PermFollowUpsView, "View follow-up flows", "followups"},
	{PermFollowUpsEdit, "Build and edit follow-up flows", "followups"},
	{PermKnowledgeView, "View knowledge sources", "knowledge"},
	{PermKnowledgeEdit, "Add, sync and delete knowledge sources", "knowledge"},
	{PermWidgetView, "View widget settings and embed code", "widget"},
	{PermWidgetManage, "Change, import and reset widget settings", "widget"},
	{PermUsersView, "View users", "users"},
	{PermUsersManage, "Create, edit and delete users", "users"},
	{PermRolesView, "View roles", "roles"},
	{PermRolesManage, "Create, edit and delete roles", "roles"},
	{PermTenantsView, "View tenants", "tenants"},
	{PermTenantsManage, "Create, edit and delete tenants", "tenants"},
}

func IsKnownPermission(name string) bool {
	for _, p := range Catalog {
		if p.Name == name {
			return true
		}
	}
	return false
}

// UnknownPermissions returns the members of perms missing from the catalog.
func UnknownPermissions(perms []string) []string {
	var unknown []string
	for _, p := range perms {
		if !IsKnownPermission(p) {
			unknown = append(unknown, p)
		}
	}
	return unknown
}

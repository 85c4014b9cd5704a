package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Users", "admin")

	assert.Equal(t, "Users", ctx.PageTitle)
	assert.Equal(t, "admin", ctx.ActiveSection)
	assert.Empty(t, ctx.Breadcrumbs)
}

func TestAddBreadcrumbChains(t *testing.T) {
	ctx := NewContext("Edit User", "admin").
		AddBreadcrumb("Users", "/admin/user", false).
		AddBreadcrumb("Edit", "", true)

	assert.Equal(t, []Breadcrumb{
		{Title: "Users", URL: "/admin/user"},
		{Title: "Edit", Active: true},
	}, ctx.Breadcrumbs)
}

func TestIsSectionActive(t *testing.T) {
	ctx := NewContext("Dashboard", "dashboard")

	assert.True(t, ctx.IsSectionActive("dashboard"))
	assert.False(t, ctx.IsSectionActive("admin"))
}

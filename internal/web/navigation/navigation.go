// Package navigation carries the page state the base layout renders: the
// title, which menu section is active and the breadcrumb trail.
package navigation

// Breadcrumb is one link in the trail above the page content.
type Breadcrumb struct {
	Title  string
	URL    string
	Active bool
}

// Context is handed to the templates as part of the render data.
type Context struct {
	ActiveSection string
	PageTitle     string
	Breadcrumbs   []Breadcrumb
}

// NewContext creates the navigation state for one page render.
func NewContext(pageTitle, activeSection string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		Breadcrumbs:   make([]Breadcrumb, 0),
	}
}

// AddBreadcrumb appends one link to the trail and returns the context so
// calls chain.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, Breadcrumb{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsSectionActive reports whether the named menu section is the active one.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

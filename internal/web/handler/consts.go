package handler

const (
	// BaseLayout is the shared shell every page template renders into.
	BaseLayout = "layouts/base"

	// RootPath prefixes absolute route paths.
	RootPath = "/"

	// RouterRootPath registers a handler at a route group's own path.
	RouterRootPath = ""

	// ErrNilACDFatalLogMsg is logged fatally when Init receives a nil app,
	// config or database handle.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)

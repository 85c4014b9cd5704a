package web

import (
	"embed"
	"io/fs"
	"path"
)

var (
	//go:embed static/*
	staticFiles embed.FS

	//go:embed templates/*
	templateFiles embed.FS
)

// templatesFS serves the embedded templates with the templates/ prefix
// stripped, which is how the template engine expects to see them.
type templatesFS struct {
	content embed.FS
}

func (e templatesFS) Open(name string) (fs.File, error) {
	return e.content.Open(path.Join("templates", name))
}

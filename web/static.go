// Package web embeds the single-page front-end.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var files embed.FS

// Static returns the front-end rooted at its index.html.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic("failed to create sub-filesystem: " + err.Error())
	}
	return sub
}

package assets

import (
	"embed"
	"io/fs"

	"golang.org/x/image/font/gofont/gomono"
)

// FontTTF is the monospace face used for every text size.
var FontTTF = gomono.TTF

//go:embed apps
var appsFS embed.FS

// Apps is the built-in app tree, used when no apps directory is on disk.
// Its root holds manifest.json.
var Apps fs.FS

// AppsRoot is the directory inside Apps to scan.
const AppsRoot = "."

func init() {
	// Embed paths include the leading directory; strip it for scanning at '.'.
	sub, err := fs.Sub(appsFS, "apps")
	if err != nil {
		panic(err)
	}
	Apps = sub
}

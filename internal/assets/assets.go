package assets

import (
	"embed"

	"github.com/benbjohnson/hashfs"
)

//go:embed css/*.css
var FS embed.FS

var HashFS = hashfs.NewFS(FS)

// CrudCSS is the fingerprinted URL of the page engine stylesheet.
func CrudCSS() string {
	return "/assets/" + HashFS.HashName("css/crud.css")
}

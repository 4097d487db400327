package assets

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/benbjohnson/hashfs"
	"github.com/stretchr/testify/require"
)

func TestCrudCSSIsFingerprinted(t *testing.T) {
	href := CrudCSS()
	require.True(t, strings.HasPrefix(href, "/assets/css/crud-"))
	require.True(t, strings.HasSuffix(href, ".css"))

	name, hash := hashfs.ParseName(strings.TrimPrefix(href, "/assets/"))
	require.Equal(t, "css/crud.css", name)
	require.NotEmpty(t, hash)
}

func TestLayout(t *testing.T) {
	body := templ.Raw(`<p id="body">hi</p>`)
	var buf bytes.Buffer
	err := Layout("Members <admin>", map[string]any{}, body).Render(context.Background(), &buf)
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "<title>Members &lt;admin&gt;</title>")
	require.Contains(t, out, `<p id="body">hi</p>`)
	require.Contains(t, out, CrudCSS())

	buf.Reset()
	require.NoError(t, Layout("x", map[string]any{"title": "Edit Member"}, nil).Render(context.Background(), &buf))
	require.Contains(t, buf.String(), "<title>Edit Member</title>")
}

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func clean(t *testing.T, in string) string {
	t.Helper()
	out, err := DefaultContentFilter().Clean(in)
	require.NoError(t, err)
	return out
}

func TestContentFilter_RemovesScriptStyle(t *testing.T) {
	out := clean(t, `
<body>
    <div id="main">Hello</div>
    <script>alert("hi")</script>
    <style>.x {}</style>
</body>`)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.Contains(t, out, `id="main"`)
}

func TestContentFilter_RemovesCommentsAndIndentation(t *testing.T) {
	out := clean(t, `
<body>
    <!-- comment -->
    <div>Text</div>
    <span>a</span> <span>b</span>
</body>`)

	assert.NotContains(t, out, "comment")
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "<div>Text</div>")
	assert.Contains(t, out, "<span>a</span> <span>b</span>", "inline spaces survive")
}

func TestContentFilter_Attributes(t *testing.T) {
	out := clean(t, `
<body>
    <a href="https://example.com" class="link" id="x" data-x="1" aria-label="Go there" onclick="track()">Go</a>
    <div role="button" style="color:red" tabindex="0">Div</div>
    <img src="x.jpg" srcset="a,b,c" sizes="100w" loading="lazy" decoding="async">
</body>`)

	for _, want := range []string{`href="https://example.com"`, `class="link"`, `id="x"`, `aria-label="Go there"`, `role="button"`, `src="x.jpg"`} {
		assert.Contains(t, out, want)
	}
	for _, gone := range []string{"data-x", "onclick", "style=", "tabindex", "srcset=", "sizes=", "loading=", "decoding="} {
		assert.NotContains(t, out, gone)
	}
}

func TestContentFilter_KeepsOnlyBody(t *testing.T) {
	out := clean(t, `
<html>
<head>
    <meta charset="utf-8">
    <link rel="stylesheet" href="x.css">
    <title>Title</title>
</head>
<body>
    <p>Hi</p>
</body>
</html>`)

	assert.NotContains(t, out, "<head")
	assert.NotContains(t, out, "Title")
	assert.True(t, strings.HasPrefix(out, "<body>"))
	assert.Contains(t, out, "<p>Hi</p>")
}

func TestContentFilter_Truncation(t *testing.T) {
	var big strings.Builder
	big.WriteString("<body>")
	for i := 0; i < 20000; i++ {
		big.WriteString("<div>test</div>")
	}
	big.WriteString("</body>")

	f := DefaultContentFilter()
	out, err := f.Clean(big.String())

	require.NoError(t, err)
	assert.Len(t, out, f.MaxBytes+len(truncatedMarker))
	assert.True(t, strings.HasSuffix(out, truncatedMarker))

	f.MaxBytes = 0
	out, err = f.Clean(big.String())
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(out, truncatedMarker))
}

func TestContentFilter_Custom(t *testing.T) {
	f := ContentFilter{
		DropTags: []string{"nav"},
		DropAttr: func(attr html.Attribute) bool {
			return attr.Key == "class"
		},
	}

	out, err := f.Clean(`<body><nav>menu</nav><p class="x" id="y">text</p><script>1</script></body>`)

	require.NoError(t, err)
	assert.NotContains(t, out, "menu")
	assert.NotContains(t, out, `class="x"`)
	assert.Contains(t, out, `id="y"`)
	assert.Contains(t, out, "<script>", "only configured tags are removed")
}

func TestContentFilter_FramesetHasNoBody(t *testing.T) {
	_, err := DefaultContentFilter().Clean(`<html><frameset><frame src="a.html"></frameset></html>`)
	assert.ErrorIs(t, err, errNoBody)
}

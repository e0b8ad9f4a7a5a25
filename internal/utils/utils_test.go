package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("**bold** and [link](https://example.com)\n\n![pic](https://example.com/a.png)")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `rel="nofollow noopener noreferrer"`)
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)

	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("hi <script>alert(1)</script> <a href=\"javascript:alert(1)\">x</a>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello world", PlainText("<p>Hello</p>\n<p><em>world</em></p>", 0))
	assert.Equal(t, "Hello…", PlainText("<p>Hello world</p>", 5))
}

func TestHotScore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, HotScore(now, 0, 0, 0, now))
	assert.Zero(t, HotScore(now, 1, 5, 0, now), "net-negative subjects bottom out at zero")

	fresh := HotScore(now.Add(-time.Hour), 10, 0, 2, now)
	stale := HotScore(now.Add(-48*time.Hour), 10, 0, 2, now)
	assert.Greater(t, fresh, stale)

	liked := HotScore(now, 10, 0, 0, now)
	disliked := HotScore(now, 10, 4, 0, now)
	assert.Greater(t, liked, disliked)

	discussed := HotScore(now, 0, 0, 5, now)
	assert.Greater(t, discussed, HotScore(now, 5, 0, 0, now))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 20, ClampInt("", 20, 100))
	assert.Equal(t, 20, ClampInt("abc", 20, 100))
	assert.Equal(t, 20, ClampInt("-3", 20, 100))
	assert.Equal(t, 5, ClampInt("5", 20, 100))
	assert.Equal(t, 100, ClampInt("500", 20, 100))
	assert.Equal(t, 0, StringToInt("x"))
}

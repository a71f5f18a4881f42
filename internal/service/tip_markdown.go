package service

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	tipMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	tipSanitizer = bluemonday.UGCPolicy()
)

// renderTipHTML 将模型返回的 Markdown 转成安全的 HTML 片段。
func renderTipHTML(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := tipMarkdown.Convert([]byte(text), &buf); err != nil {
		return tipSanitizer.Sanitize(text)
	}
	return strings.TrimSpace(tipSanitizer.Sanitize(buf.String()))
}

package views

import (
	"context"

	"github.com/a-h/templ"
)

// Email is the HTML body of a transactional mail with one call-to-action button.
func Email(firstName string, paragraphs []string, buttonText, url string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html><head><meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		h.raw(`<meta http-equiv="Content-Type" content="text/html; charset=UTF-8"></head>`)
		h.raw(`<body style="font-family: sans-serif; font-size: 14px; line-height: 1.4;"><table role="presentation" width="100%"><tr><td>`)
		h.raw(`<p>Hi `)
		h.text(firstName)
		h.raw(`,</p>`)
		for _, p := range paragraphs {
			h.raw(`<p>`)
			h.text(p)
			h.raw(`</p>`)
		}
		h.raw(`<p><a style="background:#55c57a;color:#fff;padding:12px 25px;border-radius:5px;text-decoration:none;" target="_blank"`)
		h.attr("href", url)
		h.raw(`>`)
		h.text(buttonText)
		h.raw(`</a></p><p>- The Natours team</p></td></tr></table></body></html>`)
	})
}

package views

import (
	"context"

	"github.com/a-h/templ"

	"tourapi/internal/model"
)

// Page carries what every rendered page needs.
type Page struct {
	Title string
	// User is the logged-in user or nil.
	User *model.User
	// Alert is shown as a banner after a redirect.
	Alert string
}

// Alert messages keyed by the alert query parameter.
var alerts = map[string]string{
	"booking": "Your booking was successful! Please check your email for a confirmation. If your booking doesn't show up here immediately, please come back later.",
}

// AlertMessage resolves the alert query parameter.
func AlertMessage(key string) string {
	return alerts[key]
}

// Layout wraps body in the document shell with header and footer.
func Layout(p Page, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		h.raw(`<link rel="stylesheet" href="/css/style.css">`)
		h.raw(`<link rel="shortcut icon" type="image/png" href="/img/favicon.png">`)
		h.raw(`<title>Natours | `)
		h.text(p.Title)
		h.raw(`</title></head><body`)
		if p.Alert != "" {
			h.attr("data-alert", p.Alert)
		}
		h.raw(`>`)
		header(h, p.User)
		h.component(ctx, body)
		h.raw(`<footer class="footer"><div class="footer__logo"><img src="/img/logo-green.png" alt="Natours logo"></div>`)
		h.raw(`<p class="footer__copyright">&copy; Natours</p></footer>`)
		h.raw(`<script src="https://js.stripe.com/v3/"></script><script src="/js/bundle.js"></script>`)
		h.raw(`</body></html>`)
	})
}

func header(h *htmlWriter, u *model.User) {
	h.raw(`<header class="header"><nav class="nav nav--tours"><a class="nav__el" href="/">All tours</a></nav>`)
	h.raw(`<div class="header__logo"><img src="/img/logo-white.png" alt="Natours logo"></div><nav class="nav nav--user">`)
	if u == nil {
		h.raw(`<a class="nav__el" href="/login">Log in</a><a class="nav__el nav__el--cta" href="#">Sign up</a>`)
	} else {
		h.raw(`<a class="nav__el nav__el--logout">Log out</a><a class="nav__el" href="/me">`)
		h.raw(`<img class="nav__user-img"`)
		h.attr("src", "/img/users/"+u.Photo)
		h.attr("alt", "Photo of "+u.Name)
		h.raw(`><span>`)
		h.text(firstName(u.Name))
		h.raw(`</span></a>`)
	}
	h.raw(`</nav></header>`)
}

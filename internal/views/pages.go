package views

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"tourapi/internal/model"
)

// Overview lists tour cards. It also renders the my-tours page.
func Overview(tours []model.Tour) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<main class="main"><div class="card-container">`)
		for _, t := range tours {
			card(h, t)
		}
		h.raw(`</div></main>`)
	})
}

func card(h *htmlWriter, t model.Tour) {
	h.raw(`<div class="card"><div class="card__header"><div class="card__picture"><div class="card__picture-overlay">&nbsp;</div>`)
	h.raw(`<img class="card__picture-img"`)
	h.attr("src", "/img/tours/"+t.ImageCover)
	h.attr("alt", t.Name)
	h.raw(`></div><h3 class="heading-tertirary"><span>`)
	h.text(t.Name)
	h.raw(`</span></h3></div><div class="card__details"><h4 class="card__sub-heading">`)
	h.text(fmt.Sprintf("%s %d-day tour", t.Difficulty, t.Duration))
	h.raw(`</h4><p class="card__text">`)
	h.text(t.Summary)
	h.raw(`</p>`)
	cardData(h, "map-pin", t.StartLocation.Description)
	if len(t.StartDates) > 0 {
		cardData(h, "calendar", t.StartDates[0].Format("January 2006"))
	}
	cardData(h, "flag", fmt.Sprintf("%d stops", len(t.Locations)))
	cardData(h, "user", fmt.Sprintf("%d people", t.MaxGroupSize))
	h.raw(`</div><div class="card__footer"><p><span class="card__footer-value">`)
	h.text(fmt.Sprintf("$%g", t.Price))
	h.raw(`</span> <span class="card__footer-text">per person</span></p><p class="card__ratings"><span class="card__footer-value">`)
	h.text(fmt.Sprintf("%g", t.RatingsAverage))
	h.raw(`</span> <span class="card__footer-text">`)
	h.text(fmt.Sprintf("rating (%d)", t.RatingsQuantity))
	h.raw(`</span></p><a class="btn btn--green btn--small"`)
	h.attr("href", "/tour/"+t.Slug)
	h.raw(`>Details</a></div></div>`)
}

func cardData(h *htmlWriter, icon, text string) {
	h.raw(`<div class="card__data"><svg class="card__icon"><use`)
	h.attr("xlink:href", "/img/icons.svg#icon-"+icon)
	h.raw(`></use></svg><span>`)
	h.text(text)
	h.raw(`</span></div>`)
}

// TourDetail renders a single tour with guides, reviews and the booking call to action.
func TourDetail(t *model.Tour, user *model.User) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="section-header"><div class="header__hero"><div class="header__hero-overlay">&nbsp;</div>`)
		h.raw(`<img class="header__hero-img"`)
		h.attr("src", "/img/tours/"+t.ImageCover)
		h.attr("alt", t.Name)
		h.raw(`></div><div class="heading-box"><h1 class="heading-primary"><span>`)
		h.text(t.Name + " tour")
		h.raw(`</span></h1><div class="heading-box__group">`)
		h.text(fmt.Sprintf("%d days", t.Duration))
		h.raw(` &middot; `)
		h.text(t.StartLocation.Description)
		h.raw(`</div></div></section>`)

		h.raw(`<section class="section-description"><div class="overview-box"><h2 class="heading-secondary ma-bt-lg">Quick facts</h2>`)
		if len(t.StartDates) > 0 {
			overviewBox(h, "calendar", "Next date", t.StartDates[0].Format("January 2006"))
		}
		overviewBox(h, "trending-up", "Difficulty", string(t.Difficulty))
		overviewBox(h, "user", "Participants", fmt.Sprintf("%d people", t.MaxGroupSize))
		overviewBox(h, "star", "Rating", fmt.Sprintf("%g / 5", t.RatingsAverage))
		h.raw(`<h2 class="heading-secondary ma-bt-lg">Your tour guides</h2>`)
		for _, g := range t.Guides {
			h.raw(`<div class="overview-box__detail"><img class="overview-box__img"`)
			h.attr("src", "/img/users/"+g.Photo)
			h.attr("alt", g.Name)
			h.raw(`><span class="overview-box__label">`)
			if g.Role == model.RoleLeadGuide {
				h.raw(`Lead guide`)
			} else {
				h.raw(`Tour guide`)
			}
			h.raw(`</span><span class="overview-box__text">`)
			h.text(g.Name)
			h.raw(`</span></div>`)
		}
		h.raw(`</div><div class="description-box"><h2 class="heading-secondary ma-bt-lg">`)
		h.text("About " + t.Name + " tour")
		h.raw(`</h2>`)
		for _, p := range strings.Split(t.Description, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				h.raw(`<p class="description__text">`)
				h.text(p)
				h.raw(`</p>`)
			}
		}
		h.raw(`</div></section>`)

		h.raw(`<section class="section-pictures">`)
		for i, img := range t.Images {
			h.raw(`<div class="picture-box"><img`)
			h.attr("class", fmt.Sprintf("picture-box__img picture-box__img--%d", i+1))
			h.attr("src", "/img/tours/"+img)
			h.attr("alt", fmt.Sprintf("%s Tour %d", t.Name, i+1))
			h.raw(`></div>`)
		}
		h.raw(`</section>`)

		locations, _ := json.Marshal(t.Locations)
		h.raw(`<section class="section-map"><div id="map"`)
		h.attr("data-locations", string(locations))
		h.raw(`></div></section>`)

		h.raw(`<section class="section-reviews"><div class="reviews">`)
		for _, r := range t.Reviews {
			reviewCard(h, r)
		}
		h.raw(`</div></section>`)

		h.raw(`<section class="section-cta"><div class="cta"><div class="cta__content"><h2 class="heading-secondary">What are you waiting for?</h2>`)
		h.raw(`<p class="cta__text">`)
		h.text(fmt.Sprintf("%d days. 1 adventure. Infinite memories. Make it yours today!", t.Duration))
		h.raw(`</p>`)
		if user != nil {
			h.raw(`<button class="btn btn--green span-all-rows" id="book-tour"`)
			h.attr("data-tour-id", t.ID)
			h.raw(`>Book tour now!</button>`)
		} else {
			h.raw(`<a class="btn btn--green span-all-rows" href="/login">Log in to book tour</a>`)
		}
		h.raw(`</div></div></section>`)
	})
}

func overviewBox(h *htmlWriter, icon, label, text string) {
	h.raw(`<div class="overview-box__detail"><svg class="overview-box__icon"><use`)
	h.attr("xlink:href", "/img/icons.svg#icon-"+icon)
	h.raw(`></use></svg><span class="overview-box__label">`)
	h.text(label)
	h.raw(`</span><span class="overview-box__text">`)
	h.text(text)
	h.raw(`</span></div>`)
}

func reviewCard(h *htmlWriter, r model.Review) {
	h.raw(`<div class="reviews__card"><div class="reviews__avatar">`)
	if r.User != nil {
		h.raw(`<img class="reviews__avatar-img"`)
		h.attr("src", "/img/users/"+r.User.Photo)
		h.attr("alt", r.User.Name)
		h.raw(`><h6 class="reviews__user">`)
		h.text(r.User.Name)
		h.raw(`</h6>`)
	}
	h.raw(`</div><p class="reviews__text">`)
	h.text(r.Review)
	h.raw(`</p><div class="reviews__rating">`)
	for star := 1; star <= 5; star++ {
		state := "inactive"
		if r.Rating >= star {
			state = "active"
		}
		h.rawf(`<svg class="reviews__star reviews__star--%s"><use xlink:href="/img/icons.svg#icon-star"></use></svg>`, state)
	}
	h.raw(`</div></div>`)
}

// Login renders the login form.
func Login() templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<main class="main"><div class="login-form"><h2 class="heading-secondary ma-bt-lg">Log into your account</h2>`)
		h.raw(`<form class="form form--login"><div class="form__group"><label class="form__label" for="email">Email address</label>`)
		h.raw(`<input class="form__input" id="email" type="email" placeholder="you@example.com" required></div>`)
		h.raw(`<div class="form__group ma-bt-md"><label class="form__label" for="password">Password</label>`)
		h.raw(`<input class="form__input" id="password" type="password" placeholder="••••••••" required minlength="8"></div>`)
		h.raw(`<div class="form__group"><button class="btn btn--green">Login</button></div></form></div></main>`)
	})
}

// Account renders the settings page for u.
func Account(u *model.User) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<main class="main"><div class="user-view"><nav class="user-view__menu"><ul class="side-nav">`)
		h.raw(`<li class="side-nav--active"><a href="/me">Settings</a></li><li><a href="/my-tours">My bookings</a></li></ul>`)
		if u.Role == model.RoleAdmin {
			h.raw(`<div class="admin-nav"><h5 class="admin-nav__heading">Admin</h5><ul class="side-nav">`)
			h.raw(`<li><a href="#">Manage tours</a></li><li><a href="#">Manage users</a></li>`)
			h.raw(`<li><a href="#">Manage reviews</a></li><li><a href="#">Manage bookings</a></li></ul></div>`)
		}
		h.raw(`</nav><div class="user-view__content"><div class="user-view__form-container">`)
		h.raw(`<h2 class="heading-secondary ma-bt-md">Your account settings</h2>`)
		h.raw(`<form class="form form-user-data" action="/submit-user-data" method="POST" enctype="multipart/form-data">`)
		h.raw(`<div class="form__group"><label class="form__label" for="name">Name</label><input class="form__input" id="name" name="name" type="text" required`)
		h.attr("value", u.Name)
		h.raw(`></div><div class="form__group ma-bt-md"><label class="form__label" for="email">Email address</label>`)
		h.raw(`<input class="form__input" id="email" name="email" type="email" required`)
		h.attr("value", u.Email)
		h.raw(`></div><div class="form__group form__photo-upload"><img class="form__user-photo"`)
		h.attr("src", "/img/users/"+u.Photo)
		h.attr("alt", "User photo")
		h.raw(`><input class="form__upload" type="file" accept="image/*" id="photo" name="photo"><label for="photo">Choose new photo</label></div>`)
		h.raw(`<div class="form__group right"><button class="btn btn--small btn--green">Save settings</button></div></form></div>`)
		h.raw(`<div class="line">&nbsp;</div><div class="user-view__form-container"><h2 class="heading-secondary ma-bt-md">Password change</h2>`)
		h.raw(`<form class="form form-user-password">`)
		for _, f := range []struct{ id, label string }{
			{"password-current", "Current password"},
			{"password", "New password"},
			{"password-confirm", "Confirm password"},
		} {
			h.raw(`<div class="form__group"><label class="form__label"`)
			h.attr("for", f.id)
			h.raw(`>`)
			h.text(f.label)
			h.raw(`</label><input class="form__input" type="password" placeholder="••••••••" required minlength="8"`)
			h.attr("id", f.id)
			h.raw(`></div>`)
		}
		h.raw(`<div class="form__group right"><button class="btn btn--small btn--green btn--save-password">Save password</button></div>`)
		h.raw(`</form></div></div></div></main>`)
	})
}

// ErrorPage renders msg as the body of an error response.
func ErrorPage(msg string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<main class="main"><div class="error"><div class="error__title"><h2 class="heading-secondary heading-secondary--error">Uh oh! Something went wrong!</h2>`)
		h.raw(`<h2 class="error__emoji">&#x1F622; &#x1F92F;</h2></div><div class="error__msg">`)
		h.text(msg)
		h.raw(`</div></div></main>`)
	})
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}

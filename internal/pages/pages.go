package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"
	"github.com/meur/dattebayo/internal/detail"
	"github.com/meur/dattebayo/internal/loader"
	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/view"
)

const htmxSrc = "https://unpkg.com/htmx.org@1.9.12"

// scrollVals sends the scroll geometry with every scroll-triggered request.
const scrollVals = `js:{trigger: "scroll", innerHeight: window.innerHeight, scrollTop: document.documentElement.scrollTop, scrollHeight: document.documentElement.scrollHeight}`

// Layout wraps body in the page shell with the collection navigation.
func Layout(title string, collections []models.Collection, active string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw(" | Dattebayo</title>")
		h.raw(`<script`)
		h.attr("src", htmxSrc)
		h.raw(`></script></head><body><header><a href="/">Dattebayo</a></header><nav><ul>`)
		for _, c := range collections {
			h.raw("<li")
			if c.Slug == active {
				h.attr("class", "active")
			}
			h.raw("><a")
			h.url("href", "/"+c.Slug)
			h.raw(">")
			h.text(c.Label)
			h.raw("</a></li>")
		}
		h.raw("</ul></nav><main>")
		h.child(ctx, body)
		h.raw("</main></body></html>")
	})
}

// Home lists the collections.
func Home(collections []models.Collection) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Naruto Catalog</h1><div class="grid">`)
		for _, c := range collections {
			h.raw(`<a class="card"`)
			h.url("href", "/"+c.Slug)
			h.raw("><h2>")
			h.text(c.Label)
			h.raw("</h2></a>")
		}
		h.raw("</div>")
	})
}

// ListData is everything a list view renders.
type ListData struct {
	Collection models.Collection
	Prefs      models.Preferences
	Items      []models.Entity // already filtered and sorted
	Summary    view.Summary
	State      loader.State
	Message    string
	Trigger    loader.Trigger
}

// Filtering reports whether a text filter is active.
func (d ListData) Filtering() bool {
	return d.Prefs.SearchQuery != ""
}

// CanAdvance reports whether the view should render an advance trigger.
func (d ListData) CanAdvance() bool {
	return d.Trigger != loader.TriggerNone && d.State == loader.Idle && !d.Filtering()
}

// ListPage renders the search controls around the list fragment.
func ListPage(d ListData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<h1>")
		h.text(d.Collection.Label)
		h.raw("</h1>")
		controls(h, d)
		h.child(ctx, ListFragment(d))
	})
}

func controls(h *htmlWriter, d ListData) {
	vals := fmt.Sprintf(`{"collection": %q}`, d.Collection.Slug)
	h.raw(`<form class="controls"`)
	h.attr("hx-post", "/preferences")
	h.attr("hx-target", "#list")
	h.attr("hx-swap", "outerHTML")
	h.attr("hx-vals", vals)
	h.raw(`><label>Search <input type="search" name="searchQuery"`)
	h.attr("value", d.Prefs.SearchQuery)
	h.attr("hx-trigger", "input changed delay:300ms, search")
	h.attr("hx-post", "/preferences")
	h.raw(`></label><label>Sort By <select name="sortOption"`)
	h.attr("hx-trigger", "change")
	h.attr("hx-post", "/preferences")
	h.raw(">")
	current := view.ParseSortMode(d.Prefs.SortOption)
	for _, opt := range d.Collection.SortOptions {
		h.raw("<option")
		h.attr("value", opt.ID)
		if view.SortMode(opt.ID) == current {
			h.raw(" selected")
		}
		h.raw(">")
		h.text(opt.Name)
		h.raw("</option>")
	}
	h.raw("</select></label></form>")
}

// ListFragment is the swappable part of a list view: summary, cards and the
// advance trigger or error.
func ListFragment(d ListData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		slug := d.Collection.Slug
		h.raw(`<section id="list"`)
		h.attr("data-state", d.State.String())
		h.raw(`><p class="summary">`)
		h.text(fmt.Sprintf("%s: %d displayed, %s", d.Collection.Label, d.Summary.Displayed, d.Summary))
		h.raw(`</p><div class="grid">`)

		if len(d.Items) == 0 && d.State != loader.Loading {
			h.raw(`<p class="empty">No `)
			h.text(d.Collection.Label)
			h.raw(" found.</p>")
		}
		last := len(d.Items) - 1
		for i, e := range d.Items {
			var trigger func()
			if i == last && d.CanAdvance() && d.Trigger == loader.TriggerVisibility {
				trigger = func() {
					h.attr("hx-get", "/"+slug+"/items?trigger=visibility")
					h.attr("hx-trigger", "revealed")
					h.attr("hx-target", "#list")
					h.attr("hx-swap", "outerHTML")
				}
			}
			card(h, d.Collection, e, trigger)
		}
		h.raw("</div>")

		if d.CanAdvance() && d.Trigger == loader.TriggerScroll {
			h.raw(`<div class="sentinel"`)
			h.attr("hx-get", "/"+slug+"/items")
			h.attr("hx-trigger", "scroll from:window throttle:250ms")
			h.attr("hx-vals", scrollVals)
			h.attr("hx-target", "#list")
			h.attr("hx-swap", "outerHTML")
			h.raw("></div>")
		}
		if d.State == loader.Errored {
			h.raw(`<div class="error"><p>`)
			h.text(d.Message)
			h.raw(`</p><button`)
			h.attr("hx-post", "/"+slug+"/retry")
			h.attr("hx-target", "#list")
			h.attr("hx-swap", "outerHTML")
			h.raw(">Retry</button></div>")
		}
		h.raw("</section>")
	})
}

// card renders one entity. extra, when set, adds attributes to the card element.
func card(h *htmlWriter, c models.Collection, e models.Entity, extra func()) {
	h.raw(`<article class="card"`)
	h.attr("data-id", strconv.Itoa(e.ID))
	if extra != nil {
		extra()
	}
	h.raw("><a")
	h.url("href", fmt.Sprintf("/%s/%d", c.Slug, e.ID))
	h.raw(">")
	if imgs := e.Images(); len(imgs) > 0 {
		h.raw("<img")
		h.url("src", imgs[0])
		h.attr("alt", e.Name)
		h.raw(` loading="lazy">`)
	}
	h.raw("<h3>")
	h.text(e.Name)
	h.raw("</h3></a>")
	if key := c.RelationKey(); key != "" {
		h.raw(`<p class="members">`)
		h.text(fmt.Sprintf("%d characters", e.RelationCount(key)))
		h.raw("</p>")
	}
	h.raw("</article>")
}

// DetailPage renders a parent entity and its resolved relations.
func DetailPage(d detail.Detail) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		p := d.Parent
		h.raw(`<article class="detail"><h1>`)
		h.text(p.Name)
		h.raw("</h1>")
		if imgs := p.Images(); len(imgs) > 0 {
			h.raw(`<div class="images">`)
			for _, src := range imgs {
				h.raw("<img")
				h.url("src", src)
				h.attr("alt", p.Name)
				h.raw(">")
			}
			h.raw("</div>")
		}
		facts(h, p)
		h.raw("</article>")

		if d.Collection.Relation == nil {
			return
		}
		target, ok := models.LookupCollection(d.Collection.Relation.Target)
		if !ok {
			target = models.Collection{Slug: d.Collection.Relation.Target}
		}
		h.raw(`<section class="related"><h2>Members</h2><div class="grid">`)
		if len(d.Related) == 0 {
			h.raw(`<p class="empty">No characters found.</p>`)
		}
		for _, e := range d.Related {
			card(h, target, e, nil)
		}
		h.raw("</div></section>")
	})
}

// facts renders the personal info block when the payload has one.
func facts(h *htmlWriter, e models.Entity) {
	rows := []struct {
		label  string
		values []string
	}{
		{"Clan", e.Strings("personal.clan")},
		{"Affiliation", e.Strings("personal.affiliation")},
		{"Birthdate", e.Strings("personal.birthdate")},
		{"Debut", e.Strings("debut.anime")},
	}
	if !e.Field("personal").Exists() {
		return
	}
	h.raw("<dl>")
	for _, r := range rows {
		if len(r.values) == 0 {
			continue
		}
		h.raw("<dt>")
		h.text(r.label)
		h.raw("</dt><dd>")
		for i, v := range r.values {
			if i > 0 {
				h.raw(", ")
			}
			h.text(v)
		}
		h.raw("</dd>")
	}
	h.raw("<dt>Gender</dt><dd>")
	h.text(GenderDisplay(e.Field("personal.sex").String()))
	h.raw("</dd></dl>")
}

// GenderDisplay collapses the API's free-form sex field.
func GenderDisplay(sex string) string {
	switch sex {
	case "":
		return "Unknown"
	case "Male", "Female":
		return sex
	default:
		return "Various"
	}
}

// ErrorPage renders a failed page load.
func ErrorPage(status int, message string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="error"><h1>`)
		h.text(strconv.Itoa(status))
		h.raw("</h1><p>")
		h.text(message)
		h.raw("</p></div>")
	})
}

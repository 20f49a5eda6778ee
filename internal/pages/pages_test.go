package pages

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/meur/dattebayo/internal/detail"
	"github.com/meur/dattebayo/internal/loader"
	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func entity(t *testing.T, raw string) models.Entity {
	t.Helper()
	var e models.Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	return e
}

func collection(t *testing.T, slug string) models.Collection {
	t.Helper()
	c, ok := models.LookupCollection(slug)
	require.True(t, ok)
	return c
}

func TestListFragmentVisibilityTrigger(t *testing.T) {
	c := collection(t, "characters")
	d := ListData{
		Collection: c,
		Prefs:      models.DefaultPreferences(),
		Items: []models.Entity{
			entity(t, `{"id":1,"name":"Naruto","images":["n.png"]}`),
			entity(t, `{"id":2,"name":"Hinata","images":["h.png"]}`),
		},
		Summary: view.Summary{Displayed: 2, Loaded: 2, Total: 10},
		State:   loader.Idle,
		Trigger: loader.TriggerVisibility,
	}
	out := render(t, ListFragment(d))

	assert.Contains(t, out, "Characters: 2 displayed, 2 of 10 loaded")
	assert.Equal(t, 1, strings.Count(out, `hx-trigger="revealed"`))
	// The trigger sits on the last card.
	assert.Less(t, strings.Index(out, `data-id="1"`), strings.Index(out, `hx-trigger="revealed"`))
	assert.Greater(t, strings.Index(out, `hx-trigger="revealed"`), strings.Index(out, `data-id="2"`))
	assert.Contains(t, out, `hx-get="/characters/items?trigger=visibility"`)
	assert.NotContains(t, out, "sentinel")
}

func TestListFragmentScrollSentinel(t *testing.T) {
	d := ListData{
		Collection: collection(t, "clans"),
		Prefs:      models.DefaultPreferences(),
		Items:      []models.Entity{entity(t, `{"id":1,"name":"Hyuga","characters":[1,2,3]}`)},
		State:      loader.Idle,
		Trigger:    loader.TriggerScroll,
	}
	out := render(t, ListFragment(d))

	assert.Contains(t, out, `class="sentinel"`)
	assert.Contains(t, out, `hx-get="/clans/items"`)
	assert.Contains(t, out, "3 characters")
	assert.NotContains(t, out, "revealed")
}

func TestListFragmentNoTriggerWhileFiltering(t *testing.T) {
	d := ListData{
		Collection: collection(t, "clans"),
		Prefs:      models.Preferences{SearchQuery: "hy", SortOption: models.SortLoaded},
		Items:      []models.Entity{entity(t, `{"id":1,"name":"Hyuga"}`)},
		State:      loader.Idle,
		Trigger:    loader.TriggerScroll,
	}
	assert.False(t, d.CanAdvance())
	assert.NotContains(t, render(t, ListFragment(d)), "sentinel")
}

func TestListFragmentNoTriggerOnceExhausted(t *testing.T) {
	d := ListData{
		Collection: collection(t, "characters"),
		Prefs:      models.DefaultPreferences(),
		Items:      []models.Entity{entity(t, `{"id":1,"name":"Naruto","images":["n.png"]}`)},
		State:      loader.Exhausted,
		Trigger:    loader.TriggerVisibility,
	}
	out := render(t, ListFragment(d))
	assert.NotContains(t, out, "revealed")
	assert.Contains(t, out, `data-state="exhausted"`)
}

func TestListFragmentError(t *testing.T) {
	d := ListData{
		Collection: collection(t, "teams"),
		Prefs:      models.DefaultPreferences(),
		State:      loader.Errored,
		Message:    "An error occurred while fetching teams. Please try again later.",
		Trigger:    loader.TriggerScroll,
	}
	out := render(t, ListFragment(d))
	assert.Contains(t, out, d.Message)
	assert.Contains(t, out, `hx-post="/teams/retry"`)
	assert.NotContains(t, out, "sentinel")
}

func TestListPageControls(t *testing.T) {
	d := ListData{
		Collection: collection(t, "villages"),
		Prefs:      models.Preferences{SearchQuery: `"leaf"`, SortOption: models.SortMemberCountDesc},
		State:      loader.Idle,
		Trigger:    loader.TriggerScroll,
	}
	out := render(t, ListPage(d))

	assert.Contains(t, out, `value="&#34;leaf&#34;"`)
	assert.Contains(t, out, `<option value="memberCountDesc" selected>`)
	assert.Contains(t, out, "Member Count Ascending")
	assert.Equal(t, 1, strings.Count(out, " selected"))
}

func TestCardEscapesNames(t *testing.T) {
	d := ListData{
		Collection: collection(t, "akatsuki"),
		Prefs:      models.DefaultPreferences(),
		Items:      []models.Entity{entity(t, `{"id":7,"name":"<script>alert(1)</script>"}`)},
		State:      loader.Exhausted,
	}
	out := render(t, ListFragment(d))
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `href="/akatsuki/7"`)
}

func TestDetailPage(t *testing.T) {
	d := detail.Detail{
		Collection: collection(t, "teams"),
		Parent:     entity(t, `{"id":5,"name":"Team 7","images":["t7.png"]}`),
		Related: []models.Entity{
			entity(t, `{"id":1,"name":"Naruto"}`),
			entity(t, `{"id":2,"name":"Sasuke"}`),
		},
	}
	out := render(t, DetailPage(d))
	assert.Contains(t, out, "<h1>Team 7</h1>")
	assert.Contains(t, out, `src="t7.png"`)
	assert.Contains(t, out, `href="/characters/1"`)
	assert.Less(t, strings.Index(out, "Naruto"), strings.Index(out, "Sasuke"))
}

func TestDetailPageFacts(t *testing.T) {
	d := detail.Detail{
		Collection: collection(t, "characters"),
		Parent: entity(t, `{"id":1,"name":"Naruto","personal":{"sex":"Male","clan":"Uzumaki","affiliation":["Konohagakure","Allied Shinobi Forces"]}}`),
	}
	out := render(t, DetailPage(d))
	assert.Contains(t, out, "<dt>Clan</dt><dd>Uzumaki</dd>")
	assert.Contains(t, out, "<dd>Konohagakure, Allied Shinobi Forces</dd>")
	assert.Contains(t, out, "<dt>Gender</dt><dd>Male</dd>")
	assert.NotContains(t, out, "Members")
}

func TestGenderDisplay(t *testing.T) {
	cases := map[string]string{
		"":        "Unknown",
		"Male":    "Male",
		"Female":  "Female",
		"Various": "Various",
		"male":    "Various",
	}
	for in, want := range cases {
		assert.Equal(t, want, GenderDisplay(in), "input %q", in)
	}
}

func TestLayoutMarksActive(t *testing.T) {
	out := render(t, Layout("Clans", models.Collections(), "clans", Home(nil)))
	assert.Contains(t, out, "<title>Clans | Dattebayo</title>")
	assert.Contains(t, out, `<li class="active"><a href="/clans">`)
	assert.Equal(t, 1, strings.Count(out, `class="active"`))
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage(404, "clans 9 not found"))
	assert.Contains(t, out, "<h1>404</h1>")
	assert.Contains(t, out, "clans 9 not found")
}

func TestLayoutKeepsChildOrder(t *testing.T) {
	child := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>plain child</p>")
		return err
	})
	out := render(t, Layout("Home", nil, "", child))
	main := strings.Index(out, "<main>")
	body := strings.Index(out, "<p>plain child</p>")
	end := strings.Index(out, "</main>")
	require.True(t, main >= 0 && body >= 0 && end >= 0, out)
	assert.Less(t, main, body)
	assert.Less(t, body, end)
	assert.True(t, strings.HasSuffix(out, "</body></html>"))
}

func TestRenderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := ErrorPage(500, "boom").Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

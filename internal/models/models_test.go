package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Entity {
	t.Helper()
	var e Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	return e
}

func TestEntityKeepsPayload(t *testing.T) {
	raw := `{"id":3,"name":"Gaara","images":["g.png"],"personal":{"clan":"Kazekage Clan"}}`
	e := decode(t, raw)
	assert.Equal(t, 3, e.EntityID())
	assert.Equal(t, "Gaara", e.EntityName())
	assert.Equal(t, "Kazekage Clan", e.Field("personal.clan").String())

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestEntityMarshalWithoutPayload(t *testing.T) {
	out, err := json.Marshal(Entity{ID: 9, Name: "Jiraiya"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"name":"Jiraiya"}`, string(out))
}

func TestEntityStrings(t *testing.T) {
	e := decode(t, `{"id":1,"name":"x","a":"one","b":["one","","two"],"c":""}`)
	assert.Equal(t, []string{"one"}, e.Strings("a"))
	assert.Equal(t, []string{"one", "two"}, e.Strings("b"))
	assert.Nil(t, e.Strings("c"))
	assert.Nil(t, e.Strings("missing"))
}

func TestEntityRelation(t *testing.T) {
	e := decode(t, `{"id":1,"name":"Hyuga","characters":[5,"x",2,9]}`)
	assert.Equal(t, []int{5, 2, 9}, e.Relation("characters"))
	assert.Equal(t, 3, e.RelationCount("characters"))
	assert.Nil(t, e.Relation(""))
	assert.Zero(t, e.RelationCount("members"))
}

func TestCollectionAdmit(t *testing.T) {
	chars, ok := LookupCollection("characters")
	require.True(t, ok)
	clans, ok := LookupCollection("clans")
	require.True(t, ok)

	pictured := decode(t, `{"id":1,"name":"Naruto","images":["n.png"]}`)
	bare := decode(t, `{"id":2,"name":"Minato"}`)
	nameless := decode(t, `{"id":3,"images":["x.png"]}`)

	assert.True(t, chars.Admit(pictured))
	assert.False(t, chars.Admit(bare))
	assert.False(t, chars.Admit(nameless))
	assert.True(t, clans.Admit(bare))
	assert.False(t, clans.Admit(nameless))
}

func TestCollectionsTable(t *testing.T) {
	cs := Collections()
	require.Len(t, cs, 8)

	seen := map[string]bool{}
	for _, c := range cs {
		assert.False(t, seen[c.Slug], "duplicate slug %s", c.Slug)
		seen[c.Slug] = true
		assert.NotEmpty(t, c.ResponseKey)
		if c.Eager {
			assert.Empty(t, c.Trigger, c.Slug)
		} else {
			assert.NotEmpty(t, c.Trigger, c.Slug)
		}
		if c.Relation != nil {
			assert.Len(t, c.SortOptions, 5, c.Slug)
		} else {
			assert.Len(t, c.SortOptions, 3, c.Slug)
		}
	}

	kg, ok := LookupCollection("kekkei-genkai")
	require.True(t, ok)
	assert.Equal(t, "kekkei-genkai", kg.ResponseKey)
	assert.Equal(t, 39, kg.Limit)
	assert.Equal(t, "characters", kg.RelationKey())

	_, ok = LookupCollection("hokage")
	assert.False(t, ok)
}

func TestPreferencesApply(t *testing.T) {
	q := "sand"
	sort := SortNameDesc
	empty := ""

	p := DefaultPreferences().Apply(PreferencesUpdate{SearchQuery: &q})
	assert.Equal(t, Preferences{SearchQuery: "sand", SortOption: SortLoaded}, p)

	p = p.Apply(PreferencesUpdate{SortOption: &sort})
	assert.Equal(t, Preferences{SearchQuery: "sand", SortOption: SortNameDesc}, p)

	p = p.Apply(PreferencesUpdate{SearchQuery: &empty, SortOption: &empty})
	assert.Equal(t, DefaultPreferences(), p)
}

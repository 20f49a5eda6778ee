package models

// Collection describes one entity namespace of the remote catalog API and how
// the viewer pages, filters and resolves it.
type Collection struct {
	Slug        string       `json:"slug"`
	Label       string       `json:"label"`
	ResponseKey string       `json:"response_key"` // Array field of the list response
	Limit       int          `json:"limit"`        // 0 lets the server pick
	Trigger     string       `json:"trigger"`      // "visibility", "scroll" or "" for eager collections
	Eager       bool         `json:"eager"`
	Relation    *Relation    `json:"relation,omitempty"`
	SortOptions []SortOption `json:"sort_options"`

	RequireImages bool `json:"-"`
}

// Relation names the id list embedded in a parent and where the ids point.
type Relation struct {
	Key    string `json:"key"`
	Target string `json:"target"`
}

// SortOption is one entry of a list page's sort selector.
type SortOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sort option ids, as persisted in preferences.
const (
	SortLoaded          = "loaded"
	SortNameAsc         = "nameAsc"
	SortNameDesc        = "nameDesc"
	SortMemberCountAsc  = "memberCountAsc"
	SortMemberCountDesc = "memberCountDesc"
)

// Admit reports whether an entity is listable at all. Nameless entries are
// never shown and some collections also require a picture.
func (c Collection) Admit(e Entity) bool {
	if e.Name == "" {
		return false
	}
	if c.RequireImages && len(e.Images()) == 0 {
		return false
	}
	return true
}

// RelationKey returns the relation list field, or "" when the collection has none.
func (c Collection) RelationKey() string {
	if c.Relation == nil {
		return ""
	}
	return c.Relation.Key
}

func nameSorts() []SortOption {
	return []SortOption{
		{ID: SortLoaded, Name: "Loaded Order"},
		{ID: SortNameAsc, Name: "Name (A-Z)"},
		{ID: SortNameDesc, Name: "Name (Z-A)"},
	}
}

func memberSorts() []SortOption {
	return append(nameSorts(),
		SortOption{ID: SortMemberCountAsc, Name: "Member Count Ascending"},
		SortOption{ID: SortMemberCountDesc, Name: "Member Count Descending"},
	)
}

func characterRelation() *Relation {
	return &Relation{Key: "characters", Target: "characters"}
}

// Collections returns the catalog collections in navigation order.
func Collections() []Collection {
	return []Collection{
		{Slug: "characters", Label: "Characters", ResponseKey: "characters", Limit: 10, Trigger: "visibility", RequireImages: true, SortOptions: nameSorts()},
		{Slug: "clans", Label: "Clans", ResponseKey: "clans", Limit: 20, Trigger: "scroll", Relation: characterRelation(), SortOptions: memberSorts()},
		{Slug: "villages", Label: "Villages", ResponseKey: "villages", Limit: 20, Trigger: "scroll", Relation: characterRelation(), SortOptions: memberSorts()},
		{Slug: "kekkei-genkai", Label: "Kekkei Genkai", ResponseKey: "kekkei-genkai", Limit: 39, Trigger: "scroll", Relation: characterRelation(), SortOptions: memberSorts()},
		{Slug: "tailed-beasts", Label: "Tailed Beasts", ResponseKey: "tailed-beasts", Trigger: "visibility", SortOptions: nameSorts()},
		{Slug: "teams", Label: "Teams", ResponseKey: "teams", Limit: 20, Trigger: "scroll", Relation: characterRelation(), SortOptions: memberSorts()},
		{Slug: "akatsuki", Label: "Akatsuki", ResponseKey: "akatsuki", Eager: true, SortOptions: nameSorts()},
		{Slug: "kara", Label: "Kara", ResponseKey: "kara", Limit: 44, Eager: true, SortOptions: nameSorts()},
	}
}

// LookupCollection finds a collection by slug.
func LookupCollection(slug string) (Collection, bool) {
	for _, c := range Collections() {
		if c.Slug == slug {
			return c, true
		}
	}
	return Collection{}, false
}

package models

// Preferences is the UI state shared by every list view of a browser session.
type Preferences struct {
	SearchQuery string `json:"searchQuery"`
	SortOption  string `json:"sortOption"`
}

// DefaultPreferences is the state of a session that never saved anything.
func DefaultPreferences() Preferences {
	return Preferences{SortOption: SortLoaded}
}

// PreferencesUpdate is the request body for changing preferences.
type PreferencesUpdate struct {
	SearchQuery *string `json:"searchQuery,omitempty"`
	SortOption  *string `json:"sortOption,omitempty"`
}

// Apply returns p with the fields set in u replaced.
func (p Preferences) Apply(u PreferencesUpdate) Preferences {
	if u.SearchQuery != nil {
		p.SearchQuery = *u.SearchQuery
	}
	if u.SortOption != nil {
		p.SortOption = *u.SortOption
	}
	if p.SortOption == "" {
		p.SortOption = SortLoaded
	}
	return p
}

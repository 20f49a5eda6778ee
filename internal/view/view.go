// Package view derives the displayed list from an accumulated collection.
package view

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/meur/dattebayo/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Named is an entity that can be filtered and sorted by name.
type Named interface {
	EntityID() int
	EntityName() string
}

// Counted is implemented by entities carrying a membership list.
type Counted interface {
	Named
	RelationCount(key string) int
}

// SortMode is one of the supported orderings.
type SortMode string

const (
	LoadedOrder       SortMode = models.SortLoaded
	NameAscending     SortMode = models.SortNameAsc
	NameDescending    SortMode = models.SortNameDesc
	MembersAscending  SortMode = models.SortMemberCountAsc
	MembersDescending SortMode = models.SortMemberCountDesc
)

// ParseSortMode maps a persisted option to a mode. Anything unrecognized,
// including the "default" value some pages used to store, is loaded order.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(s); m {
	case NameAscending, NameDescending, MembersAscending, MembersDescending:
		return m
	default:
		return LoadedOrder
	}
}

// collator is not safe for concurrent use.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English)
)

func compareNames(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// Filter keeps the entries whose name contains query, ignoring case. An
// empty query keeps everything. The input is never modified.
func Filter[T Named](items []T, query string) []T {
	q := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.EntityName()), q) {
			out = append(out, it)
		}
	}
	return out
}

// Sort returns a sorted copy of items. Sorting is stable so ties keep their
// loaded order, which also makes it idempotent. Member-count modes need a
// relation key and fall back to loaded order for entities without one.
func Sort[T Named](items []T, mode SortMode, relationKey string) []T {
	out := slices.Clone(items)
	switch mode {
	case NameAscending:
		slices.SortStableFunc(out, func(a, b T) int {
			return compareNames(a.EntityName(), b.EntityName())
		})
	case NameDescending:
		slices.SortStableFunc(out, func(a, b T) int {
			return compareNames(b.EntityName(), a.EntityName())
		})
	case MembersAscending, MembersDescending:
		if relationKey == "" {
			return out
		}
		desc := mode == MembersDescending
		slices.SortStableFunc(out, func(a, b T) int {
			ca, cb := memberCount(a, relationKey), memberCount(b, relationKey)
			if desc {
				return cb - ca
			}
			return ca - cb
		})
	}
	return out
}

func memberCount[T Named](it T, key string) int {
	if c, ok := any(it).(Counted); ok {
		return c.RelationCount(key)
	}
	return 0
}

// Derive is Sort(Filter(items, query), mode).
func Derive[T Named](items []T, query string, mode SortMode, relationKey string) []T {
	return Sort(Filter(items, query), mode, relationKey)
}

// Summary is the "X of Y" line shown above a list.
type Summary struct {
	Displayed int
	Loaded    int
	Total     int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d of %d loaded", s.Loaded, s.Total)
}

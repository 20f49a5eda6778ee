package catalog

import (
	"encoding/json"

	"github.com/meur/dattebayo/internal/models"
	"github.com/tidwall/gjson"
)

// Page is the uniform result of a list request.
type Page struct {
	Items []models.Entity `json:"items"`
	Total int             `json:"total"`
}

// adapter unwraps one collection's list response into a Page.
type adapter func(collection string, body []byte) (Page, error)

// adapters is keyed by collection slug. Most collections nest their array
// under the slug itself, but kekkei-genkai and tailed-beasts use hyphenated
// keys that do not match a plain field name, so the key is always explicit.
var adapters = buildAdapters(models.Collections())

func buildAdapters(collections []models.Collection) map[string]adapter {
	m := make(map[string]adapter, len(collections))
	for _, c := range collections {
		m[c.Slug] = keyedAdapter(c.ResponseKey)
	}
	return m
}

func keyedAdapter(key string) adapter {
	return func(collection string, body []byte) (Page, error) {
		if !gjson.ValidBytes(body) {
			return Page{}, &ShapeError{Collection: collection, Missing: "valid JSON"}
		}
		list := gjson.GetBytes(body, key)
		if !list.IsArray() {
			return Page{}, &ShapeError{Collection: collection, Missing: key}
		}
		total := gjson.GetBytes(body, "total")
		if !total.Exists() {
			return Page{}, &ShapeError{Collection: collection, Missing: "total"}
		}

		raw := list.Array()
		items := make([]models.Entity, 0, len(raw))
		for _, r := range raw {
			e, err := decodeEntity(collection, []byte(r.Raw))
			if err != nil {
				return Page{}, err
			}
			items = append(items, e)
		}
		return Page{Items: items, Total: int(total.Int())}, nil
	}
}

func decodeEntity(collection string, raw []byte) (models.Entity, error) {
	if !gjson.GetBytes(raw, "id").Exists() {
		return models.Entity{}, &ShapeError{Collection: collection, Missing: "id"}
	}
	var e models.Entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.Entity{}, &ShapeError{Collection: collection, Missing: "entity", Err: err}
	}
	return e, nil
}

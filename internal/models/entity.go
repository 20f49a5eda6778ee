package models

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Entity is one record of a catalog collection. Only the id and name are
// interpreted; everything else stays in Raw exactly as the API sent it.
type Entity struct {
	ID   int             `json:"id"`
	Name string          `json:"name"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes id and name and keeps the full payload.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entity(p)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the payload as received when there is one.
func (e Entity) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	type plain Entity
	return json.Marshal(plain(e))
}

// EntityID returns the identifier used for deduplication.
func (e Entity) EntityID() int { return e.ID }

// EntityName returns the display and sort key.
func (e Entity) EntityName() string { return e.Name }

// Field looks up a gjson path inside the payload.
func (e Entity) Field(path string) gjson.Result {
	return gjson.GetBytes(e.Raw, path)
}

// Strings reads a field that the API sends either as a single string or as
// an array of strings.
func (e Entity) Strings(path string) []string {
	res := e.Field(path)
	if !res.Exists() {
		return nil
	}
	if !res.IsArray() {
		if s := res.String(); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, v := range res.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Images returns the image URLs of the entity.
func (e Entity) Images() []string {
	return e.Strings("images")
}

// Relation returns the foreign ids stored under key, in payload order.
// Non-numeric entries are skipped.
func (e Entity) Relation(key string) []int {
	if key == "" {
		return nil
	}
	res := e.Field(key)
	if !res.IsArray() {
		return nil
	}
	var ids []int
	for _, v := range res.Array() {
		if v.Type != gjson.Number {
			continue
		}
		ids = append(ids, int(v.Int()))
	}
	return ids
}

// RelationCount is the length of the relation list under key.
func (e Entity) RelationCount(key string) int {
	return len(e.Relation(key))
}

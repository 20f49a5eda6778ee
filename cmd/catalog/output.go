package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/meur/dattebayo/internal/detail"
	"github.com/meur/dattebayo/internal/models"
	"gopkg.in/yaml.v3"
)

// encode writes v as JSON or YAML. Entities go through their JSON form first
// so both formats carry the full API payload.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeCollections(w io.Writer, format string, cs []models.Collection) error {
	if format != "text" {
		return encode(w, format, cs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tLABEL\tPAGE SIZE\tLOADING")
	for _, c := range cs {
		size := "server default"
		if c.Limit > 0 {
			size = fmt.Sprint(c.Limit)
		}
		loading := c.Trigger
		if c.Eager {
			loading = "eager"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Slug, c.Label, size, loading)
	}
	return tw.Flush()
}

func writeEntities(w io.Writer, format string, c models.Collection, items []models.Entity, total int) error {
	if format != "text" {
		if items == nil {
			items = []models.Entity{}
		}
		return encode(w, format, map[string]any{
			"collection": c.Slug,
			"items":      items,
			"total":      total,
		})
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	key := c.RelationKey()
	if key != "" {
		fmt.Fprintln(tw, "ID\tNAME\tMEMBERS")
	} else {
		fmt.Fprintln(tw, "ID\tNAME")
	}
	for _, e := range items {
		if key != "" {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", e.ID, e.Name, e.RelationCount(key))
		} else {
			fmt.Fprintf(tw, "%d\t%s\n", e.ID, e.Name)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d %s\n", len(items), total, strings.ToLower(c.Label))
	return err
}

func writeDetail(w io.Writer, format string, d detail.Detail) error {
	if format != "text" {
		v := map[string]any{"item": d.Parent}
		if d.Collection.Relation != nil {
			related := d.Related
			if related == nil {
				related = []models.Entity{}
			}
			v["related"] = related
		}
		return encode(w, format, v)
	}

	fmt.Fprintf(w, "%s (#%d)\n", d.Parent.Name, d.Parent.ID)
	for _, f := range []struct{ label, path string }{
		{"Clan", "personal.clan"},
		{"Affiliation", "personal.affiliation"},
		{"Sex", "personal.sex"},
		{"Debut", "debut.anime"},
	} {
		if vs := d.Parent.Strings(f.path); len(vs) > 0 {
			fmt.Fprintf(w, "  %s: %s\n", f.label, strings.Join(vs, ", "))
		}
	}
	if d.Collection.Relation == nil {
		return nil
	}
	fmt.Fprintf(w, "Members (%d):\n", len(d.Related))
	for _, e := range d.Related {
		fmt.Fprintf(w, "  %d\t%s\n", e.ID, e.Name)
	}
	return nil
}

package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/pathotrack/internal/datastore"
)

// refKey canonicalizes an original identifier cell into the remapping
// table's string form, so that "3", 3 and "3.0" name the same row.
func refKey(value any) string {
	c := Clean(value, true)
	if c == nil {
		return ""
	}
	return fmt.Sprint(c)
}

// stringField normalizes a cell and renders it as a string, empty for
// missing. Identifier and count columns go through Clean instead; digit
// extraction must never touch free-text values like titles or accession
// numbers.
func stringField(column string) fieldProducer {
	return func(_ context.Context, row Row) any {
		return toString(Normalize(row.Value(column), false))
	}
}

// intPtrField cleans a cell into a nullable integer.
func intPtrField(column string) fieldProducer {
	return func(_ context.Context, row Row) any {
		if n, ok := Clean(row.Value(column), true).(int); ok {
			return &n
		}
		return (*int)(nil)
	}
}

// intField cleans a cell into an integer, zero for missing.
func intField(column string) fieldProducer {
	return func(_ context.Context, row Row) any {
		if n, ok := Clean(row.Value(column), true).(int); ok {
			return n
		}
		return 0
	}
}

// floatPtrField parses a cell into a nullable float. Unparseable strings
// are treated as missing.
func floatPtrField(column string) fieldProducer {
	return func(_ context.Context, row Row) any {
		switch v := Clean(row.Value(column), false).(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
			return (*float64)(nil)
		default:
			return (*float64)(nil)
		}
	}
}

// boolField folds truthy cells ("1", "true", "yes", "x") to true.
func boolField(column string) fieldProducer {
	return func(_ context.Context, row Row) any {
		switch v := Clean(row.Value(column), true).(type) {
		case int:
			return v != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "y", "x":
				return true
			}
			return false
		default:
			return false
		}
	}
}

// speciesField resolves a cell through the taxonomic backbone when a
// resolver is configured, otherwise it behaves like stringField.
func (imp *Importer) speciesField(column string) fieldProducer {
	return func(ctx context.Context, row Row) any {
		name := toString(Normalize(row.Value(column), false))
		if imp.resolver == nil {
			return name
		}
		return imp.resolver.Resolve(ctx, name)
	}
}

// dateField parses a cell into a nullable date, tolerating the formats
// seen in source workbooks. Unparseable input is dropped silently.
func dateField(column string) fieldProducer {
	return func(_ context.Context, row Row) any {
		return parseDate(toString(Normalize(row.Value(column), false)))
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func fieldString(fields map[string]any, name string) string {
	return toString(fields[name])
}

func fieldIntPtr(fields map[string]any, name string) *int {
	if p, ok := fields[name].(*int); ok {
		return p
	}
	return nil
}

func fieldInt(fields map[string]any, name string) int {
	if n, ok := fields[name].(int); ok {
		return n
	}
	return 0
}

func fieldFloatPtr(fields map[string]any, name string) *float64 {
	if p, ok := fields[name].(*float64); ok {
		return p
	}
	return nil
}

func fieldBool(fields map[string]any, name string) bool {
	b, _ := fields[name].(bool)
	return b
}

func fieldTimePtr(fields map[string]any, name string) *time.Time {
	if p, ok := fields[name].(*time.Time); ok {
		return p
	}
	return nil
}

// recordID extracts a copy of a resolved relation's assigned identifier.
func recordID(rec any) *int {
	var id int
	switch r := rec.(type) {
	case *datastore.Publication:
		id = r.ID
	case *datastore.Dataset:
		id = r.ID
	case *datastore.Host:
		id = r.ID
	case *datastore.Pathogen:
		id = r.ID
	default:
		return nil
	}
	return &id
}

func loadPublications(ds datastore.Interface) (map[int]*datastore.Publication, error) {
	var recs []datastore.Publication
	if err := ds.FindAll(&recs); err != nil {
		return nil, err
	}
	byID := make(map[int]*datastore.Publication, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}
	return byID, nil
}

func loadDatasets(ds datastore.Interface) (map[int]*datastore.Dataset, error) {
	var recs []datastore.Dataset
	if err := ds.FindAll(&recs); err != nil {
		return nil, err
	}
	byID := make(map[int]*datastore.Dataset, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}
	return byID, nil
}

func loadHosts(ds datastore.Interface) (map[int]*datastore.Host, error) {
	var recs []datastore.Host
	if err := ds.FindAll(&recs); err != nil {
		return nil, err
	}
	byID := make(map[int]*datastore.Host, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}
	return byID, nil
}

func loadPathogens(ds datastore.Interface) (map[int]*datastore.Pathogen, error) {
	var recs []datastore.Pathogen
	if err := ds.FindAll(&recs); err != nil {
		return nil, err
	}
	byID := make(map[int]*datastore.Pathogen, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}
	return byID, nil
}

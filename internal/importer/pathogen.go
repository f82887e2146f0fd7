package importer

import (
	"context"

	"github.com/tphakala/pathotrack/internal/datastore"
)

const pathogenChunkSize = 100

func (imp *Importer) pathogenConfig(run *Run) (*entityConfig, error) {
	hosts, err := loadHosts(imp.ds)
	if err != nil {
		return nil, err
	}

	return &entityConfig{
		entity: EntityPathogen,
		// The related host's resolved species name takes part in the key,
		// so pathogens of distinct hosts never collapse into one record.
		dedupFields: []string{
			"family", "scientific_name", "assay", "tested", "positive",
			"negative", "number_inconclusive", "host.scientific_name",
		},
		chunkSize: pathogenChunkSize,
		producers: map[string]fieldProducer{
			"family":              stringField("family"),
			"scientific_name":     imp.speciesField("scientific_name"),
			"assay":               stringField("assay"),
			"tested":              intPtrField("tested"),
			"positive":            intPtrField("positive"),
			"negative":            intPtrField("negative"),
			"number_inconclusive": intPtrField("number_inconclusive"),
			"note":                stringField("note"),
		},
		resolveFKs: func(_ context.Context, row Row) map[string]any {
			var rec any
			if id, ok := run.Mapped(EntityHost, refKey(row.Value("host"))); ok {
				if h, found := hosts[id]; found {
					rec = h
				}
			}
			return map[string]any{"host": rec}
		},
		fetch: func(ds datastore.Interface) ([]map[string]any, error) {
			return ds.DedupRows(&datastore.Pathogen{},
				[]string{
					"pathogens.id", "pathogens.family", "pathogens.scientific_name",
					"pathogens.assay", "pathogens.tested", "pathogens.positive",
					"pathogens.negative", "pathogens.number_inconclusive",
					"hosts.scientific_name AS host_scientific_name",
				},
				[]string{"LEFT JOIN hosts ON hosts.id = pathogens.host_id"})
		},
		assemble: func(id int, originalID string, fks map[string]any, fields map[string]any) any {
			return &datastore.Pathogen{
				ID:                 id,
				OriginalID:         originalID,
				HostID:             recordID(fks["host"]),
				Family:             fieldString(fields, "family"),
				ScientificName:     fieldString(fields, "scientific_name"),
				Assay:              fieldString(fields, "assay"),
				Tested:             fieldIntPtr(fields, "tested"),
				Positive:           fieldIntPtr(fields, "positive"),
				Negative:           fieldIntPtr(fields, "negative"),
				NumberInconclusive: fieldIntPtr(fields, "number_inconclusive"),
				Note:               fieldString(fields, "note"),
			}
		},
		collect: func(staged []any) any {
			out := make([]*datastore.Pathogen, len(staged))
			for i, s := range staged {
				out[i] = s.(*datastore.Pathogen)
			}
			return out
		},
	}, nil
}

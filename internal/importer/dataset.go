package importer

import (
	"context"

	"github.com/tphakala/pathotrack/internal/datastore"
)

func (imp *Importer) datasetConfig(run *Run) (*entityConfig, error) {
	publications, err := loadPublications(imp.ds)
	if err != nil {
		return nil, err
	}

	return &entityConfig{
		entity:      EntityDataset,
		dedupFields: []string{"dataset_name", "data_access"},
		dedupSelf:   true,
		// The publication reference is optional: an unresolved parent is
		// stored as null instead of dropping the row.
		fkOptional: true,
		producers: map[string]fieldProducer{
			"dataset_name":       stringField("dataset_name"),
			"sampling_effort":    stringField("sampling_effort"),
			"data_access":        stringField("data_access"),
			"data_resolution":    stringField("data_resolution"),
			"linked_manuscripts": stringField("linked_manuscripts"),
			"notes":              stringField("notes"),
		},
		resolveFKs: func(_ context.Context, row Row) map[string]any {
			var rec any
			if id, ok := run.Mapped(EntityPublication, refKey(row.Value("publication"))); ok {
				if p, found := publications[id]; found {
					rec = p
				}
			}
			return map[string]any{"publication": rec}
		},
		fetch: func(ds datastore.Interface) ([]map[string]any, error) {
			return ds.DedupRows(&datastore.Dataset{},
				[]string{"id", "dataset_name", "data_access"}, nil)
		},
		assemble: func(id int, originalID string, fks map[string]any, fields map[string]any) any {
			return &datastore.Dataset{
				ID:                id,
				OriginalID:        originalID,
				PublicationID:     recordID(fks["publication"]),
				DatasetName:       fieldString(fields, "dataset_name"),
				SamplingEffort:    fieldString(fields, "sampling_effort"),
				DataAccess:        fieldString(fields, "data_access"),
				DataResolution:    fieldString(fields, "data_resolution"),
				LinkedManuscripts: fieldString(fields, "linked_manuscripts"),
				Notes:             fieldString(fields, "notes"),
			}
		},
		collect: func(staged []any) any {
			out := make([]*datastore.Dataset, len(staged))
			for i, s := range staged {
				out[i] = s.(*datastore.Dataset)
			}
			return out
		},
	}, nil
}

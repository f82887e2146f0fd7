package importer

import (
	"context"

	"github.com/tphakala/pathotrack/internal/datastore"
)

// hostChunkSize bounds one insert statement; host sheets run to tens of
// thousands of rows.
const hostChunkSize = 100

func (imp *Importer) hostConfig(run *Run) (*entityConfig, error) {
	datasets, err := loadDatasets(imp.ds)
	if err != nil {
		return nil, err
	}

	return &entityConfig{
		entity: EntityHost,
		dedupFields: []string{
			"scientific_name", "event_date", "locality", "country",
			"verbatim_locality", "coordinate_resolution",
			"location_latitude", "location_longitude", "individual_count",
		},
		required:  []string{"individual_count"},
		chunkSize: hostChunkSize,
		producers: map[string]fieldProducer{
			"scientific_name":        imp.speciesField("scientific_name"),
			"event_date":             stringField("event_date"),
			"locality":               stringField("locality"),
			"country":                stringField("country"),
			"verbatim_locality":      stringField("verbatim_locality"),
			"coordinate_resolution":  stringField("coordinate_resolution"),
			"location_latitude":      floatPtrField("location_latitude"),
			"location_longitude":     floatPtrField("location_longitude"),
			"individual_count":       intField("individual_count"),
			"trap_effort":            intPtrField("trap_effort"),
			"trap_effort_resolution": stringField("trap_effort_resolution"),
		},
		resolveFKs: func(_ context.Context, row Row) map[string]any {
			var rec any
			if id, ok := run.Mapped(EntityDataset, refKey(row.Value("dataset"))); ok {
				if d, found := datasets[id]; found {
					rec = d
				}
			}
			return map[string]any{"dataset": rec}
		},
		fetch: func(ds datastore.Interface) ([]map[string]any, error) {
			return ds.DedupRows(&datastore.Host{},
				[]string{
					"id", "scientific_name", "event_date", "locality",
					"country", "verbatim_locality", "coordinate_resolution",
					"location_latitude", "location_longitude", "individual_count",
				}, nil)
		},
		assemble: func(id int, originalID string, fks map[string]any, fields map[string]any) any {
			return &datastore.Host{
				ID:                   id,
				OriginalID:           originalID,
				DatasetID:            recordID(fks["dataset"]),
				ScientificName:       fieldString(fields, "scientific_name"),
				EventDate:            fieldString(fields, "event_date"),
				Locality:             fieldString(fields, "locality"),
				Country:              fieldString(fields, "country"),
				VerbatimLocality:     fieldString(fields, "verbatim_locality"),
				CoordinateResolution: fieldString(fields, "coordinate_resolution"),
				LocationLatitude:     fieldFloatPtr(fields, "location_latitude"),
				LocationLongitude:    fieldFloatPtr(fields, "location_longitude"),
				IndividualCount:      fieldInt(fields, "individual_count"),
				TrapEffort:           fieldIntPtr(fields, "trap_effort"),
				TrapEffortResolution: fieldString(fields, "trap_effort_resolution"),
			}
		},
		collect: func(staged []any) any {
			out := make([]*datastore.Host, len(staged))
			for i, s := range staged {
				out[i] = s.(*datastore.Host)
			}
			return out
		},
	}, nil
}

package importer

import (
	"context"
	"strings"

	"github.com/tphakala/pathotrack/internal/datastore"
)

// humanTaxon routes a sequence to its study rather than a host or pathogen
// record, regardless of the sequence type tag.
const humanTaxon = "homo sapiens"

func (imp *Importer) sequenceConfig(run *Run) (*entityConfig, error) {
	datasets, err := loadDatasets(imp.ds)
	if err != nil {
		return nil, err
	}
	hosts, err := loadHosts(imp.ds)
	if err != nil {
		return nil, err
	}
	pathogens, err := loadPathogens(imp.ds)
	if err != nil {
		return nil, err
	}

	// A sequence attaches to exactly one parent: Homo sapiens material to
	// the study, otherwise pathogen or host per its sequence type tag.
	resolve := func(_ context.Context, row Row) map[string]any {
		fks := map[string]any{"pathogen": nil, "host": nil, "dataset": nil}
		switch {
		case isHumanTaxon(row.Get("associated_taxa")):
			if id, ok := run.Mapped(EntityDataset, refKey(row.Value("dataset"))); ok {
				if d, found := datasets[id]; found {
					fks["dataset"] = d
				}
			}
		case sequenceType(row) == "pathogen":
			if id, ok := run.Mapped(EntityPathogen, refKey(row.Value("pathogen"))); ok {
				if p, found := pathogens[id]; found {
					fks["pathogen"] = p
				}
			}
		case sequenceType(row) == "host":
			if id, ok := run.Mapped(EntityHost, refKey(row.Value("host"))); ok {
				if h, found := hosts[id]; found {
					fks["host"] = h
				}
			}
		}
		return fks
	}

	validate := func(row Row, fks map[string]any, originalID string, d *diag) bool {
		switch {
		case isHumanTaxon(row.Get("associated_taxa")):
			if fks["dataset"] == nil {
				d.alwaysf("Skipped sequence %s: no study found for Homo sapiens material", originalID)
				return true
			}
		case sequenceType(row) == "pathogen":
			if fks["pathogen"] == nil {
				d.alwaysf("Skipped sequence %s: no pathogen record found", originalID)
				return true
			}
		case sequenceType(row) == "host":
			// Missing host is tolerated; the sequence is kept unlinked.
			if fks["host"] == nil {
				d.alwaysf("Sequence %s has host type but no matching host record; importing without host link", originalID)
			}
		default:
			if fks["pathogen"] == nil && fks["host"] == nil && fks["dataset"] == nil {
				d.alwaysf("Skipped sequence %s: no linked record found", originalID)
				return true
			}
		}
		return false
	}

	return &entityConfig{
		entity:      EntitySequence,
		dedupFields: []string{"accession_number"},
		required:    []string{"accession_number"},
		producers: map[string]fieldProducer{
			"scientific_name":  stringField("scientific_name"),
			"associated_taxa":  stringField("associated_taxa"),
			"sequence_type":    stringField("sequence_type"),
			"accession_number": stringField("accession_number"),
			"method":           stringField("method"),
			"note":             stringField("note"),
			"date_sampled":     dateField("date_sampled"),
			"sample_location":  stringField("sample_location"),
		},
		resolveFKs:  resolve,
		validateFKs: validate,
		fetch: func(ds datastore.Interface) ([]map[string]any, error) {
			return ds.DedupRows(&datastore.Sequence{},
				[]string{"id", "accession_number"}, nil)
		},
		assemble: func(id int, originalID string, fks map[string]any, fields map[string]any) any {
			return &datastore.Sequence{
				ID:              id,
				OriginalID:      originalID,
				ScientificName:  fieldString(fields, "scientific_name"),
				AssociatedTaxa:  fieldString(fields, "associated_taxa"),
				SequenceType:    fieldString(fields, "sequence_type"),
				PathogenID:      recordID(fks["pathogen"]),
				HostID:          recordID(fks["host"]),
				DatasetID:       recordID(fks["dataset"]),
				AccessionNumber: fieldString(fields, "accession_number"),
				Method:          fieldString(fields, "method"),
				Note:            fieldString(fields, "note"),
				DateSampled:     fieldTimePtr(fields, "date_sampled"),
				SampleLocation:  fieldString(fields, "sample_location"),
			}
		},
		collect: func(staged []any) any {
			out := make([]*datastore.Sequence, len(staged))
			for i, s := range staged {
				out[i] = s.(*datastore.Sequence)
			}
			return out
		},
	}, nil
}

func isHumanTaxon(taxa string) bool {
	return strings.EqualFold(strings.TrimSpace(taxa), humanTaxon)
}

func sequenceType(row Row) string {
	return strings.ToLower(strings.TrimSpace(row.Get("sequence_type")))
}

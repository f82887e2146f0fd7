// Package importer merges spreadsheet uploads into the record store,
// deduplicating rows against the store and the current batch and rewriting
// locally scoped identifiers through a per-upload remapping table.
package importer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tphakala/pathotrack/internal/datastore"
	"github.com/tphakala/pathotrack/internal/errors"
	"github.com/tphakala/pathotrack/internal/gbif"
	"github.com/tphakala/pathotrack/internal/logging"
)

// Importer orchestrates entity imports against a record store and the
// species name resolver.
type Importer struct {
	ds       datastore.Interface
	resolver *gbif.Resolver
	log      *slog.Logger
}

// New creates an Importer. The resolver may be nil, in which case species
// names are normalized but not canonicalized.
func New(ds datastore.Interface, resolver *gbif.Resolver) *Importer {
	return &Importer{
		ds:       ds,
		resolver: resolver,
		log:      logging.ForService("importer"),
	}
}

// fieldProducer computes one model field value from a raw row.
type fieldProducer func(ctx context.Context, row Row) any

// fkResolver resolves the foreign keys of a row to already-imported or
// already-persisted parent records, nil for unresolved.
type fkResolver func(ctx context.Context, row Row) map[string]any

// fkValidator decides whether a row with the given resolved relations is
// imported, emitting its own diagnostics. Returning true skips the row.
type fkValidator func(row Row, fks map[string]any, originalID string, d *diag) bool

// entityConfig wires the shared import algorithm for one entity type.
type entityConfig struct {
	entity      EntityType
	dedupFields []string
	dedupSelf   bool
	required    []string
	chunkSize   int
	producers   map[string]fieldProducer
	resolveFKs  fkResolver
	validateFKs fkValidator
	// fkOptional leaves unresolved relations null instead of applying the
	// default skip-if-missing policy. Ignored when validateFKs is set.
	fkOptional bool

	fetch    func(ds datastore.Interface) ([]map[string]any, error)
	assemble func(id int, originalID string, fks map[string]any, fields map[string]any) any
	collect  func(staged []any) any
}

// configFor builds the per-entity wiring, preloading the parent records the
// entity's foreign keys can refer to.
func (imp *Importer) configFor(entity EntityType, run *Run) (*entityConfig, error) {
	switch entity {
	case EntityPublication:
		return imp.publicationConfig()
	case EntityDataset:
		return imp.datasetConfig(run)
	case EntityHost:
		return imp.hostConfig(run)
	case EntityPathogen:
		return imp.pathogenConfig(run)
	case EntitySequence:
		return imp.sequenceConfig(run)
	default:
		return nil, errors.Newf("unknown entity type %q", entity).
			Category(errors.CategoryValidation).
			Component("importer").
			Build()
	}
}

// importEntity runs the shared import algorithm over one table of rows.
// Row-level problems are reported through d and never abort the import;
// the returned error is batch-fatal.
func (imp *Importer) importEntity(ctx context.Context, table *Table, cfg *entityConfig, run *Run, d *diag) error {
	ApplyAliases(table, columnAliases[cfg.entity])

	existing, err := cfg.fetch(imp.ds)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Context("entity", string(cfg.entity)).
			Component("importer").
			Build()
	}

	usedIDs := make(map[int]struct{}, len(existing))
	existingKeys := make(map[Key]struct{}, len(existing))
	keyToID := make(map[Key]int, len(existing))
	for _, obj := range existing {
		// Joined dedup columns come back under an underscore alias.
		for _, f := range cfg.dedupFields {
			if strings.Contains(f, ".") {
				obj[f] = obj[strings.ReplaceAll(f, ".", "_")]
			}
		}
		id := toInt(obj["id"])
		usedIDs[id] = struct{}{}
		key := MakeKey(obj, cfg.dedupFields, true)
		existingKeys[key] = struct{}{}
		keyToID[key] = id
	}

	remap := run.mapping(cfg.entity)

	var staged []any
	inserted := 0
	flush := func() error {
		if len(staged) == 0 {
			return nil
		}
		if err := imp.ds.BulkInsert(cfg.collect(staged), cfg.chunkSize); err != nil {
			return errors.New(err).
				Category(errors.CategoryDatabase).
				Context("entity", string(cfg.entity)).
				Context("records", len(staged)).
				Component("importer").
				Build()
		}
		inserted += len(staged)
		staged = nil
		return nil
	}

rows:
	for i := 0; i < table.Len(); i++ {
		if d.stopped || ctx.Err() != nil {
			break
		}
		row := table.Row(i)
		// The raw spelling is retained on the record for traceability;
		// the canonicalized form keys the remap table.
		rawID := strings.TrimSpace(row.Get("id"))
		originalID := refKey(row.Value("id"))

		for _, field := range cfg.required {
			if Normalize(row.Value(field), true) == nil {
				d.alwaysf("Skipped row with missing %s (row=%v)", field, row.Values())
				continue rows
			}
		}

		cleanID := AssignUniqueID(usedIDs, intCandidate(Clean(originalID, true)), 1)

		var fks map[string]any
		if cfg.resolveFKs != nil {
			fks = cfg.resolveFKs(ctx, row)
			switch {
			case cfg.validateFKs != nil:
				if cfg.validateFKs(row, fks, originalID, d) {
					continue
				}
			case !cfg.fkOptional && anyNil(fks):
				d.alwaysf("Skipped: Missing foreign key for row=%v", row.Values())
				continue
			}
		}

		fields := make(map[string]any, len(cfg.producers))
		for name, produce := range cfg.producers {
			fields[name] = produce(ctx, row)
		}

		// Key sources prefer resolved relation attributes for dotted
		// fields and the processed values for everything else, so that
		// canonicalized species names take part in dedup.
		keySource := make(map[string]any, len(cfg.dedupFields))
		for _, f := range cfg.dedupFields {
			if base, attr, dotted := strings.Cut(f, "."); dotted {
				if rec := fks[base]; rec != nil {
					keySource[f] = relationAttr(rec, attr)
				} else {
					keySource[f] = row.Value(f)
				}
			} else if v, ok := fields[f]; ok {
				keySource[f] = v
			} else {
				keySource[f] = row.Value(f)
			}
		}
		key := MakeKey(keySource, cfg.dedupFields, true)

		if _, dup := existingKeys[key]; dup {
			existingID := keyToID[key]
			if originalID != "" {
				if mapped, ok := remap[originalID]; ok {
					if mapped != existingID {
						return errors.Newf("duplicate ID %q in %s data with conflicting mappings: existing mapping=%d, new mapping=%d",
							originalID, cfg.entity, mapped, existingID).
							Category(errors.CategoryConflict).
							Component("importer").
							Build()
					}
				} else {
					remap[originalID] = existingID
				}
			}
			d.infof("Mapped duplicate %s ID %s to existing %d", cfg.entity, originalID, existingID)
			continue
		}

		// Staged keys join the existing-key sets so later in-batch
		// duplicates remap onto this row's assigned id.
		if cfg.dedupSelf {
			existingKeys[key] = struct{}{}
			keyToID[key] = cleanID
		}

		if originalID != "" {
			if mapped, ok := remap[originalID]; ok {
				return errors.Newf("duplicate ID %q in %s data (already mapped to %d)", originalID, cfg.entity, mapped).
					Category(errors.CategoryConflict).
					Component("importer").
					Build()
			}
			remap[originalID] = cleanID
		}

		staged = append(staged, cfg.assemble(cleanID, rawID, fks, fields))

		if cfg.chunkSize > 0 && len(staged) >= cfg.chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}
	d.alwaysf("Inserted %d new %s records.", inserted, cfg.entity)
	imp.log.Info("entity import finished",
		"run_id", run.ID,
		"entity", string(cfg.entity),
		"rows", table.Len(),
		"inserted", inserted)
	return nil
}

// intCandidate narrows a cleaned original identifier to an id candidate.
func intCandidate(v any) *int {
	if n, ok := v.(int); ok {
		return &n
	}
	return nil
}

func anyNil(fks map[string]any) bool {
	for _, v := range fks {
		if v == nil {
			return true
		}
	}
	return false
}

// relationAttr reads a dedup attribute off a resolved relation record.
func relationAttr(rec any, attr string) any {
	switch r := rec.(type) {
	case *datastore.Host:
		if attr == "scientific_name" {
			return r.ScientificName
		}
	case *datastore.Pathogen:
		if attr == "scientific_name" {
			return r.ScientificName
		}
	}
	return nil
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint64:
		return int(t)
	case float64:
		return int(t)
	default:
		return 0
	}
}

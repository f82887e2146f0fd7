package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tphakala/pathotrack/internal/errors"
)

// ImportCSV reads a single-entity CSV stream and imports it as the entity
// named by typeTag. The returned sequence lazily yields diagnostic lines as
// the import progresses; a batch-fatal error ends the sequence and is left
// on run.
func (imp *Importer) ImportCSV(ctx context.Context, r io.Reader, typeTag string, run *Run) iter.Seq[string] {
	return func(yield func(string) bool) {
		d := &diag{yield: yield, verbose: run.Verbose}

		entity, ok := EntityForSheet(typeTag)
		if !ok {
			d.alwaysf("Unknown entity type: %s", typeTag)
			return
		}

		table, err := readCSV(r)
		if err != nil {
			run.err = errors.New(err).
				Category(errors.CategoryFileParsing).
				Context("entity", typeTag).
				Component("importer").
				Build()
			d.alwaysf("Error: %v", run.err)
			return
		}

		d.alwaysf("Importing %s...", entity)
		if err := imp.runEntity(ctx, table, entity, run, d); err != nil {
			run.err = err
			d.alwaysf("Error: %v", err)
		}
	}
}

// ImportWorkbook reads a multi-sheet workbook and imports every recognized
// sheet in dependency order. An unrecognized sheet name aborts the whole
// upload before any sheet is processed.
func (imp *Importer) ImportWorkbook(ctx context.Context, r io.Reader, run *Run) iter.Seq[string] {
	return func(yield func(string) bool) {
		d := &diag{yield: yield, verbose: run.Verbose}

		f, err := excelize.OpenReader(r)
		if err != nil {
			run.err = errors.New(err).
				Category(errors.CategoryFileParsing).
				Component("importer").
				Build()
			d.alwaysf("Error: %v", run.err)
			return
		}
		defer f.Close()

		sheets := make(map[EntityType]string)
		for _, name := range f.GetSheetList() {
			entity, ok := EntityForSheet(name)
			if !ok {
				run.err = errors.Newf("unknown sheet name %q in workbook", name).
					Category(errors.CategoryValidation).
					Component("importer").
					Build()
				d.alwaysf("Error: %v", run.err)
				return
			}
			sheets[entity] = name
		}

		for _, entity := range importOrder {
			if d.stopped || run.err != nil {
				return
			}
			name, ok := sheets[entity]
			if !ok {
				continue
			}
			table, err := readSheet(f, name)
			if err != nil {
				run.err = errors.New(err).
					Category(errors.CategoryFileParsing).
					Context("sheet", name).
					Component("importer").
					Build()
				d.alwaysf("Error: %v", run.err)
				return
			}
			d.infof("Processing sheet: %s (%d rows)", name, table.Len())
			d.alwaysf("Importing %s...", entity)
			if err := imp.runEntity(ctx, table, entity, run, d); err != nil {
				run.err = err
				d.alwaysf("Error: %v", err)
				return
			}
		}
	}
}

// runEntity builds the entity's wiring and runs the shared import over one
// table.
func (imp *Importer) runEntity(ctx context.Context, table *Table, entity EntityType, run *Run, d *diag) error {
	cfg, err := imp.configFor(entity, run)
	if err != nil {
		return err
	}
	return imp.importEntity(ctx, table, cfg, run, d)
}

// readCSV loads a CSV stream into a table with trimmed, lower-cased column
// names. Ragged rows are tolerated.
func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		rows = append(rows, record)
	}
	return NewTable(header, rows), nil
}

// readSheet loads one workbook sheet into a table, first row as header.
func readSheet(f *excelize.File, name string) (*Table, error) {
	cells, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	if len(cells) == 0 {
		return NewTable(nil, nil), nil
	}
	header := cells[0]
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}
	return NewTable(header, cells[1:]), nil
}

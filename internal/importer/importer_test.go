package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/pathotrack/internal/conf"
	"github.com/tphakala/pathotrack/internal/datastore"
	"github.com/tphakala/pathotrack/internal/errors"
	"github.com/tphakala/pathotrack/internal/gbif"
)

// newTestStore opens an in-memory SQLite store with migrated tables.
func newTestStore(t *testing.T) *datastore.SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"

	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// newBackboneStub serves canned backbone-match responses keyed by the
// name query parameter. Unknown names get an empty match.
func newBackboneStub(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if body, ok := responses[r.URL.Query().Get("name")]; ok {
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte(`{"diagnostics":{"confidence":0,"matchType":"NONE"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestImporter(t *testing.T) (*Importer, *datastore.SQLiteStore) {
	t.Helper()
	store := newTestStore(t)
	return New(store, nil), store
}

// importCSVString runs one CSV import to completion and returns the
// diagnostic lines.
func importCSVString(t *testing.T, imp *Importer, data, typeTag string, run *Run) []string {
	t.Helper()
	var lines []string
	for line := range imp.ImportCSV(context.Background(), strings.NewReader(data), typeTag, run) {
		lines = append(lines, line)
	}
	return lines
}

func countRecords[T any](t *testing.T, store datastore.Interface) int {
	t.Helper()
	var recs []T
	require.NoError(t, store.FindAll(&recs))
	return len(recs)
}

const publicationCSV = "full_text_id,title,author,publication year\n" +
	"ft_1,Hantavirus in urban rats,Doe J,2019\n" +
	"ft_2,Arenavirus survey,Roe A,2021\n"

func TestPublicationImportIsIdempotent(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	importCSVString(t, imp, publicationCSV, "publication", run)
	require.NoError(t, run.Err())
	require.Equal(t, 2, countRecords[datastore.Publication](t, store))

	rerun := NewRun(false)
	importCSVString(t, imp, publicationCSV, "publication", rerun)
	require.NoError(t, rerun.Err())
	assert.Equal(t, 2, countRecords[datastore.Publication](t, store))

	// Re-importing maps originals onto the persisted identifiers.
	id, ok := rerun.Mapped(EntityPublication, "1")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestOriginalIDKeepsSourceSpelling(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	importCSVString(t, imp, publicationCSV, "publication", run)
	require.NoError(t, run.Err())

	var pubs []datastore.Publication
	require.NoError(t, store.FindAll(&pubs))
	spellings := make(map[string]struct{}, len(pubs))
	for i := range pubs {
		spellings[pubs[i].OriginalID] = struct{}{}
	}
	// The record keeps the file's spelling; the remap table uses the
	// cleaned form.
	assert.Contains(t, spellings, "ft_1")
	assert.Contains(t, spellings, "ft_2")
	_, ok := run.Mapped(EntityPublication, "1")
	assert.True(t, ok)
}

func TestAccessionNumbersWithUnderscoresStayIntact(t *testing.T) {
	imp, store := newTestImporter(t)

	// RefSeq-style accessions share their digit run; they must be stored
	// verbatim and dedup as distinct records.
	run := NewRun(false)
	importCSVString(t, imp,
		"sequence_record_id,sequenceType,accession_number\n"+
			"s1,host,NC_045512\n"+
			"s2,host,NW_045512\n",
		"sequence", run)
	require.NoError(t, run.Err())

	var seqs []datastore.Sequence
	require.NoError(t, store.FindAll(&seqs))
	require.Len(t, seqs, 2)
	accessions := make(map[string]struct{}, len(seqs))
	for i := range seqs {
		accessions[seqs[i].AccessionNumber] = struct{}{}
	}
	assert.Contains(t, accessions, "NC_045512")
	assert.Contains(t, accessions, "NW_045512")
}

func TestPublicationSkipsRowsWithoutTitle(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	lines := importCSVString(t, imp,
		"full_text_id,title,author\nft_1,,Doe J\nft_2,Kept,Roe A\n",
		"publication", run)
	require.NoError(t, run.Err())
	assert.Equal(t, 1, countRecords[datastore.Publication](t, store))

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Skipped row with missing title")
}

func TestPublicationDeduplicatesWithinBatch(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	importCSVString(t, imp,
		"full_text_id,title,author,publication year\n"+
			"ft_1,Same study,Doe J,2019\n"+
			"ft_2,Same study,Doe J,2019\n",
		"publication", run)
	require.NoError(t, run.Err())
	assert.Equal(t, 1, countRecords[datastore.Publication](t, store))

	// The in-batch duplicate maps onto the first row's assigned id so
	// later sheets can still reference either original.
	first, ok := run.Mapped(EntityPublication, "1")
	require.True(t, ok)
	second, ok := run.Mapped(EntityPublication, "2")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestHostResolvesBatchDuplicateDataset(t *testing.T) {
	imp, store := newTestImporter(t)

	// d2 collapses into d1 on (dataset_name, data_access); a host row
	// referencing d2 must still resolve to the surviving record.
	run := NewRun(false)
	importCSVString(t, imp,
		"study_id,datasetName,data_access\n"+
			"d1,Trap grid A,open\n"+
			"d2,Trap grid A,open\n",
		"dataset", run)
	importCSVString(t, imp,
		"host_record_id,scientificName,individualCount,study\n"+
			"h1,Rattus rattus,3,d2\n",
		"host", run)
	require.NoError(t, run.Err())

	require.Equal(t, 1, countRecords[datastore.Dataset](t, store))
	survivorID, ok := run.Mapped(EntityDataset, "d1")
	require.True(t, ok)
	duplicateID, ok := run.Mapped(EntityDataset, "d2")
	require.True(t, ok)
	assert.Equal(t, survivorID, duplicateID)

	var hosts []datastore.Host
	require.NoError(t, store.FindAll(&hosts))
	require.Len(t, hosts, 1)
	require.NotNil(t, hosts[0].DatasetID)
	assert.Equal(t, survivorID, *hosts[0].DatasetID)
}

func TestDatasetPublicationIsOptional(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	importCSVString(t, imp, publicationCSV, "publication", run)
	importCSVString(t, imp,
		"study_id,publication_id,datasetName,data_access\n"+
			"d1,ft_1,Trap grid A,open\n"+
			"d2,,Trap grid B,restricted\n",
		"dataset", run)
	require.NoError(t, run.Err())

	var datasets []datastore.Dataset
	require.NoError(t, store.FindAll(&datasets))
	require.Len(t, datasets, 2)

	byName := map[string]*datastore.Dataset{}
	for i := range datasets {
		byName[datasets[i].DatasetName] = &datasets[i]
	}
	require.NotNil(t, byName["Trap grid A"].PublicationID)
	pubID, _ := run.Mapped(EntityPublication, "1")
	assert.Equal(t, pubID, *byName["Trap grid A"].PublicationID)
	assert.Nil(t, byName["Trap grid B"].PublicationID)
}

func TestHostWithoutResolvableDatasetIsSkipped(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	lines := importCSVString(t, imp,
		"host_record_id,scientificName,individualCount,study\n"+
			"h1,Rattus rattus,3,d9\n",
		"host", run)
	require.NoError(t, run.Err())
	assert.Equal(t, 0, countRecords[datastore.Host](t, store))
	assert.Contains(t, strings.Join(lines, "\n"), "Missing foreign key")
}

func TestHostIDCollisionRemapsAndKeepsDatasetLink(t *testing.T) {
	imp, store := newTestImporter(t)

	// A host with id 1 is already persisted from an earlier upload.
	datasetID := 5
	require.NoError(t, store.BulkInsert([]*datastore.Dataset{
		{ID: 5, OriginalID: "old", DatasetName: "Archive grid", DataAccess: "open"},
	}, 0))
	require.NoError(t, store.BulkInsert([]*datastore.Host{
		{ID: 1, OriginalID: "old_h", DatasetID: &datasetID, ScientificName: "Mus musculus", IndividualCount: 2},
	}, 0))

	run := NewRun(false)
	importCSVString(t, imp,
		"study_id,datasetName,data_access\nd1,Fresh grid,open\n",
		"dataset", run)
	importCSVString(t, imp,
		"host_record_id,scientificName,individualCount,study\n"+
			"1,Rattus rattus,3,d1\n",
		"host", run)
	require.NoError(t, run.Err())

	newID, ok := run.Mapped(EntityHost, "1")
	require.True(t, ok)
	assert.NotEqual(t, 1, newID, "colliding original id must be reassigned")

	var hosts []datastore.Host
	require.NoError(t, store.FindAll(&hosts))
	require.Len(t, hosts, 2)
	for i := range hosts {
		if hosts[i].ID != newID {
			continue
		}
		freshID, _ := run.Mapped(EntityDataset, "d1")
		require.NotNil(t, hosts[i].DatasetID)
		assert.Equal(t, freshID, *hosts[i].DatasetID)
	}

	// A pathogen referencing the colliding original id resolves to the
	// reassigned host, not to the pre-existing record.
	importCSVString(t, imp,
		"pathogen_record_id,scientificName,family,tested,associated_host_record_id\n"+
			"p1,Orthohantavirus seoulense,Hantaviridae,3,1\n",
		"pathogen", run)
	require.NoError(t, run.Err())

	var pathogens []datastore.Pathogen
	require.NoError(t, store.FindAll(&pathogens))
	require.Len(t, pathogens, 1)
	require.NotNil(t, pathogens[0].HostID)
	assert.Equal(t, newID, *pathogens[0].HostID)
}

func TestRemapConflictIsBatchFatal(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	lines := importCSVString(t, imp,
		"full_text_id,title,author\n"+
			"ft_1,First paper,Doe J\n"+
			"ft_1,Second paper,Roe A\n",
		"publication", run)
	require.Error(t, run.Err())
	assert.True(t, errors.IsCategory(run.Err(), errors.CategoryConflict))
	assert.Contains(t, strings.Join(lines, "\n"), "Error:")

	// The first row was staged before the conflict surfaced; nothing
	// after the failing row is written.
	assert.LessOrEqual(t, countRecords[datastore.Publication](t, store), 1)
}

func TestSequenceParentSelection(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	importCSVString(t, imp,
		"study_id,datasetName,data_access\nd1,Grid,open\n",
		"dataset", run)
	importCSVString(t, imp,
		"host_record_id,scientificName,individualCount,study\nh1,Rattus rattus,3,d1\n",
		"host", run)
	importCSVString(t, imp,
		"pathogen_record_id,scientificName,family,associated_host_record_id\np1,Orthohantavirus,Hantaviridae,h1\n",
		"pathogen", run)

	lines := importCSVString(t, imp,
		"sequence_record_id,sequenceType,associatedTaxa,accession_number,associated_pathogen_record_id,associated_host_record_id,study\n"+
			"s1,pathogen,Rattus rattus,MN00001,p1,,\n"+
			"s2,host,Rattus rattus,MN00002,,h_missing,\n"+
			"s3,host,Homo sapiens,MN00003,,,d1\n"+
			"s4,pathogen,Apodemus agrarius,MN00004,p_missing,,\n",
		"sequence", run)
	require.NoError(t, run.Err())

	var seqs []datastore.Sequence
	require.NoError(t, store.FindAll(&seqs))
	require.Len(t, seqs, 3, "the pathogen-type row without a pathogen is skipped")

	byAccession := map[string]*datastore.Sequence{}
	for i := range seqs {
		byAccession[seqs[i].AccessionNumber] = &seqs[i]
	}

	// Pathogen-typed sequence links the pathogen only.
	s1 := byAccession["MN00001"]
	require.NotNil(t, s1)
	pathogenID, _ := run.Mapped(EntityPathogen, "p1")
	require.NotNil(t, s1.PathogenID)
	assert.Equal(t, pathogenID, *s1.PathogenID)
	assert.Nil(t, s1.HostID)
	assert.Nil(t, s1.DatasetID)

	// Host-typed sequence with an unknown host is kept, unlinked.
	s2 := byAccession["MN00002"]
	require.NotNil(t, s2)
	assert.Nil(t, s2.HostID)
	assert.Nil(t, s2.PathogenID)
	assert.Nil(t, s2.DatasetID)
	assert.Contains(t, strings.Join(lines, "\n"), "importing without host link")

	// Homo sapiens material attaches to the study regardless of type.
	s3 := byAccession["MN00003"]
	require.NotNil(t, s3)
	datasetID, _ := run.Mapped(EntityDataset, "d1")
	require.NotNil(t, s3.DatasetID)
	assert.Equal(t, datasetID, *s3.DatasetID)
	assert.Nil(t, s3.HostID)
	assert.Nil(t, s3.PathogenID)
}

func TestSequenceDedupsOnAccessionNumber(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	importCSVString(t, imp,
		"study_id,datasetName,data_access\nd1,Grid,open\n",
		"dataset", run)
	seqCSV := "sequence_record_id,sequenceType,associatedTaxa,accession_number,study\n" +
		"s1,host,Homo sapiens,MN00009,d1\n"
	importCSVString(t, imp, seqCSV, "sequence", run)
	require.NoError(t, run.Err())
	require.Equal(t, 1, countRecords[datastore.Sequence](t, store))

	rerun := NewRun(false)
	importCSVString(t, imp,
		"study_id,datasetName,data_access\nd1,Grid,open\n",
		"dataset", rerun)
	importCSVString(t, imp, seqCSV, "sequence", rerun)
	require.NoError(t, rerun.Err())
	assert.Equal(t, 1, countRecords[datastore.Sequence](t, store))
}

func TestUnknownEntityTagEmitsDiagnosticOnly(t *testing.T) {
	imp, store := newTestImporter(t)

	run := NewRun(false)
	lines := importCSVString(t, imp, "id,title\n1,x\n", "mystery", run)
	require.NoError(t, run.Err())
	assert.Equal(t, 0, countRecords[datastore.Publication](t, store))
	assert.Contains(t, strings.Join(lines, "\n"), "Unknown entity type: mystery")
}

func TestHostSpeciesNamesAreCanonicalizedForDedup(t *testing.T) {
	srv := newBackboneStub(t, map[string]string{
		"Ratus rattus":  `{"usage":{"key":2439261,"canonicalName":"Rattus rattus","status":"ACCEPTED"},"diagnostics":{"confidence":97,"matchType":"FUZZY"}}`,
		"Rattus rattus": `{"usage":{"key":2439261,"canonicalName":"Rattus rattus","status":"ACCEPTED"},"diagnostics":{"confidence":99,"matchType":"EXACT"}}`,
	})

	store := newTestStore(t)
	client := gbif.NewClient(gbif.Config{BaseURL: srv.URL, RateLimitMS: 1})
	imp := New(store, gbif.NewResolver(client, 85))

	run := NewRun(false)
	importCSVString(t, imp,
		"study_id,datasetName,data_access\nd1,Grid,open\n",
		"dataset", run)
	importCSVString(t, imp,
		"host_record_id,scientificName,individualCount,study\nh1,Ratus rattus,3,d1\n",
		"host", run)
	require.NoError(t, run.Err())

	var hosts []datastore.Host
	require.NoError(t, store.FindAll(&hosts))
	require.Len(t, hosts, 1)
	assert.Equal(t, "Rattus rattus", hosts[0].ScientificName)

	// The correctly spelled name dedups against the canonicalized record.
	rerun := NewRun(false)
	importCSVString(t, imp,
		"study_id,datasetName,data_access\nd1,Grid,open\n",
		"dataset", rerun)
	importCSVString(t, imp,
		"host_record_id,scientificName,individualCount,study\nh2,Rattus rattus,3,d1\n",
		"host", rerun)
	require.NoError(t, rerun.Err())
	assert.Equal(t, 1, countRecords[datastore.Host](t, store))
}

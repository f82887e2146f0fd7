package importer

import "strings"

// EntityType names one of the five importable entity types.
type EntityType string

const (
	EntityPublication EntityType = "publication"
	EntityDataset     EntityType = "dataset"
	EntityHost        EntityType = "host"
	EntityPathogen    EntityType = "pathogen"
	EntitySequence    EntityType = "sequence"
)

// importOrder is the fixed dependency order sheets are processed in; later
// entities reference earlier ones through the remapping table.
var importOrder = []EntityType{
	EntityPublication,
	EntityDataset,
	EntityHost,
	EntityPathogen,
	EntitySequence,
}

// sheetAliases maps normalized sheet names and type tags to entity types.
var sheetAliases = map[string]EntityType{
	"publication":         EntityPublication,
	"publications":        EntityPublication,
	"inclusion full text": EntityPublication,
	"inclusion_full_text": EntityPublication,
	"full_text":           EntityPublication,
	"dataset":             EntityDataset,
	"datasets":            EntityDataset,
	"descriptive":         EntityDataset,
	"study":               EntityDataset,
	"studies":             EntityDataset,
	"host":                EntityHost,
	"hosts":               EntityHost,
	"rodent":              EntityHost,
	"rodents":             EntityHost,
	"pathogen":            EntityPathogen,
	"pathogens":           EntityPathogen,
	"sequence":            EntitySequence,
	"sequences":           EntitySequence,
}

// EntityForSheet resolves a sheet name or entity type tag to an entity type.
func EntityForSheet(name string) (EntityType, bool) {
	entity, ok := sheetAliases[strings.ToLower(strings.TrimSpace(name))]
	return entity, ok
}

// columnAliases lists, per entity type, the known spellings of each
// canonical field name found in source files.
var columnAliases = map[EntityType]map[string][]string{
	EntityPublication: {
		"id":                         {"publication_id", "full_text_id"},
		"extractor":                  {"extractor"},
		"community":                  {"community"},
		"spatio_temporal_extraction": {"spatio-temporal extraction"},
		"decision":                   {"decision"},
		"reason":                     {"reason"},
		"key":                        {"key"},
		"publication_year":           {"publication year"},
		"author":                     {"author"},
		"title":                      {"title"},
		"processed":                  {"processed"},
	},
	EntityDataset: {
		"id":                 {"dataset_id", "study_id"},
		"publication":        {"publication_id", "full_text", "full_text_id"},
		"dataset_name":       {"datasetName"},
		"sampling_effort":    {"sampling_effort"},
		"data_access":        {"data_access"},
		"data_resolution":    {"data_resolution"},
		"linked_manuscripts": {"linked_manuscripts"},
		"notes":              {"notes"},
	},
	EntityHost: {
		"id":                     {"host_record_id", "rodent_record_id"},
		"dataset":                {"study", "study_id", "dataset_id"},
		"scientific_name":        {"scientificName"},
		"event_date":             {"eventDate"},
		"locality":               {"locality"},
		"country":                {"country"},
		"verbatim_locality":      {"verbatimLocality"},
		"coordinate_resolution":  {"coordinate_resolution"},
		"location_latitude":      {"decimalLatitude"},
		"location_longitude":     {"decimalLongitude"},
		"individual_count":       {"individualCount"},
		"trap_effort":            {"trapEffort"},
		"trap_effort_resolution": {"trapEffortResolution"},
	},
	EntityPathogen: {
		"id":                  {"pathogen_record_id"},
		"host":                {"associated_host_record_id", "associated_rodent_record_id"},
		"family":              {"family"},
		"scientific_name":     {"scientificName"},
		"assay":               {"assay"},
		"tested":              {"tested"},
		"positive":            {"positive"},
		"negative":            {"negative"},
		"number_inconclusive": {"number_inconclusive"},
		"note":                {"note"},
	},
	EntitySequence: {
		"id":               {"sequence_record_id"},
		"sequence_type":    {"sequenceType"},
		"associated_taxa":  {"associatedTaxa"},
		"pathogen":         {"associated_pathogen_record_id"},
		"host":             {"associated_host_record_id", "associated_rodent_record_id"},
		"dataset":          {"study", "study_id"},
		"accession_number": {"accession_number"},
		"method":           {"method"},
		"note":             {"note"},
		"date_sampled":     {"date_sampled"},
		"sample_location":  {"sample_location"},
		"scientific_name":  {"scientificName"},
	},
}

// ApplyAliases renames the table's columns to canonical field names.
// For each canonical field the first matching alias spelling wins
// (matched case-insensitively on trimmed names); afterwards every column
// name is lower-cased and trimmed. Running it twice is a no-op.
func ApplyAliases(t *Table, aliases map[string][]string) {
	colMap := make(map[string]string, len(t.Columns))
	for _, col := range t.Columns {
		colMap[strings.ToLower(strings.TrimSpace(col))] = col
	}

	rename := map[string]string{}
	for field, options := range aliases {
		for _, option := range options {
			norm := strings.ToLower(strings.TrimSpace(option))
			if actual, ok := colMap[norm]; ok {
				rename[actual] = field
				break
			}
		}
	}

	for i, col := range t.Columns {
		if canonical, ok := rename[col]; ok {
			t.Columns[i] = canonical
		} else {
			t.Columns[i] = strings.ToLower(strings.TrimSpace(col))
		}
	}
	t.reindex()
}

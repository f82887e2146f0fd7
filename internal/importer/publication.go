package importer

import "github.com/tphakala/pathotrack/internal/datastore"

func (imp *Importer) publicationConfig() (*entityConfig, error) {
	return &entityConfig{
		entity:      EntityPublication,
		dedupFields: []string{"title", "author", "publication_year"},
		dedupSelf:   true,
		required:    []string{"title"},
		producers: map[string]fieldProducer{
			"extractor":                  stringField("extractor"),
			"community":                  stringField("community"),
			"spatio_temporal_extraction": stringField("spatio_temporal_extraction"),
			"decision":                   stringField("decision"),
			"reason":                     stringField("reason"),
			"key":                        stringField("key"),
			"publication_year":           intPtrField("publication_year"),
			"author":                     stringField("author"),
			"title":                      stringField("title"),
			"processed":                  boolField("processed"),
		},
		fetch: func(ds datastore.Interface) ([]map[string]any, error) {
			return ds.DedupRows(&datastore.Publication{},
				[]string{"id", "title", "author", "publication_year"}, nil)
		},
		assemble: func(id int, originalID string, _ map[string]any, fields map[string]any) any {
			return &datastore.Publication{
				ID:                       id,
				OriginalID:               originalID,
				Extractor:                fieldString(fields, "extractor"),
				Community:                fieldString(fields, "community"),
				SpatioTemporalExtraction: fieldString(fields, "spatio_temporal_extraction"),
				Decision:                 fieldString(fields, "decision"),
				Reason:                   fieldString(fields, "reason"),
				Key:                      fieldString(fields, "key"),
				PublicationYear:          fieldIntPtr(fields, "publication_year"),
				Author:                   fieldString(fields, "author"),
				Title:                    fieldString(fields, "title"),
				Processed:                fieldBool(fields, "processed"),
			}
		},
		collect: func(staged []any) any {
			out := make([]*datastore.Publication, len(staged))
			for i, s := range staged {
				out[i] = s.(*datastore.Publication)
			}
			return out
		},
	}, nil
}

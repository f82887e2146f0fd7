// model.go this code defines the data model for the application
package datastore

import "time"

// Publication represents a source publication from which data was extracted
type Publication struct {
	ID                       int    `gorm:"primaryKey;autoIncrement:false"`
	OriginalID               string `gorm:"size:25"`
	Extractor                string `gorm:"size:500"`
	Community                string `gorm:"size:500"`
	SpatioTemporalExtraction string `gorm:"size:500"`
	Decision                 string `gorm:"size:500"`
	Reason                   string `gorm:"type:text"`
	Key                      string `gorm:"size:50"`
	PublicationYear          *int
	Author                   string `gorm:"size:1000"`
	Title                    string `gorm:"type:text;not null"`
	Processed                bool
}

// Dataset represents a study dataset described by a publication
type Dataset struct {
	ID                int    `gorm:"primaryKey;autoIncrement:false"`
	OriginalID        string `gorm:"size:25"`
	PublicationID     *int   `gorm:"index"`
	Publication       *Publication
	DatasetName       string `gorm:"size:500"`
	SamplingEffort    string `gorm:"size:500"`
	DataAccess        string `gorm:"size:100"`
	DataResolution    string `gorm:"size:100"`
	LinkedManuscripts string `gorm:"type:text"`
	Notes             string `gorm:"type:text"`
}

// Host represents a sampled host record within a dataset
type Host struct {
	ID                   int    `gorm:"primaryKey;autoIncrement:false"`
	OriginalID           string `gorm:"size:25"`
	DatasetID            *int   `gorm:"index"`
	Dataset              *Dataset
	ScientificName       string `gorm:"size:500;index:idx_hosts_sciname"`
	EventDate            string `gorm:"size:500"`
	Locality             string `gorm:"size:500"`
	Country              string `gorm:"size:100"`
	VerbatimLocality     string `gorm:"size:500"`
	CoordinateResolution string `gorm:"size:100"`
	LocationLatitude     *float64
	LocationLongitude    *float64
	IndividualCount      int `gorm:"not null"`
	TrapEffort           *int
	TrapEffortResolution string `gorm:"size:500"`
}

// Pathogen represents a pathogen detection tested on a host
type Pathogen struct {
	ID                 int    `gorm:"primaryKey;autoIncrement:false"`
	OriginalID         string `gorm:"size:25"`
	HostID             *int   `gorm:"index"`
	Host               *Host
	Family             string `gorm:"size:500"`
	ScientificName     string `gorm:"size:500;index:idx_pathogens_sciname"`
	Assay              string `gorm:"size:500"`
	Tested             *int
	Positive           *int
	Negative           *int
	NumberInconclusive *int
	Note               string `gorm:"type:text"`
}

// Sequence represents a genetic sequence attached to exactly one of
// a host, a pathogen or a dataset depending on its sequence type.
type Sequence struct {
	ID              int    `gorm:"primaryKey;autoIncrement:false"`
	OriginalID      string `gorm:"size:25"`
	ScientificName  string `gorm:"size:500"`
	AssociatedTaxa  string `gorm:"size:500"`
	SequenceType    string `gorm:"size:100"`
	PathogenID      *int   `gorm:"index"`
	Pathogen        *Pathogen
	HostID          *int `gorm:"index"`
	Host            *Host
	DatasetID       *int `gorm:"index"`
	Dataset         *Dataset
	AccessionNumber string `gorm:"size:500;index:idx_sequences_accession"`
	Method          string `gorm:"size:500"`
	Note            string `gorm:"type:text"`
	DateSampled     *time.Time
	SampleLocation  string `gorm:"size:500"`
}

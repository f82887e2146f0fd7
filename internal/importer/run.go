package importer

import "github.com/google/uuid"

// Run carries the mutable state of one upload invocation: the identifier
// remapping table, the verbosity flag and the first batch-fatal error.
// A Run must not be shared across concurrent uploads.
type Run struct {
	ID      uuid.UUID
	Verbose bool

	remap map[EntityType]map[string]int
	err   error
}

// NewRun allocates the arena for one upload.
func NewRun(verbose bool) *Run {
	return &Run{
		ID:      uuid.New(),
		Verbose: verbose,
		remap:   make(map[EntityType]map[string]int),
	}
}

// mapping returns the remap namespace of an entity type, creating it on
// first use.
func (r *Run) mapping(entity EntityType) map[string]int {
	m, ok := r.remap[entity]
	if !ok {
		m = make(map[string]int)
		r.remap[entity] = m
	}
	return m
}

// Mapped looks up the assigned identifier recorded for an original
// identifier during this run.
func (r *Run) Mapped(entity EntityType, originalID string) (int, bool) {
	id, ok := r.remap[entity][originalID]
	return id, ok
}

// Err returns the batch-fatal error that ended the upload, if any.
func (r *Run) Err() error {
	return r.err
}

package importer

// AssignUniqueID returns a collision-free integer identifier. When candidate
// is nil or already taken, the first unused integer from startFrom upward is
// chosen instead. The returned id is added to used before returning, so a
// later call in the same batch cannot hand it out again.
func AssignUniqueID(used map[int]struct{}, candidate *int, startFrom int) int {
	id := startFrom
	if candidate != nil {
		if _, taken := used[*candidate]; !taken {
			used[*candidate] = struct{}{}
			return *candidate
		}
	}
	for {
		if _, taken := used[id]; !taken {
			used[id] = struct{}{}
			return id
		}
		id++
	}
}

package service

// Embedded ordered lists (experience, education, likes, comments) share
// one mutation contract: new entries go to the head so the list stays
// newest-first, and removal locates the entry by a linear scan. Policy
// differences between the four instantiations (duplicate likes, comment
// ownership) are passed in as predicates.

// addEntry prepends entry to list after the conflict check, if any,
// passes. The conflict predicate sees the current list.
func addEntry[T any](list []T, entry T, conflict func([]T) error) ([]T, error) {
	if conflict != nil {
		if err := conflict(list); err != nil {
			return nil, err
		}
	}
	updated := make([]T, 0, len(list)+1)
	updated = append(updated, entry)
	updated = append(updated, list...)
	return updated, nil
}

// removeEntry removes the first entry matched by match, after the
// authorize check, if any, passes for that entry. ok reports whether a
// matching entry existed.
func removeEntry[T any](list []T, match func(T) bool, authorize func(T) error) ([]T, bool, error) {
	for i, entry := range list {
		if !match(entry) {
			continue
		}
		if authorize != nil {
			if err := authorize(entry); err != nil {
				return nil, true, err
			}
		}
		updated := make([]T, 0, len(list)-1)
		updated = append(updated, list[:i]...)
		updated = append(updated, list[i+1:]...)
		return updated, true, nil
	}
	return nil, false, nil
}

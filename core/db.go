package core

// DBOrdering is one `ordering` term, e.g. `-created_at`.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// FilterOrderings drops the orderings whose field is not in allowed.
// Stores interpolate Field into queries, so it must never reach them unchecked.
func FilterOrderings(orderings []DBOrdering, allowed ...string) []DBOrdering {
	if len(orderings) == 0 {
		return nil
	}
	ok := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		ok[f] = struct{}{}
	}
	kept := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if _, found := ok[ord.Field]; found {
			kept = append(kept, ord)
		}
	}
	return kept
}

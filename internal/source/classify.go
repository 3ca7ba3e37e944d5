package source

// Expand flattens group sources into their leaf members, preserving
// map order. Recursion stops at non-group leaves; the group itself is
// never returned.
func Expand(sources []*DataSource) []*DataSource {
	var leaves []*DataSource
	for _, s := range sources {
		if s == nil {
			continue
		}
		if s.Kind == KindGroup {
			leaves = append(leaves, Expand(s.Members)...)
			continue
		}
		leaves = append(leaves, s)
	}
	return leaves
}

// IsEligible reports whether a source may be queried for popups.
// A source qualifies when it is loaded, its view binding is not
// suspended, and it either declares a popup template or is of an
// always-queryable kind. In a 3D view only draped sources qualify.
func IsEligible(s *DataSource, lookup BindingLookup, viewIs3D bool) bool {
	if s == nil || s.Kind == KindGroup {
		return false
	}
	if s.State != Loaded {
		return false
	}

	var binding *ViewBinding
	if lookup != nil {
		binding = lookup(s)
	}

	if binding != nil && binding.Suspended {
		return false
	}

	if viewIs3D {
		if binding == nil || !binding.Draped {
			return false
		}
	}

	return s.Template != nil || s.Kind.AlwaysQueryable()
}

// Eligible expands groups and filters to the queryable leaves
func Eligible(sources []*DataSource, lookup BindingLookup, viewIs3D bool) []*DataSource {
	leaves := Expand(sources)
	eligible := make([]*DataSource, 0, len(leaves))
	for _, s := range leaves {
		if IsEligible(s, lookup, viewIs3D) {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

package iterlower

import "slices"

// stateSet is a set of state numbers.
type stateSet map[int]struct{}

func (s stateSet) add(id int) {
	s[id] = struct{}{}
}

func (s stateSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s stateSet) sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// cloneSet creates a copy of a stateSet.
func cloneSet(s stateSet) stateSet {
	if len(s) == 0 {
		return nil
	}
	out := make(stateSet, len(s))
	for id := range s {
		out.add(id)
	}
	return out
}

// unionSet merges src into dst and returns dst.
func unionSet(dst, src stateSet) stateSet {
	if dst == nil {
		dst = stateSet{}
	}
	for id := range src {
		dst.add(id)
	}
	return dst
}

// subtractSet returns src minus sub.
func subtractSet(src, sub stateSet) stateSet {
	if len(src) == 0 {
		return nil
	}
	out := stateSet{}
	for id := range src {
		if sub.has(id) {
			continue
		}
		out.add(id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

package normalize

// unionFind implements union-find with path compression, biased so the
// chosen representative is always the folder name we want to keep: a
// pinned root outranks an unpinned one, and otherwise the lexicographically
// smaller name wins. Straightforward union-by-rank is wrong here because the
// representative IS the folder name shown to users.
type unionFind struct {
	parent map[string]string
	pinned map[string]bool
}

func newUnionFind(pinned map[string]bool) *unionFind {
	return &unionFind{parent: map[string]string{}, pinned: pinned}
}

func (u *unionFind) add(name string) {
	if _, ok := u.parent[name]; !ok {
		u.parent[name] = name
	}
}

func (u *unionFind) find(name string) string {
	p, ok := u.parent[name]
	if !ok {
		return name
	}
	if p == name {
		return name
	}
	root := u.find(p)
	u.parent[name] = root
	return root
}

// union merges the sets containing a and b. A pinned-vs-pinned union is
// disallowed (silently skipped, per spec). Otherwise the pinned side wins;
// if neither is pinned, the lexicographically smaller name wins.
func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	pa, pb := u.pinned[ra], u.pinned[rb]
	switch {
	case pa && pb:
		return
	case pa:
		u.parent[rb] = ra
	case pb:
		u.parent[ra] = rb
	case ra < rb:
		u.parent[rb] = ra
	default:
		u.parent[ra] = rb
	}
}

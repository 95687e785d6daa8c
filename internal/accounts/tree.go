package accounts

import "github.com/cleared-dev/ledgerbook/internal/model"

// Node is one account in a display tree.
type Node struct {
	Account  model.Account
	Depth    int
	Children []*Node
}

// Tree builds the account hierarchy from ParentID links. Accounts whose
// parent is missing become roots, and a parent link that would close a cycle
// is ignored. Siblings are ordered by account number.
func (s *Service) Tree() []*Node {
	sorted := make([]model.Account, len(s.accounts))
	copy(sorted, s.accounts)
	SortByNumber(sorted)

	children := make(map[int][]model.Account)
	var roots []model.Account
	for _, a := range sorted {
		if a.ParentID == 0 || !s.Exists(a.ParentID) || s.hasCycle(a) {
			roots = append(roots, a)
			continue
		}
		children[a.ParentID] = append(children[a.ParentID], a)
	}

	var build func(a model.Account, depth int) *Node
	build = func(a model.Account, depth int) *Node {
		n := &Node{Account: a, Depth: depth}
		for _, c := range children[a.ID] {
			n.Children = append(n.Children, build(c, depth+1))
		}
		return n
	}

	nodes := make([]*Node, 0, len(roots))
	for _, r := range roots {
		nodes = append(nodes, build(r, 0))
	}
	return nodes
}

// hasCycle reports whether walking up from a returns to a.
func (s *Service) hasCycle(a model.Account) bool {
	seen := map[int]bool{}
	cur := a.ParentID
	for cur != 0 {
		if cur == a.ID {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		p, ok := s.byID[cur]
		if !ok {
			return false
		}
		cur = p.ParentID
	}
	return false
}

// Walk visits nodes depth-first in display order.
func Walk(nodes []*Node, fn func(*Node)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Children, fn)
	}
}

// Descendants returns the ids of every account below id in the hierarchy.
func (s *Service) Descendants(id int) []int {
	var out []int
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			if n.Account.ID == id {
				Walk(n.Children, func(c *Node) { out = append(out, c.Account.ID) })
				return
			}
			visit(n.Children)
		}
	}
	visit(s.Tree())
	return out
}

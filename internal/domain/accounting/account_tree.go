package accounting

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/smbledger/backend/internal/domain/shared"
)

// AccountTree is an in-memory view of the chart-of-accounts hierarchy.
// It keeps an arena of accounts keyed by id plus a parent -> children
// adjacency index, so cycle checks and rollups are plain visited-set walks
// instead of pointer chasing.
type AccountTree struct {
	arena    map[uuid.UUID]*Account
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// NewAccountTree builds a tree view over the given accounts.
// Accounts whose parent is missing from the set are treated as roots.
func NewAccountTree(accounts []Account) *AccountTree {
	t := &AccountTree{
		arena:    make(map[uuid.UUID]*Account, len(accounts)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range accounts {
		a := &accounts[i]
		t.arena[a.ID] = a
	}
	for i := range accounts {
		a := &accounts[i]
		if a.ParentID != nil {
			if _, ok := t.arena[*a.ParentID]; ok {
				t.children[*a.ParentID] = append(t.children[*a.ParentID], a.ID)
				continue
			}
		}
		t.roots = append(t.roots, a.ID)
	}
	for parent := range t.children {
		t.sortBySortOrder(t.children[parent])
	}
	t.sortBySortOrder(t.roots)
	return t
}

func (t *AccountTree) sortBySortOrder(ids []uuid.UUID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := t.arena[ids[i]], t.arena[ids[j]]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Code < b.Code
	})
}

// Get returns the account with the given id, or nil
func (t *AccountTree) Get(id uuid.UUID) *Account {
	return t.arena[id]
}

// Roots returns the top-level accounts ordered by sort order
func (t *AccountTree) Roots() []*Account {
	return t.resolve(t.roots)
}

// ResolveChildren returns the direct children of an account ordered by sort order
func (t *AccountTree) ResolveChildren(id uuid.UUID) []*Account {
	return t.resolve(t.children[id])
}

func (t *AccountTree) resolve(ids []uuid.UUID) []*Account {
	out := make([]*Account, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.arena[id])
	}
	return out
}

// FullPath returns the root-to-leaf chain of account names for an account
func (t *AccountTree) FullPath(id uuid.UUID) ([]string, error) {
	a, ok := t.arena[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	var path []string
	visited := make(map[uuid.UUID]bool)
	for a != nil {
		if visited[a.ID] {
			return nil, shared.NewDomainError(shared.ErrCodeCycleDetected,
				fmt.Sprintf("Account hierarchy contains a cycle through %s", a.Code))
		}
		visited[a.ID] = true
		path = append([]string{a.Name}, path...)
		if a.ParentID == nil {
			break
		}
		a = t.arena[*a.ParentID]
	}
	return path, nil
}

// IsDescendant reports whether account a is a descendant of account b
func (t *AccountTree) IsDescendant(a, b uuid.UUID) bool {
	node, ok := t.arena[a]
	if !ok {
		return false
	}
	visited := make(map[uuid.UUID]bool)
	for node.ParentID != nil {
		if visited[node.ID] {
			return false
		}
		visited[node.ID] = true
		if *node.ParentID == b {
			return true
		}
		node = t.arena[*node.ParentID]
		if node == nil {
			return false
		}
	}
	return false
}

// Descendants returns every account below the given one, depth first
func (t *AccountTree) Descendants(id uuid.UUID) []*Account {
	var out []*Account
	visited := make(map[uuid.UUID]bool)
	var walk func(uuid.UUID)
	walk = func(cur uuid.UUID) {
		for _, childID := range t.children[cur] {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			out = append(out, t.arena[childID])
			walk(childID)
		}
	}
	walk(id)
	return out
}

// ValidateParentChange rejects a parent assignment that would orphan the
// account or create a cycle. newParent of uuid.Nil means "make it a root".
func (t *AccountTree) ValidateParentChange(id, newParent uuid.UUID) error {
	a, ok := t.arena[id]
	if !ok {
		return shared.ErrNotFound
	}
	if newParent == uuid.Nil {
		return nil
	}
	if newParent == id {
		return shared.NewDomainError(shared.ErrCodeCycleDetected,
			fmt.Sprintf("Account %s cannot be its own parent", a.Code))
	}
	parent, ok := t.arena[newParent]
	if !ok {
		return shared.NewDomainError(shared.ErrCodeValidation, "Parent account does not exist")
	}
	// Walk up from the proposed parent; hitting the account itself means the
	// assignment would close a loop.
	visited := make(map[uuid.UUID]bool)
	node := parent
	for node != nil {
		if node.ID == id {
			return shared.NewDomainError(shared.ErrCodeCycleDetected,
				fmt.Sprintf("Moving %s under %s would create a cycle", a.Code, parent.Code))
		}
		if visited[node.ID] {
			break
		}
		visited[node.ID] = true
		if node.ParentID == nil {
			break
		}
		node = t.arena[*node.ParentID]
	}
	return nil
}

// SetParent applies a validated parent change and reindexes the tree
func (t *AccountTree) SetParent(id, newParent uuid.UUID) error {
	if err := t.ValidateParentChange(id, newParent); err != nil {
		return err
	}
	a := t.arena[id]
	if a.ParentID != nil {
		t.children[*a.ParentID] = removeID(t.children[*a.ParentID], id)
	} else {
		t.roots = removeID(t.roots, id)
	}
	if newParent == uuid.Nil {
		a.ParentID = nil
		t.roots = append(t.roots, id)
		t.sortBySortOrder(t.roots)
	} else {
		p := newParent
		a.ParentID = &p
		t.children[p] = append(t.children[p], id)
		t.sortBySortOrder(t.children[p])
	}
	a.IncrementVersion()
	return nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

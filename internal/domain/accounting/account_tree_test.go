package accounting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smbledger/backend/internal/domain/shared"
)

// buildTestChart builds a small chart:
//
//	1000 Assets
//	  1100 Checking (sort 1)
//	  1200 Savings  (sort 2)
//	    1210 Reserve
//	2000 Liabilities
func buildTestChart(t *testing.T) (*AccountTree, map[string]*Account) {
	t.Helper()
	assets := mustAccount(t, "1000", "Assets", AccountTypeAsset, 0)
	checking := mustAccount(t, "1100", "Checking", AccountTypeBank, 0)
	savings := mustAccount(t, "1200", "Savings", AccountTypeBank, 0)
	reserve := mustAccount(t, "1210", "Reserve", AccountTypeBank, 0)
	liabilities := mustAccount(t, "2000", "Liabilities", AccountTypeLiability, 0)

	checking.ParentID = &assets.ID
	checking.SortOrder = 1
	savings.ParentID = &assets.ID
	savings.SortOrder = 2
	reserve.ParentID = &savings.ID

	all := []Account{*assets, *checking, *savings, *reserve, *liabilities}
	tree := NewAccountTree(all)

	accounts := map[string]*Account{
		"assets":      tree.Get(assets.ID),
		"checking":    tree.Get(checking.ID),
		"savings":     tree.Get(savings.ID),
		"reserve":     tree.Get(reserve.ID),
		"liabilities": tree.Get(liabilities.ID),
	}
	return tree, accounts
}

func TestResolveChildrenOrdering(t *testing.T) {
	tree, accts := buildTestChart(t)

	children := tree.ResolveChildren(accts["assets"].ID)
	require.Len(t, children, 2)
	assert.Equal(t, "Checking", children[0].Name)
	assert.Equal(t, "Savings", children[1].Name)

	assert.Empty(t, tree.ResolveChildren(accts["checking"].ID))
}

func TestFullPath(t *testing.T) {
	tree, accts := buildTestChart(t)

	path, err := tree.FullPath(accts["reserve"].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Assets", "Savings", "Reserve"}, path)

	path, err = tree.FullPath(accts["liabilities"].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Liabilities"}, path)

	_, err = tree.FullPath(uuid.New())
	require.Error(t, err)
}

func TestIsDescendant(t *testing.T) {
	tree, accts := buildTestChart(t)

	assert.True(t, tree.IsDescendant(accts["reserve"].ID, accts["assets"].ID))
	assert.True(t, tree.IsDescendant(accts["reserve"].ID, accts["savings"].ID))
	assert.True(t, tree.IsDescendant(accts["checking"].ID, accts["assets"].ID))
	assert.False(t, tree.IsDescendant(accts["assets"].ID, accts["reserve"].ID))
	assert.False(t, tree.IsDescendant(accts["checking"].ID, accts["liabilities"].ID))
}

func TestValidateParentChange(t *testing.T) {
	t.Run("rejects self parent", func(t *testing.T) {
		tree, accts := buildTestChart(t)
		err := tree.ValidateParentChange(accts["savings"].ID, accts["savings"].ID)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeCycleDetected))
	})

	t.Run("rejects cycle through descendant", func(t *testing.T) {
		tree, accts := buildTestChart(t)
		err := tree.ValidateParentChange(accts["assets"].ID, accts["reserve"].ID)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeCycleDetected))
	})

	t.Run("accepts valid reparent", func(t *testing.T) {
		tree, accts := buildTestChart(t)
		require.NoError(t, tree.ValidateParentChange(accts["reserve"].ID, accts["checking"].ID))
	})

	t.Run("rejects unknown parent", func(t *testing.T) {
		tree, accts := buildTestChart(t)
		err := tree.ValidateParentChange(accts["reserve"].ID, uuid.New())
		require.Error(t, err)
	})
}

func TestSetParent(t *testing.T) {
	tree, accts := buildTestChart(t)

	require.NoError(t, tree.SetParent(accts["reserve"].ID, accts["checking"].ID))
	assert.True(t, tree.IsDescendant(accts["reserve"].ID, accts["checking"].ID))
	assert.Empty(t, tree.ResolveChildren(accts["savings"].ID))

	// Moving to root.
	require.NoError(t, tree.SetParent(accts["reserve"].ID, uuid.Nil))
	assert.Nil(t, tree.Get(accts["reserve"].ID).ParentID)

	// A rejected move leaves the tree untouched.
	err := tree.SetParent(accts["assets"].ID, accts["checking"].ID)
	require.Error(t, err)
	assert.True(t, tree.IsDescendant(accts["checking"].ID, accts["assets"].ID))
}

package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func TestTree_DefaultChart(t *testing.T) {
	svc := NewService(DefaultChart("llc_single_member"))
	roots := svc.Tree()

	var cash *Node
	for _, r := range roots {
		if r.Account.ID == 1000 {
			cash = r
		}
	}
	require.NotNil(t, cash)
	require.Len(t, cash.Children, 3)
	assert.Equal(t, 1010, cash.Children[0].Account.ID, "children sorted by number")
	assert.Equal(t, 1, cash.Children[0].Depth)

	count := 0
	Walk(roots, func(*Node) { count++ })
	assert.Equal(t, len(svc.All()), count, "every account appears exactly once")
}

func TestTree_OrphansAndCycles(t *testing.T) {
	svc := NewService([]model.Account{
		{ID: 1, Number: "1", ParentID: 2},
		{ID: 2, Number: "2", ParentID: 1},
		{ID: 3, Number: "3", ParentID: 1},
		{ID: 4, Number: "4", ParentID: 99},
	})
	roots := svc.Tree()

	ids := make([]int, 0, len(roots))
	for _, r := range roots {
		ids = append(ids, r.Account.ID)
	}
	assert.Equal(t, []int{1, 2, 4}, ids, "cycle members and orphans are roots")

	count := 0
	Walk(roots, func(*Node) { count++ })
	assert.Equal(t, 4, count)
}

func TestDescendants(t *testing.T) {
	svc := NewService(DefaultChart("llc_single_member"))
	assert.ElementsMatch(t, []int{1010, 1020, 1030}, svc.Descendants(1000))
	assert.ElementsMatch(t, []int{1510}, svc.Descendants(1500))
	assert.Empty(t, svc.Descendants(5020))
}

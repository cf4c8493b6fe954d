package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agri-oasis/storefront/internal/domain/catalog"
)

var (
	apples = catalog.Product{ID: "p1", Name: "Apples", Price: 2.99, FarmerID: "f1"}
	honey  = catalog.Product{ID: "p2", Name: "Honey", Price: 8.5, FarmerID: "f2"}
)

func TestAddItem_MergesSameProduct(t *testing.T) {
	c := New()
	c.AddItem(apples)
	c.AddItem(apples)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "f1", lines[0].FarmerID)
	assert.Equal(t, 2.99, lines[0].UnitPrice)
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	c := New()
	c.AddItem(honey)
	c.AddItem(apples)
	c.AddItem(honey)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p2", lines[0].ProductID)
	assert.Equal(t, "p1", lines[1].ProductID)
}

func TestSetQuantity(t *testing.T) {
	c := New()
	c.AddItem(apples)
	c.AddItem(honey)

	c.SetQuantity("p1", 5)
	assert.Equal(t, 5, c.Lines()[0].Quantity)

	c.SetQuantity("p1", 0)
	assert.False(t, c.Contains("p1"))
	assert.Equal(t, 1, c.Len())

	c.SetQuantity("p2", -3)
	assert.True(t, c.IsEmpty())

	c.SetQuantity("missing", 4)
	assert.True(t, c.IsEmpty())
}

func TestRemoveItem_UnknownIsNoop(t *testing.T) {
	c := New()
	c.AddItem(apples)
	c.RemoveItem("nope")
	assert.Equal(t, 1, c.Len())
}

func TestSubtotal_IsExactInCents(t *testing.T) {
	c := New()
	c.AddItem(apples)
	c.SetQuantity("p1", 3)
	assert.Equal(t, 8.97, c.Subtotal())

	c.AddItem(honey)
	assert.Equal(t, 17.47, c.Subtotal())

	totals := c.Totals()
	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 4, totals.TotalQuantity)
	assert.Equal(t, 17.47, totals.Subtotal)
}

func TestSubtotal_RoundsAfterMultiplying(t *testing.T) {
	c := New()
	c.AddItem(catalog.Product{ID: "p1", Name: "Seeds", Price: 0.125})
	c.SetQuantity("p1", 8)
	assert.Equal(t, 1.0, c.Subtotal())
	assert.Equal(t, 1.0, c.Lines()[0].LineTotal())

	c.AddItem(catalog.Product{ID: "p2", Name: "Twine", Price: 1.333})
	c.SetQuantity("p2", 3)
	assert.Equal(t, 4.0, c.Lines()[1].LineTotal())
	assert.Equal(t, 5.0, c.Subtotal())
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New()
	c.AddItem(apples)
	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestClear(t *testing.T) {
	c := New()
	c.AddItem(apples)
	c.AddItem(honey)
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Subtotal())
	assert.Zero(t, c.TotalQuantity())
}

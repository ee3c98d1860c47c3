package harness

import (
	"fmt"
	"math/rand"
)

const (
	MaxItemsPerOrder = 50
	MaxItemQuantity  = 10
)

// Generator builds random orders. It is not safe for concurrent use; each
// worker owns one.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Order returns the order for message index: client "client-<index>" with
// 1..50 items, item i having sku "<index>-<i>", product "product-<index>-<i>"
// and a quantity of 1..10.
func (g *Generator) Order(index int) Order {
	items := make([]OrderItem, g.rnd.Intn(MaxItemsPerOrder)+1)
	for i := range items {
		items[i] = OrderItem{
			SKU:         fmt.Sprintf("%d-%d", index, i),
			ProductName: fmt.Sprintf("product-%d-%d", index, i),
			Quantity:    int32(g.rnd.Intn(MaxItemQuantity) + 1),
		}
	}
	return Order{
		ID:         int32(index),
		ClientName: fmt.Sprintf("client-%d", index),
		Items:      items,
	}
}

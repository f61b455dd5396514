package model

import "sort"

// Cart session store 讀出來的快照, product id -> quantity, 所有 key 的數量都 >= 1
// 異動一律透過 session store 逐筆處理
type Cart struct {
	items map[int64]int
}

func NewCart() *Cart {
	return &Cart{items: make(map[int64]int)}
}

// NewCartFromItems 從 session store 還原, 非正數的項目直接丟棄
func NewCartFromItems(items map[int64]int) *Cart {
	c := NewCart()
	for productID, qty := range items {
		if qty > 0 {
			c.items[productID] = qty
		}
	}
	return c
}

func (c *Cart) Quantity(productID int64) int {
	return c.items[productID]
}

func (c *Cart) Count() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Lines 依 product id 排序
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.items))
	for productID, qty := range c.items {
		lines = append(lines, Line{ProductID: productID, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})
	return lines
}

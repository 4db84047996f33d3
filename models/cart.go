package models

// CartLine is a purchase line joined with its book.
type CartLine struct {
	Item OrderItem `json:"item"`
	Book Book      `json:"book"`
}

// Total is quantity × unit price.
func (l CartLine) Total() int64 {
	return int64(l.Item.Quantity) * l.Book.Price
}

// RentLine is a rental line joined with its book.
type RentLine struct {
	Item RentItem `json:"item"`
	Book Book     `json:"book"`
}

// Cart is an order with its lines resolved.
type Cart struct {
	Order   *Order     `json:"order,omitempty"`
	Lines   []CartLine `json:"lines"`
	Rentals []RentLine `json:"rentals"`
}

// Total sums purchase lines only.
func (c *Cart) Total() int64 {
	var t int64
	for _, l := range c.Lines {
		t += l.Total()
	}
	return t
}

// ItemCount is the number of purchase lines.
func (c *Cart) ItemCount() int {
	return len(c.Lines)
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0 && len(c.Rentals) == 0
}

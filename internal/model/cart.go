package model

// Cart is the authoritative cart resource owned by the upstream commerce
// API. TotalCartPrice is server-computed; client-side derivations of it are
// display-only and are superseded by the next refetch.
type Cart struct {
	ID             string     `json:"_id"`
	Products       []CartLine `json:"products"`
	TotalCartPrice float64    `json:"totalCartPrice"`
}

// CartLine is a single cart entry. Count is always >= 1: a count of zero
// means the line is removed, never kept at zero quantity.
type CartLine struct {
	ID      string     `json:"_id"`
	Product ProductRef `json:"product"`
	Price   float64    `json:"price"`
	Count   int        `json:"count"`
}

// ProductRef is the embedded product reference on a cart line. Upstream
// returns either a bare id or a populated product object; Title/ImageCover
// are empty in the former case.
type ProductRef struct {
	ID         string  `json:"_id"`
	Title      string  `json:"title,omitempty"`
	ImageCover string  `json:"imageCover,omitempty"`
	Price      float64 `json:"price,omitempty"`
}

// IsEmpty reports whether the cart has no lines. An empty cart is a
// distinct rendering state, not an error.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Products) == 0
}

// Line returns the cart line for the given line id, or nil.
func (c *Cart) Line(lineID string) *CartLine {
	if c == nil {
		return nil
	}
	for i := range c.Products {
		if c.Products[i].ID == lineID {
			return &c.Products[i]
		}
	}
	return nil
}

// LineByProduct returns the cart line holding the given product, or nil.
func (c *Cart) LineByProduct(productID string) *CartLine {
	if c == nil {
		return nil
	}
	for i := range c.Products {
		if c.Products[i].Product.ID == productID {
			return &c.Products[i]
		}
	}
	return nil
}

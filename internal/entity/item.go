package entity

type Item struct {
	ProductID string `json:"product_id" validate:"required,max=50"`
	Name      string `json:"name"       validate:"required,max=255"`
	Price     uint64 `json:"price"      validate:"required,gte=1"`
	Quantity  uint32 `json:"quantity"   validate:"required,gte=1"`
	Variant   string `json:"variant"    validate:"max=100"`
	Path      string `json:"path"       validate:"max=255"`
}

// Subtotal is the line total in minor currency units.
func (i *Item) Subtotal() uint64 {
	return i.Price * uint64(i.Quantity)
}

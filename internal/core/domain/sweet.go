package domain

import (
	"math"
	"strings"
	"time"
)

// Sweet is a single inventory item. Quantity is a non-negative stock counter
// that only purchase (decrement-if-sufficient) and restock (increment) change.
type Sweet struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SweetPatch carries the mutable fields of a partial update. Nil means "leave as is".
type SweetPatch struct {
	Name        *string
	Category    *string
	Price       *float64
	Description *string
}

func (p SweetPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil && p.Description == nil
}

// Validate checks a fully populated sweet before it is first persisted.
func (s *Sweet) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	if s.Name == "" {
		return Invalid("name is required")
	}
	if s.Category == "" {
		return Invalid("category is required")
	}
	if err := validPrice(s.Price); err != nil {
		return err
	}
	if s.Quantity < 0 {
		return Invalid("quantity must be at least 0")
	}
	return nil
}

// Validate checks the present fields of a patch with the same rules as Sweet.Validate.
func (p *SweetPatch) Validate() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Invalid("name must not be empty")
		}
		p.Name = &name
	}
	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		if category == "" {
			return Invalid("category must not be empty")
		}
		p.Category = &category
	}
	if p.Price != nil {
		return validPrice(*p.Price)
	}
	return nil
}

func validPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Invalid("price must be a number")
	}
	if price < 0 {
		return Invalid("price must be at least 0")
	}
	return nil
}

// PurchaseQuantity is the number of units a purchase request takes. A
// missing, zero or negative request buys a single unit.
func PurchaseQuantity(requested int) int {
	if requested <= 0 {
		return 1
	}
	return requested
}

// SweetFilter is the set of optional search criteria. Nil or empty fields do not filter.
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

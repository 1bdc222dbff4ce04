package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sweetshop/api/internal/core/domain"
)

// maxQuantity bounds stock counters so they stay well inside int range.
const maxQuantity = 1_000_000_000

// number accepts a JSON number or a numeric string such as "5.99". The web
// client sends form values as strings.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%s is not a number", b)
	}
	*n = number(f)
	return nil
}

// whole converts n to an int, failing for fractional or out-of-range values.
func (n number) whole() (int, bool) {
	f := float64(n)
	if f != math.Trunc(f) || math.Abs(f) > maxQuantity {
		return 0, false
	}
	return int(f), true
}

type createSweetRequest struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Price       *number `json:"price" validate:"required,gte=0" swaggertype:"number"`
	Quantity    *number `json:"quantity" validate:"omitempty,gte=0" swaggertype:"integer"`
	Description string  `json:"description"`
}

type updateSweetRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Price       *number `json:"price" validate:"omitempty,gte=0" swaggertype:"number"`
	Description *string `json:"description"`
	// Quantity is only captured to reject it.
	Quantity json.RawMessage `json:"quantity" swaggerignore:"true"`
}

func (r updateSweetRequest) patch() (domain.SweetPatch, error) {
	if len(r.Quantity) > 0 {
		return domain.SweetPatch{}, domain.Invalid("quantity can only change through purchase or restock")
	}
	p := domain.SweetPatch{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
	}
	if r.Price != nil {
		price := float64(*r.Price)
		p.Price = &price
	}
	return p, nil
}

type stockChangeRequest struct {
	Quantity *number `json:"quantity" swaggertype:"integer"`
}

// units returns the requested quantity, 0 when absent.
func (r stockChangeRequest) units() (int, error) {
	if r.Quantity == nil {
		return 0, nil
	}
	n, ok := r.Quantity.whole()
	if !ok {
		return 0, domain.ErrInvalidQuantity
	}
	return n, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

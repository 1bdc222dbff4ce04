package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/api/internal/api/metrics"
	"github.com/sweetshop/api/internal/core/domain"
	"github.com/sweetshop/api/internal/core/ports"
)

// SweetHandler handles HTTP requests for the inventory.
type SweetHandler struct {
	service ports.SweetService
}

func NewSweetHandler(service ports.SweetService) *SweetHandler {
	return &SweetHandler{service: service}
}

// List handles GET /api/sweets.
//
// @Summary      List all sweets
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Sweet
// @Failure      401  {object}  map[string]string
// @Router       /api/sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweets)
}

// Search handles GET /api/sweets/search.
//
// @Summary      Search sweets
// @Description  Case-insensitive substring match on name and category plus an inclusive price range.
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        name      query     string  false  "Name contains"
// @Param        category  query     string  false  "Category contains"
// @Param        minPrice  query     number  false  "Minimum price"
// @Param        maxPrice  query     number  false  "Maximum price"
// @Success      200       {array}   domain.Sweet
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Router       /api/sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	filter := domain.SweetFilter{
		Name:     strings.TrimSpace(c.QueryParam("name")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}

	var err error
	if filter.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return err
	}
	if filter.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return err
	}

	sweets, err := h.service.Search(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweets)
}

// Get handles GET /api/sweets/:id.
//
// @Summary      Get a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  domain.Sweet
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweet)
}

// Create handles POST /api/sweets.
//
// @Summary      Create a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSweetRequest  true  "Sweet details"
// @Success      201   {object}  domain.Sweet
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req createSweetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.CreateSweetInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       float64(*req.Price),
		Description: req.Description,
	}
	if req.Quantity != nil {
		qty, ok := req.Quantity.whole()
		if !ok {
			return domain.Invalid("quantity must be a whole number")
		}
		in.Quantity = &qty
	}

	sweet, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	metrics.SweetsCreatedTotal.WithLabelValues(sweet.Category).Inc()
	return c.JSON(http.StatusCreated, sweet)
}

// Update handles PUT /api/sweets/:id.
//
// @Summary      Update a sweet
// @Description  Partial update of name, category, price and description. Quantity is rejected.
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Sweet id"
// @Param        body  body      updateSweetRequest  true  "Fields to change"
// @Success      200   {object}  domain.Sweet
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	var req updateSweetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch, err := req.patch()
	if err != nil {
		return err
	}

	sweet, err := h.service.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweet)
}

// Delete handles DELETE /api/sweets/:id.
//
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Sweet deleted"})
}

// Purchase handles POST /api/sweets/:id/purchase.
//
// @Summary      Purchase a sweet
// @Description  Buys the given quantity (1 when absent or not positive) if enough stock is left.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true   "Sweet id"
// @Param        body  body      stockChangeRequest  false  "Quantity to buy"
// @Success      200   {object}  domain.Sweet
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req stockChangeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	qty, err := req.units()
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(purchaseResult(err)).Inc()
		return err
	}

	sweet, err := h.service.Purchase(c.Request().Context(), ports.StockChangeInput{
		SweetID:  c.Param("id"),
		Quantity: qty,
		ActorID:  id.UserID,
	})
	metrics.PurchasesTotal.WithLabelValues(purchaseResult(err)).Inc()
	if err != nil {
		return err
	}

	metrics.UnitsSoldTotal.Add(float64(domain.PurchaseQuantity(qty)))
	return c.JSON(http.StatusOK, sweet)
}

// Restock handles POST /api/sweets/:id/restock.
//
// @Summary      Restock a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Sweet id"
// @Param        body  body      stockChangeRequest  true  "Quantity to add (positive integer)"
// @Success      200   {object}  domain.Sweet
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req stockChangeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	qty, err := req.units()
	if err != nil {
		return err
	}

	sweet, err := h.service.Restock(c.Request().Context(), ports.StockChangeInput{
		SweetID:  c.Param("id"),
		Quantity: qty,
		ActorID:  id.UserID,
	})
	if err != nil {
		return err
	}

	metrics.UnitsRestockedTotal.Add(float64(qty))
	return c.JSON(http.StatusOK, sweet)
}

// Movements handles GET /api/sweets/:id/movements.
//
// @Summary      Stock movements of a sweet
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {array}   domain.StockMovement
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/sweets/{id}/movements [get]
func (h *SweetHandler) Movements(c echo.Context) error {
	list, err := h.service.Movements(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	return c.Validate(req)
}

// priceParam reads an optional numeric query parameter. Blank means absent.
func priceParam(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.Invalid("%s must be a number", name)
	}
	return &v, nil
}

func purchaseResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrSweetNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "error"
	}
}

package handler

import (
	"net/http"

	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文の公開API（チェックアウト）
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderItemRequest struct {
	Product  int64   `json:"product"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderCreateRequest struct {
	CustomerName string             `json:"customer_name"`
	Phone        string             `json:"phone"`
	Email        string             `json:"email"`
	Address      string             `json:"address"`
	City         string             `json:"city"`
	Province     string             `json:"province"`
	PostalCode   string             `json:"postal_code"`
	Items        []OrderItemRequest `json:"items"`
	TotalAmount  float64            `json:"total_amount"`
}

type QuoteRequest struct {
	Items []OrderItemRequest `json:"items"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/orders", h.create)
	e.POST("/api/orders/quote", h.quote)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	items := make([]usecase.PlaceOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PlaceOrderItemInput{
			ProductID: it.Product,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), usecase.PlaceOrderInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		Items:        items,
		TotalAmount:  req.TotalAmount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// 配送料プレビュー（在庫には触らない）
func (h *OrderHandler) quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	items := make([]usecase.QuoteItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.QuoteItemInput{
			ProductID: it.Product,
			Quantity:  it.Quantity,
		})
	}

	out, err := h.uc.QuoteDelivery(c.Request().Context(), items)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

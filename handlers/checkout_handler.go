package handlers

import (
	"net/http"

	"ticket-resale/security"
	"ticket-resale/services"

	"github.com/labstack/echo/v5"
)

type CheckoutHandler struct {
	checkout *services.CheckoutService
}

func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// CreateOrder opens a gateway order for a ticket. Nothing is reserved;
// settlement is first come, first served.
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	details, err := h.checkout.CreateOrder(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	TicketID  string `json:"ticket_id"`
}

// VerifyPayment validates the gateway callback signature and transfers
// ownership.
func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	var req verifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request")
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" || req.TicketID == "" {
		return respond(c, http.StatusBadRequest, "Missing fields")
	}

	ticket, err := h.checkout.VerifyAndSettle(c.Request().Context(), services.SettleRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		TicketID:  req.TicketID,
	}, security.UserID(c))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Payment verified and ticket marked as sold",
		"ticket":  ticket,
	})
}

package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	bs "librental/service/borrow"
	paymentsvc "librental/service/payment"
)

type Controller struct {
	Svc *paymentsvc.Coordinator
	Log *slog.Logger
}

func uid(c echo.Context) int64 {
	id, _ := c.Get("user_id").(int64)
	return id
}

func isStaff(c echo.Context) bool {
	staff, _ := c.Get("is_staff").(bool)
	return staff
}

func paymentID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// GET /v1/payments
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), uid(c), isStaff(c))
	if err != nil {
		h.Log.Error("payment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/payments/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.GetScoped(c.Request().Context(), uid(c), isStaff(c), id)
	if err != nil {
		if bs.Code(err) == bs.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		}
		h.Log.Error("payment detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

// POST /v1/payments/:id/session
//
// Opens (or re-opens after a gateway failure) the checkout session for a
// pending payment.
func (h *Controller) OpenSession(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if _, err := h.Svc.GetScoped(c.Request().Context(), uid(c), isStaff(c), id); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
	}

	url, err := h.Svc.Open(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("open session", "payment_id", id, "err", err)
		switch bs.Code(err) {
		case bs.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment already settled"})
		case bs.ErrGateway:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment session unavailable, retry later"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"session_url": url})
}

// GET /v1/success/payment/:id and /v1/success/fine/:id
//
// The gateway redirects the payer's browser here after checkout completes.
func (h *Controller) Success(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.HandleSuccess(c.Request().Context(), id); err != nil {
		h.Log.Error("success callback", "payment_id", id, "err", err)
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case bs.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment not confirmable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment successful, thank you!"})
}

// GET /v1/cancel/payment/:id and /v1/cancel/fine/:id
func (h *Controller) Cancel(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.HandleCancel(c.Request().Context(), id); err != nil {
		h.Log.Error("cancel callback", "payment_id", id, "err", err)
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case bs.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment not cancellable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment cancelled, the session can be reopened within 24 hours"})
}

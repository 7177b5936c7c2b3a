package borrow

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	bs "librental/service/borrow"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
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

// POST /v1/borrows
func (h *Controller) Create(c echo.Context) error {
	var req CreateBorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	expected, _ := time.Parse("2006-01-02", req.ExpectedReturnDate)

	out, err := h.Svc.Create(c.Request().Context(), uid(c), req.BookID, expected)
	if err != nil {
		h.Log.Error("borrow create", "err", err)
		switch bs.Code(err) {
		case bs.ErrOutOfStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "no copies available"})
		case bs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case bs.ErrInvalidDate:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "expected return date must be in the future"})
		case bs.ErrGateway:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment session unavailable, retry later"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, out)
}

// GET /v1/borrows
func (h *Controller) List(c echo.Context) error {
	var filterUser *int64
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
		}
		filterUser = &id
	}
	activeOnly := c.QueryParam("is_active") == "true"

	rows, err := h.Svc.List(c.Request().Context(), uid(c), isStaff(c), filterUser, activeOnly)
	if err != nil {
		h.Log.Error("borrow list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrows/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Get(c.Request().Context(), uid(c), isStaff(c), id)
	if err != nil {
		if bs.Code(err) == bs.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrow not found"})
		}
		h.Log.Error("borrow detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

// POST /v1/borrows/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Return(c.Request().Context(), uid(c), id)
	if err != nil {
		h.Log.Error("borrow return", "err", err)
		switch bs.Code(err) {
		case bs.ErrNotOwner, bs.ErrNotFound:
			// Non-owners get the same answer as a missing borrow.
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrow not found"})
		case bs.ErrAlreadyReturned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already returned"})
		case bs.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "borrow is not active"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

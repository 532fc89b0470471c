package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"millbook/internal/engine"
	"millbook/internal/export"
	"millbook/internal/timeline"
)

type bookRequest struct {
	Day       string `json:"day"`
	Name      string `json:"name"`
	Bags      int    `json:"bags"`
	StartTime int    `json:"startTime"`
}

type closeRequest struct {
	Day       string `json:"day"`
	StartTime int    `json:"startTime"`
	EndTime   int    `json:"endTime"`
	Reason    string `json:"reason"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSlots(c echo.Context) error {
	ctx := c.Request().Context()

	if s.cache != nil {
		if payload, ok := s.cache.GetOverview(ctx); ok {
			return c.JSONBlob(http.StatusOK, payload)
		}
	}

	ov, err := s.engine.Overview(ctx)
	if err != nil {
		return s.writeError(c, err)
	}

	payload, err := json.Marshal(ov)
	if err != nil {
		return s.writeError(c, err)
	}
	if s.cache != nil {
		s.cache.SetOverview(ctx, payload)
	}
	return c.JSONBlob(http.StatusOK, payload)
}

func (s *Server) handleAvailableSlots(c echo.Context) error {
	day := c.QueryParam("day")
	if day == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Day is required"})
	}

	bags := 1
	if raw := c.QueryParam("bags"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid bag count"})
		}
		bags = parsed
	}

	slots, err := s.engine.FindAvailableSlots(c.Request().Context(), day, bags)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (s *Server) handleBook(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid booking data"})
	}

	booking, err := s.engine.Book(c.Request().Context(), req.Day, req.Name, req.Bags, req.StartTime)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"message":     "Slot booked successfully",
		"timeDisplay": timeline.RangeLabel(booking.StartTime, booking.EndTime),
		"booking":     booking,
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid login data"})
	}

	if !s.isAdmin(req.Username, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Login successful"})
}

func (s *Server) handleAdminBookings(c echo.Context) error {
	ov, err := s.engine.Overview(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ov.Bookings)
}

func (s *Server) handleClosedSlots(c echo.Context) error {
	ov, err := s.engine.Overview(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ov.Closures)
}

func (s *Server) handleCloseSlot(c echo.Context) error {
	var req closeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}

	closure, err := s.engine.CloseSlot(c.Request().Context(), req.Day, req.StartTime, req.EndTime, req.Reason)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Slot closed successfully",
		"closure": closure,
	})
}

func (s *Server) handleOpenSlot(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	if err := s.engine.OpenSlot(c.Request().Context(), id); err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Slot opened successfully"})
}

func (s *Server) handleDeleteBooking(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	if err := s.engine.RemoveBooking(c.Request().Context(), id); err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Booking deleted successfully"})
}

func (s *Server) handleExport(c echo.Context) error {
	ov, err := s.engine.Overview(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}

	f, err := export.Workbook(ov.Bookings, ov.Closures)
	if err != nil {
		return s.writeError(c, err)
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="millbook-export.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}

// writeError maps domain errors to HTTP responses. Storage failures are
// logged and surfaced as a generic 500; they are never retried here.
func (s *Server) writeError(c echo.Context, err error) error {
	var verr *engine.ValidationError
	var cerr *engine.ConflictError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
	case errors.Is(err, engine.ErrSlotClosed):
		return c.JSON(http.StatusBadRequest,
			echo.Map{"error": "This time slot has been closed by the administrator"})
	case errors.As(err, &cerr):
		resp := echo.Map{"error": conflictMessage(cerr)}
		if len(cerr.Bookings) > 0 {
			resp["bookings"] = cerr.Bookings
		}
		return c.JSON(http.StatusConflict, resp)
	default:
		s.logger.Error().Err(err).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
}

func conflictMessage(cerr *engine.ConflictError) string {
	if len(cerr.Bookings) > 0 {
		return "Cannot close slot - there are existing bookings in this time range"
	}
	return "This time slot conflicts with an existing booking"
}

package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/ds124wfegd/railway-reservation/internal/service"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	reservationService service.ReservationService
}

func NewBookingHandler(reservationService service.ReservationService) *BookingHandler {
	return &BookingHandler{reservationService: reservationService}
}

// CancelBookingRequest is the body of DELETE /bookings/:id
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

func (h *BookingHandler) BookTicket(c *gin.Context) {
	var req service.BookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	booking, err := h.reservationService.BookTicket(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "ticket booked",
		Data:    booking,
	})
}

// ListBookings returns every booking. Optional query filters:
// status=active|cancelled and train=<number>.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	status := entity.BookingStatus(c.Query("status"))
	if status != "" && status != entity.BookingStatusActive && status != entity.BookingStatusCancelled {
		badRequest(c, "invalid status filter")
		return
	}

	trainNumber := 0
	if raw := c.Query("train"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid train filter")
			return
		}
		trainNumber = n
	}

	bookings := make([]entity.BookingView, 0)
	for booking := range h.reservationService.ListBookings(c.Request.Context()) {
		if status != "" && booking.Status != status {
			continue
		}
		if trainNumber != 0 && booking.TrainNumber != trainNumber {
			continue
		}
		bookings = append(bookings, booking)
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    bookings,
		Meta:    ListMeta{Count: len(bookings)},
	})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := h.reservationService.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: booking})
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.cancel(c, &service.CancelTicketRequest{BookingID: id, Reason: req.Reason})
}

// CancelByPassenger cancels the earliest active booking held by a passenger
// name and age.
func (h *BookingHandler) CancelByPassenger(c *gin.Context) {
	var req service.CancelTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.cancel(c, &req)
}

func (h *BookingHandler) cancel(c *gin.Context, req *service.CancelTicketRequest) {
	cancellation, err := h.reservationService.CancelTicket(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "booking cancelled"
	if !cancellation.SeatRestored {
		message = "booking cancelled, seat not restored"
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: message,
		Data:    cancellation,
	})
}

func (h *BookingHandler) AuditInventory(c *gin.Context) {
	discrepancies, err := h.reservationService.AuditInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    discrepancies,
		Meta:    ListMeta{Count: len(discrepancies)},
	})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid booking id")
		return 0, false
	}
	return id, true
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"booking-service/internal/logger"
	"booking-service/internal/middleware"
	"booking-service/internal/models"
	"booking-service/internal/services"
	"booking-service/internal/utils"
)

type BookingHandler struct {
	bookingService *services.BookingService
	log            *logger.Logger
}

func NewBookingHandler(bookingService *services.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		log:            log,
	}
}

func (h *BookingHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err))
		return
	}

	resp, err := h.bookingService.Checkout(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Checkout details", resp))
}

func (h *BookingHandler) Initiate(c *gin.Context) {
	var req models.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err))
		return
	}

	principal, _ := middleware.PrincipalFrom(c)
	resp, err := h.bookingService.Initiate(c.Request.Context(), principal.ID, &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Booking initiated", resp))
}

func (h *BookingHandler) ApproveArtist(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	principal, _ := middleware.PrincipalFrom(c)
	if err := h.bookingService.ApproveArtistBooking(c.Request.Context(), bookingID, principal.ID); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Booking approved", nil))
}

func (h *BookingHandler) InitiateArtistPayment(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	principal, _ := middleware.PrincipalFrom(c)
	resp, err := h.bookingService.InitiateArtistPayment(c.Request.Context(), bookingID, principal.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment initiated", resp))
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	principal, _ := middleware.PrincipalFrom(c)
	resp, err := h.bookingService.Confirm(c.Request.Context(), bookingID, principal.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(resp.Message, resp))
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	principal, _ := middleware.PrincipalFrom(c)
	details, err := h.bookingService.GetBooking(c.Request.Context(), bookingID, principal)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Booking retrieved", details))
}

// ListPayments returns only the payment rows of a booking.
func (h *BookingHandler) ListPayments(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	principal, _ := middleware.PrincipalFrom(c)
	details, err := h.bookingService.GetBooking(c.Request.Context(), bookingID, principal)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payments retrieved", details.Payments))
}

func bookingIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid booking id", nil))
		return 0, false
	}
	return id, true
}

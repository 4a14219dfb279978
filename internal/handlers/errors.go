package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-service/internal/logger"
	"booking-service/internal/services"
	"booking-service/internal/utils"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{services.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
	{services.ErrPaymentNotFound, http.StatusNotFound, "Payment not found"},
	{services.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{services.ErrSlotUnavailable, http.StatusConflict, "No slot is available for booking"},
	{services.ErrGuestLimitExceeded, http.StatusConflict, "No of guests exceeds guest limit"},
	{services.ErrPaymentVerificationFailed, http.StatusPaymentRequired, "Payment verification failed"},
	{services.ErrGatewayFailure, http.StatusBadGateway, "Payment gateway unavailable"},
	{services.ErrVenueRequired, http.StatusBadRequest, "Venue is required for artist bookings"},
	{services.ErrInvalidGuestCount, http.StatusBadRequest, "Number of guests must be at least 1"},
	{services.ErrInvalidRequest, http.StatusBadRequest, "Validation failed"},
}

func writeError(c *gin.Context, log *logger.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, utils.ErrorResponse(m.message, err))
			return
		}
	}

	log.Error("API", c.Request.Method+" "+c.FullPath()+" failed: "+err.Error())
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Internal server error", nil))
}

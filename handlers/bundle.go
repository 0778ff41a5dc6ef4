// File: tempobook/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoints.
	HandleChat gin.HandlerFunc

	// Booking history endpoints.
	GetBookingHistory gin.HandlerFunc
}

package handlers

import (
	"net/http"

	recordsRepo "tempobook/database/repository/records"
	"tempobook/utils"

	"github.com/gin-gonic/gin"
)

// RecordsHandler serves the audit trail of committed bookings.
type RecordsHandler struct {
	Repo recordsRepo.BookingRecordRepository
}

func NewRecordsHandler(repo recordsRepo.BookingRecordRepository) *RecordsHandler {
	return &RecordsHandler{Repo: repo}
}

// GetBookingHistory returns every booking committed for one phone identity.
func (h *RecordsHandler) GetBookingHistory(c *gin.Context) {
	phone := c.Param("phone")
	if phone == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "phone is required")
		return
	}

	records, err := h.Repo.GetByIdentity(c.Request.Context(), phone)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking history", "Please try again later")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": records})
}

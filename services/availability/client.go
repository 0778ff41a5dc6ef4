package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tempobook/models"

	"go.uber.org/zap"
)

// Client is the typed interface to the four TempoBook scheduling endpoints.
// Implementations are stateless; every call stands on its own.
type Client interface {
	ListServices(ctx context.Context) ([]models.ServiceOffering, error)
	ListEstablishments(ctx context.Context, serviceIDs []string) ([]models.Establishment, error)
	ListTimeSlots(ctx context.Context, query SlotQuery) ([]models.TimeSlot, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*models.BookingTransaction, error)
}

// SlotQuery asks for the open windows on one date at one establishment.
type SlotQuery struct {
	Date            string // ISO date, e.g. "2025-12-22"
	EstablishmentID string
	Duration        int // summed minutes of the selected services
	Services        []models.ServiceOffering
}

// BookingRequest is a fully-specified booking submission.
type BookingRequest struct {
	Customer models.CustomerInfo
	Duration int
	Services []models.ServiceOffering
	Slot     models.TimeSlot
	Date     string
}

// HTTPClient talks to the TempoBook API with a static bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTTPClient builds a client for the given base URL. The timeout bounds
// every call; a slow remote fails with a remoteUnavailable error instead of
// hanging the conversation.
func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) ListServices(ctx context.Context) ([]models.ServiceOffering, error) {
	var services []models.ServiceOffering
	if err := c.doJSON(ctx, http.MethodGet, "/services", nil, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *HTTPClient) ListEstablishments(ctx context.Context, serviceIDs []string) ([]models.Establishment, error) {
	params := url.Values{}
	params.Set("services", strings.Join(serviceIDs, ","))

	var establishments []models.Establishment
	if err := c.doJSON(ctx, http.MethodGet, "/establishments/establishments-by-services", params, nil, &establishments); err != nil {
		return nil, err
	}
	return establishments, nil
}

// slotQueryPayload mirrors the availableTime request body: the remote API
// expects the full service objects, not just their ids.
type slotQueryPayload struct {
	Date            string                   `json:"date"`
	EstablishmentID string                   `json:"establishmentId"`
	Duration        int                      `json:"duration"`
	Services        []models.ServiceOffering `json:"services"`
}

func (c *HTTPClient) ListTimeSlots(ctx context.Context, query SlotQuery) ([]models.TimeSlot, error) {
	payload := slotQueryPayload{
		Date:            query.Date,
		EstablishmentID: query.EstablishmentID,
		Duration:        query.Duration,
		Services:        query.Services,
	}

	var slots []models.TimeSlot
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/availableTime", nil, payload, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

type bookingSource struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

type bookingCustomerInfo struct {
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	LastName       string        `json:"lastName"`
	PhoneNumber    string        `json:"phoneNumber"`
	Gender         string        `json:"gender"`
	Identification string        `json:"identification"`
	PhoneCode      string        `json:"phoneCode"`
	Source         bookingSource `json:"source"`
}

type scheduleSelected struct {
	Establishment models.Establishment `json:"establishment"`
	Hour          models.SlotHour      `json:"hour"`
	Date          string               `json:"date"`
}

type bookingPayload struct {
	CustomerInfo     bookingCustomerInfo      `json:"customerInfo"`
	Duration         int                      `json:"duration"`
	ServicesSelected []models.ServiceOffering `json:"servicesSelected"`
	ScheduleSelected scheduleSelected         `json:"scheduleSelected"`
	EmployeeSelected any                      `json:"employeeSelected"`
}

type bookingResponse struct {
	Booking models.BookingTransaction `json:"booking"`
}

func (c *HTTPClient) CreateBooking(ctx context.Context, req BookingRequest) (*models.BookingTransaction, error) {
	payload := bookingPayload{
		CustomerInfo: bookingCustomerInfo{
			Email:       req.Customer.Email,
			Name:        req.Customer.Name,
			LastName:    req.Customer.LastName,
			PhoneNumber: req.Customer.PhoneNumber,
			PhoneCode:   req.Customer.PhoneCode,
			Source:      bookingSource{Type: "whatsapp", Detail: "AI Agent"},
		},
		Duration:         req.Duration,
		ServicesSelected: req.Services,
		ScheduleSelected: scheduleSelected{
			Establishment: req.Slot.Establishment,
			Hour:          req.Slot.Hour,
			Date:          req.Date,
		},
		EmployeeSelected: nil,
	}

	var resp bookingResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Booking, nil
}

// doJSON performs one request against the API and decodes a JSON response.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("TempoBook API unreachable", zap.String("path", path), zap.Error(err))
		return NewUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("TempoBook API rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return NewRejectedError(resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return NewUnavailableError(fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

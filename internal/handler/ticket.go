package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/psds-microservice/ticket-desk/internal/errs"
	"github.com/psds-microservice/ticket-desk/internal/metrics"
	"github.com/psds-microservice/ticket-desk/internal/model"
	"github.com/psds-microservice/ticket-desk/internal/service"
)

const (
	msgCreated     = "Ticket created successfully!"
	msgStoreFailed = "Error creating ticket"
	msgInvalidBody = "invalid body"
)

type TicketHandler struct {
	svc service.TicketServicer
}

func NewTicketHandler(svc service.TicketServicer) *TicketHandler {
	return &TicketHandler{svc: svc}
}

type createTicketResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// Create принимает форму (x-www-form-urlencoded) или JSON и создаёт заявку.
func (h *TicketHandler) Create(c *gin.Context) {
	var req model.Submission
	if err := c.ShouldBind(&req); err != nil {
		metrics.TicketsSubmitted.WithLabelValues(metrics.OutcomeValidationError).Inc()
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, wireName(fe.Field()))
			}
			c.JSON(http.StatusBadRequest, createTicketResponse{Message: errs.MissingFields(fields...).Error()})
			return
		}
		c.JSON(http.StatusBadRequest, createTicketResponse{Message: msgInvalidBody})
		return
	}

	ticket, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		var verr *errs.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, createTicketResponse{Message: verr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, createTicketResponse{Message: msgStoreFailed})
		}
		return
	}
	c.JSON(http.StatusOK, createTicketResponse{Message: msgCreated, ID: ticket.ID})
}

// wireName: ClientName -> clientName
func wireName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

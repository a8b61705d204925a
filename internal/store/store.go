package store

import (
	"context"

	"github.com/psds-microservice/ticket-desk/internal/model"
)

// TicketStore — хранилище заявок. Одна попытка записи на вызов, без повторов.
// Ошибки оборачиваются в errs.ErrStore.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) (string, error)
}

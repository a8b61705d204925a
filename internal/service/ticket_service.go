package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/psds-microservice/ticket-desk/internal/errs"
	"github.com/psds-microservice/ticket-desk/internal/kafka"
	"github.com/psds-microservice/ticket-desk/internal/logger"
	"github.com/psds-microservice/ticket-desk/internal/metrics"
	"github.com/psds-microservice/ticket-desk/internal/model"
	"github.com/psds-microservice/ticket-desk/internal/notify"
	"github.com/psds-microservice/ticket-desk/internal/store"
)

// TicketServicer — интерфейс для handler (Dependency Inversion).
type TicketServicer interface {
	Submit(ctx context.Context, sub model.Submission) (*model.Ticket, error)
}

// Notifier — рассылка уведомлений о новой заявке.
type Notifier interface {
	Notify(ctx context.Context, message string) []notify.Outcome
}

// Deps — зависимости сервиса заявок.
type Deps struct {
	Store    store.TicketStore
	Notifier Notifier
	Events   kafka.TicketEventProducer
	Location *time.Location
	Log      *logger.Logger
}

type TicketService struct {
	Deps

	pending sync.WaitGroup
}

func NewTicketService(deps Deps) *TicketService {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &TicketService{Deps: deps}
}

// Submit валидирует заявку, сохраняет её и дожидается рассылки SMS.
// Ошибки уведомлений не возвращаются: успех определяется только записью в хранилище.
func (s *TicketService) Submit(ctx context.Context, sub model.Submission) (*model.Ticket, error) {
	ticket, err := sub.Normalize(s.Location)
	if err != nil {
		metrics.TicketsSubmitted.WithLabelValues(metrics.OutcomeValidationError).Inc()
		return nil, err
	}

	// начатая запись доводится до конца даже при обрыве соединения клиента
	ctx = context.WithoutCancel(ctx)

	id, err := s.Store.Create(ctx, ticket)
	if err != nil {
		metrics.TicketsSubmitted.WithLabelValues(metrics.OutcomeStoreError).Inc()
		s.Log.Error("persist ticket", "error", err)
		if !errors.Is(err, errs.ErrStore) {
			err = errors.Join(errs.ErrStore, err)
		}
		return nil, err
	}
	ticket.ID = id
	metrics.TicketsSubmitted.WithLabelValues(metrics.OutcomeCreated).Inc()
	s.Log.Info("ticket created", "ticket_id", id)

	if s.Events != nil {
		// Fire-and-forget: событие уходит независимо от ответа, но с таймаутом
		s.pending.Add(1)
		go func(t model.Ticket) {
			defer s.pending.Done()
			eventCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.Events.PublishTicketCreated(eventCtx, &t)
		}(*ticket)
	}

	if s.Notifier != nil {
		failed := 0
		for _, o := range s.Notifier.Notify(ctx, notify.FormatMessage(ticket, s.Location)) {
			if o.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			s.Log.Warn("ticket notifications incomplete", "ticket_id", id, "failed", failed)
		}
	}
	return ticket, nil
}

// Wait блокируется до завершения отправки всех событий ticket.created.
// Вызывается перед закрытием продюсера.
func (s *TicketService) Wait() {
	s.pending.Wait()
}

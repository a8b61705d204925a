package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/psds-microservice/ticket-desk/internal/logger"
	"github.com/psds-microservice/ticket-desk/internal/model"
	"github.com/segmentio/kafka-go"
)

const EventTicketCreated = "ticket.created"

// TicketEventProducer — отправка событий заявки (для подмены моком в тестах).
type TicketEventProducer interface {
	PublishTicketCreated(ctx context.Context, t *model.Ticket)
}

// Producer пишет события заявок в топик Kafka (best-effort, не блокирует API).
type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewProducer создаёт продюсер. Если brokers или topic пустые — методы no-op.
func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.Nop()
	}
	p := &Producer{log: log.With("component", "kafka")}
	if len(brokers) == 0 || topic == "" {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return p
}

// TicketEvent — тело сообщения в топике.
type TicketEvent struct {
	Event        string    `json:"event"`
	TicketID     string    `json:"ticket_id"`
	ClientName   string    `json:"client_name"`
	ClientNumber string    `json:"client_number"`
	Location     string    `json:"location"`
	HouseNumber  string    `json:"house_number"`
	Problem      string    `json:"problem"`
	ReportTime   time.Time `json:"report_time"`
}

func NewTicketEvent(event string, t *model.Ticket) TicketEvent {
	return TicketEvent{
		Event:        event,
		TicketID:     t.ID,
		ClientName:   t.ClientName,
		ClientNumber: t.ClientNumber,
		Location:     t.Location,
		HouseNumber:  t.HouseNumber,
		Problem:      t.Problem,
		ReportTime:   t.ReportTime,
	}
}

// Enabled сообщает, настроен ли топик.
func (p *Producer) Enabled() bool {
	return p.writer != nil
}

// PublishTicketCreated отправляет ticket.created; ошибки только логируются.
func (p *Producer) PublishTicketCreated(ctx context.Context, t *model.Ticket) {
	if p.writer == nil {
		return
	}
	body, err := json.Marshal(NewTicketEvent(EventTicketCreated, t))
	if err != nil {
		p.log.Error("marshal ticket event", "error", err)
		return
	}
	msg := kafka.Message{Key: []byte(t.ID), Value: body}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("write ticket event", "ticket_id", t.ID, "error", err)
	}
}

// Close закрывает writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

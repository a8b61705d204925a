package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/psds-microservice/ticket-desk/internal/errs"
	"github.com/psds-microservice/ticket-desk/internal/logger"
	"github.com/psds-microservice/ticket-desk/internal/metrics"
	"github.com/psds-microservice/ticket-desk/internal/model"
	"golang.org/x/sync/errgroup"
)

// Sender отправляет сообщение одному получателю (sms.Client; мок в тестах).
type Sender interface {
	Send(ctx context.Context, recipient, message string) error
}

// Outcome — результат отправки одному получателю.
type Outcome struct {
	Recipient string
	Err       error
}

// Dispatcher рассылает уведомление фиксированному списку получателей.
type Dispatcher struct {
	sender      Sender
	recipients  []string
	concurrency int
	log         *logger.Logger
}

func NewDispatcher(sender Sender, recipients []string, concurrency int, log *logger.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		sender:      sender,
		recipients:  append([]string(nil), recipients...),
		concurrency: concurrency,
		log:         log.With("component", "notify"),
	}
}

// Notify отправляет message каждому получателю ровно один раз и возвращается после
// всех попыток. Ошибки отдельных получателей логируются и не прерывают рассылку.
// Результаты идут в порядке списка получателей.
func (d *Dispatcher) Notify(ctx context.Context, message string) []Outcome {
	outcomes := make([]Outcome, len(d.recipients))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, recipient := range d.recipients {
		g.Go(func() error {
			outcomes[i] = Outcome{Recipient: recipient}
			if err := d.sender.Send(ctx, recipient, message); err != nil {
				outcomes[i].Err = fmt.Errorf("%w: %s: %v", errs.ErrNotification, recipient, err)
				metrics.NotificationsSent.WithLabelValues(metrics.OutcomeFailed).Inc()
				d.log.Warn("sms send failed", "recipient", recipient, "error", err)
				return nil
			}
			metrics.NotificationsSent.WithLabelValues(metrics.OutcomeSent).Inc()
			d.log.Info("sms sent", "recipient", recipient)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// MaxBatchDuration — верхняя граница длительности Notify: получатели обрабатываются
// волнами по concurrency, каждая попытка ограничена perCall.
func MaxBatchDuration(recipients, concurrency int, perCall time.Duration) time.Duration {
	if recipients <= 0 {
		return 0
	}
	if concurrency < 1 {
		concurrency = 1
	}
	waves := (recipients + concurrency - 1) / concurrency
	return time.Duration(waves) * perCall
}

// FormatMessage собирает текст SMS по заявке. Время обращения выводится в зоне loc.
func FormatMessage(t *model.Ticket, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("New ticket from %s (%s) at %s, house %s: %s. Reported %s.",
		t.ClientName, t.ClientNumber, t.Location, t.HouseNumber, t.Problem,
		t.ReportTime.In(loc).Format("2006-01-02 15:04"))
}

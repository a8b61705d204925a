package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/psds-microservice/ticket-desk/internal/config"
	"github.com/psds-microservice/ticket-desk/internal/database"
	"github.com/psds-microservice/ticket-desk/internal/handler"
	"github.com/psds-microservice/ticket-desk/internal/kafka"
	"github.com/psds-microservice/ticket-desk/internal/logger"
	"github.com/psds-microservice/ticket-desk/internal/notify"
	"github.com/psds-microservice/ticket-desk/internal/router"
	"github.com/psds-microservice/ticket-desk/internal/service"
	"github.com/psds-microservice/ticket-desk/internal/sms"
	"github.com/psds-microservice/ticket-desk/internal/store"
)

// API приложение: HTTP-сервер формы и приёма заявок.
type API struct {
	cfg     *config.Config
	log     *logger.Logger
	httpSrv *http.Server
	svc     *service.TicketService
	closers []io.Closer
}

const (
	minWriteTimeout    = 60 * time.Second
	writeTimeoutMargin = 15 * time.Second
)

// writeTimeout покрывает худший случай рассылки: ответ на POST /create-ticket
// отправляется только после попытки отправки SMS всем получателям.
func writeTimeout(recipients, concurrency int, smsTimeout time.Duration) time.Duration {
	if smsTimeout <= 0 {
		smsTimeout = sms.DefaultTimeout
	}
	d := notify.MaxBatchDuration(recipients, concurrency, smsTimeout) + writeTimeoutMargin
	if d < minWriteTimeout {
		return minWriteTimeout
	}
	return d
}

// NewAPI собирает зависимости. Неполная конфигурация — ошибка, сервис не стартует.
func NewAPI(ctx context.Context, cfg *config.Config, log *logger.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}
	a := &API{cfg: cfg, log: log}

	ticketStore, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	smsClient := sms.NewClient(sms.Config{
		URL:            cfg.SMS.APIURL,
		APIKey:         cfg.SMS.APIKey,
		PartnerID:      cfg.SMS.PartnerID,
		SenderID:       cfg.SMS.SenderID,
		DuplicateCheck: cfg.SMS.DuplicateCheck,
		Timeout:        cfg.SMS.Timeout,
	}, log)
	dispatcher := notify.NewDispatcher(smsClient, cfg.SMS.Recipients, cfg.SMS.Concurrency, log)

	deps := service.Deps{
		Store:    ticketStore,
		Notifier: dispatcher,
		Location: loc,
		Log:      log.With("component", "ticket-service"),
	}
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicTicket, log)
	if producer.Enabled() {
		deps.Events = producer
		a.closers = append(a.closers, producer)
	}
	a.svc = service.NewTicketService(deps)

	a.httpSrv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(handler.NewTicketHandler(a.svc), log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout(len(cfg.SMS.Recipients), cfg.SMS.Concurrency, cfg.SMS.Timeout),
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

func (a *API) openStore(ctx context.Context) (store.TicketStore, error) {
	switch a.cfg.StoreDriver {
	case config.StorePostgres:
		version, err := database.MigrateUp(a.cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.log.Info("migrate: up ok", "version", version)
		db, err := database.Open(a.cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB)
		}
		return store.NewPostgresStore(db), nil
	default:
		client, err := store.OpenFirestore(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		fs := store.NewFirestoreStore(client, a.cfg.Firestore.Collection)
		a.closers = append(a.closers, fs)
		return fs, nil
	}
}

// Run запускает HTTP-сервер, блокируется до отмены ctx.
func (a *API) Run(ctx context.Context) error {
	defer a.close()

	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("HTTP server listening",
		"addr", a.httpSrv.Addr,
		"form", base+"/",
		"swagger", base+"/swagger",
		"store", a.cfg.StoreDriver,
		"recipients", len(a.cfg.SMS.Recipients),
		"write_timeout", a.httpSrv.WriteTimeout.String(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// незавершённые заявки получают тот же бюджет, что и WriteTimeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpSrv.WriteTimeout)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *API) close() {
	if a.svc != nil {
		// события ticket.created должны уйти до закрытия продюсера
		a.svc.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close", "error", err)
		}
	}
	a.closers = nil
}

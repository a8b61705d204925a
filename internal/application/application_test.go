package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/ticket-desk/internal/config"
	"github.com/psds-microservice/ticket-desk/internal/handler"
	"github.com/psds-microservice/ticket-desk/internal/logger"
	"github.com/psds-microservice/ticket-desk/internal/model"
	"github.com/psds-microservice/ticket-desk/internal/notify"
	"github.com/psds-microservice/ticket-desk/internal/router"
	"github.com/psds-microservice/ticket-desk/internal/service"
	"github.com/psds-microservice/ticket-desk/internal/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIRefusesIncompleteConfig(t *testing.T) {
	cfg := &config.Config{HTTPPort: "3000", StoreDriver: config.StoreFirestore}
	cfg.Firestore.ProjectID = "iconic"
	cfg.Firestore.Collection = "tickets"
	cfg.Firestore.EmulatorHost = "localhost:8080"

	app, err := NewAPI(context.Background(), cfg, logger.Nop())
	assert.Nil(t, app)
	assert.ErrorContains(t, err, "SMS_API_URL")
	assert.ErrorContains(t, err, "SMS_RECIPIENTS")
}

func TestNewAPIRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{HTTPPort: "3000", StoreDriver: "mongo"}

	_, err := NewAPI(context.Background(), cfg, logger.Nop())
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestWriteTimeoutCoversSMSBatch(t *testing.T) {
	cases := []struct {
		recipients  int
		concurrency int
		timeout     time.Duration
	}{
		{1, 4, 10 * time.Second},
		{25, 4, 10 * time.Second},
		{100, 1, 10 * time.Second},
		{8, 2, 0},
	}
	for _, tc := range cases {
		perCall := tc.timeout
		if perCall <= 0 {
			perCall = sms.DefaultTimeout
		}
		batch := notify.MaxBatchDuration(tc.recipients, tc.concurrency, perCall)
		got := writeTimeout(tc.recipients, tc.concurrency, tc.timeout)
		assert.GreaterOrEqual(t, got, minWriteTimeout)
		assert.Greater(t, got, batch, "recipients=%d concurrency=%d", tc.recipients, tc.concurrency)
	}
	assert.Equal(t, 85*time.Second, writeTimeout(25, 4, 10*time.Second))
}

type memStore struct {
	mu      sync.Mutex
	created int
}

func (s *memStore) Create(_ context.Context, _ *model.Ticket) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	return "doc-1", nil
}

// Весь стек с уменьшенными значениями: шлюз не отвечает, каждая попытка SMS
// упирается в таймаут, но клиент всё равно получает 200 в пределах бюджета.
func TestCreateTicketRespondsWhenGatewayHangs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer gateway.Close()

	const (
		recipients  = 8
		concurrency = 2
		smsTimeout  = 100 * time.Millisecond
	)
	numbers := make([]string, recipients)
	for i := range numbers {
		numbers[i] = "07000000" + string(rune('0'+i))
	}
	client := sms.NewClient(sms.Config{URL: gateway.URL, Timeout: smsTimeout}, logger.Nop())
	st := &memStore{}
	svc := service.NewTicketService(service.Deps{
		Store:    st,
		Notifier: notify.NewDispatcher(client, numbers, concurrency, logger.Nop()),
	})

	srv := httptest.NewUnstartedServer(router.New(handler.NewTicketHandler(svc), logger.Nop()))
	srv.Config.WriteTimeout = notify.MaxBatchDuration(recipients, concurrency, smsTimeout) + 300*time.Millisecond
	srv.Start()
	defer srv.Close()

	form := url.Values{
		"clientName":   {"A"},
		"clientNumber": {"555"},
		"location":     {"X"},
		"houseNumber":  {"12"},
		"problem":      {"leak"},
		"reportTime":   {"2024-01-01T10:00"},
	}
	resp, err := http.Post(srv.URL+"/create-ticket", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	st.mu.Lock()
	defer st.mu.Unlock()
	assert.Equal(t, 1, st.created)
}

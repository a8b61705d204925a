package cmd

import (
	"os"

	"github.com/psds-microservice/ticket-desk/internal/logger"
	"go.uber.org/zap"
)

// NewLogger — логгер для команд, которые работают до или без полной конфигурации.
func NewLogger() *logger.Logger {
	l, err := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		return &logger.Logger{SugaredLogger: zap.NewExample().Sugar()}
	}
	return l
}

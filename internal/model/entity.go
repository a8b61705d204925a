package model

import (
	"strings"
	"time"

	"github.com/psds-microservice/ticket-desk/internal/errs"
)

// Ticket — заявка клиента. После создания не изменяется.
type Ticket struct {
	ID           string    `gorm:"type:uuid;primaryKey" firestore:"-" json:"id"`
	ClientName   string    `gorm:"type:varchar(255);not null" firestore:"clientName" json:"clientName"`
	ClientNumber string    `gorm:"type:varchar(64);not null" firestore:"clientNumber" json:"clientNumber"`
	Location     string    `gorm:"type:varchar(255);not null" firestore:"location" json:"location"`
	HouseNumber  string    `gorm:"type:varchar(64);not null" firestore:"houseNumber" json:"houseNumber"`
	Problem      string    `gorm:"type:text;not null" firestore:"problem" json:"problem"`
	ReportTime   time.Time `gorm:"not null;index" firestore:"reportTime" json:"reportTime"`

	// CreatedAt выставляет хранилище в момент записи.
	CreatedAt time.Time `gorm:"autoCreateTime;index" firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// Submission — сырые поля формы до нормализации.
type Submission struct {
	ClientName   string `form:"clientName" json:"clientName" binding:"required"`
	ClientNumber string `form:"clientNumber" json:"clientNumber" binding:"required"`
	Location     string `form:"location" json:"location" binding:"required"`
	HouseNumber  string `form:"houseNumber" json:"houseNumber" binding:"required"`
	Problem      string `form:"problem" json:"problem" binding:"required"`
	ReportTime   string `form:"reportTime" json:"reportTime" binding:"required"`
}

var reportTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseReportTime разбирает момент обращения. Значения без смещения
// (datetime-local из формы) трактуются в зоне loc. Результат в UTC.
func ParseReportTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for i, layout := range reportTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errs.Invalid("reportTime", "reportTime is not a valid date/time")
}

// Normalize проверяет обязательные поля и переводит заявку в Ticket.
func (s Submission) Normalize(loc *time.Location) (*Ticket, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"clientName", s.ClientName},
		{"clientNumber", s.ClientNumber},
		{"location", s.Location},
		{"houseNumber", s.HouseNumber},
		{"problem", s.Problem},
		{"reportTime", s.ReportTime},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, errs.MissingFields(missing...)
	}
	reportTime, err := ParseReportTime(s.ReportTime, loc)
	if err != nil {
		return nil, err
	}
	return &Ticket{
		ClientName:   strings.TrimSpace(s.ClientName),
		ClientNumber: strings.TrimSpace(s.ClientNumber),
		Location:     strings.TrimSpace(s.Location),
		HouseNumber:  strings.TrimSpace(s.HouseNumber),
		Problem:      strings.TrimSpace(s.Problem),
		ReportTime:   reportTime,
	}, nil
}

package model

import (
	"errors"
	"testing"
	"time"

	"github.com/psds-microservice/ticket-desk/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		ClientName:   "A",
		ClientNumber: "555",
		Location:     "X",
		HouseNumber:  "12",
		Problem:      "leak",
		ReportTime:   "2024-01-01T10:00",
	}
}

func TestNormalizeValid(t *testing.T) {
	ticket, err := validSubmission().Normalize(time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "A", ticket.ClientName)
	assert.Equal(t, "leak", ticket.Problem)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), ticket.ReportTime)
	assert.True(t, ticket.CreatedAt.IsZero())
	assert.Empty(t, ticket.ID)
}

func TestNormalizeMissingFields(t *testing.T) {
	sub := validSubmission()
	sub.Problem = ""
	sub.Location = "   "

	_, err := sub.Normalize(time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"location", "problem"}, verr.Fields)
	assert.Equal(t, "missing required fields: location, problem", verr.Error())
}

func TestNormalizeBadDate(t *testing.T) {
	sub := validSubmission()
	sub.ReportTime = "not-a-date"

	_, err := sub.Normalize(time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Equal(t, "reportTime is not a valid date/time", err.Error())
}

func TestParseReportTimeLayouts(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	cases := []struct {
		in   string
		loc  *time.Location
		want time.Time
	}{
		{"2024-01-01T10:00", time.UTC, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00", nairobi, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:30", time.UTC, time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC)},
		{"2024-01-01 10:00", time.UTC, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.UTC, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00+03:00", time.UTC, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00.5Z", nairobi, time.Date(2024, 1, 1, 10, 0, 0, 5e8, time.UTC)},
		{" 2024-01-01T10:00 ", nil, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseReportTime(tc.in, tc.loc)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseReportTimeRejects(t *testing.T) {
	for _, in := range []string{"not-a-date", "2024-13-01T10:00", "2024-02-30", "10:00", "01/02/2024"} {
		_, err := ParseReportTime(in, time.UTC)
		assert.ErrorIs(t, err, errs.ErrValidation, in)
	}
}

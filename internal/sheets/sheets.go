// Package sheets mirrors the payments ledger to a Google Sheet so
// front-desk staff can watch settlements without database access.
package sheets

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/Seiiyes/HotelReservation/internal/events"
)

// Service appends payment rows to a spreadsheet.
type Service struct {
	srv           *sheetsapi.Service
	spreadsheetID string
	sheetName     string
	logger        zerolog.Logger
}

// NewService authenticates with a service-account credentials file and
// binds to the target spreadsheet.
func NewService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger zerolog.Logger) (*Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	srv, err := sheetsapi.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &Service{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

// Subscribe mirrors settled and deleted payments onto the sheet.
// Appends run in their own goroutine so a slow Sheets API call never
// blocks a settlement response.
func (s *Service) Subscribe(bus *events.Bus) {
	handler := func(event events.Event) {
		payment, ok := event.Payload.(events.PaymentEvent)
		if !ok {
			return
		}
		action := "settled"
		if event.Type == events.TypePaymentDeleted {
			action = "deleted"
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.AppendPayment(ctx, payment, action, event.OccurredAt); err != nil {
				s.logger.Error().Err(err).Int64("payment_id", payment.PaymentID).Msg("sheets append failed")
			}
		}()
	}
	bus.Subscribe(events.TypePaymentSettled, handler)
	bus.Subscribe(events.TypePaymentDeleted, handler)
}

// AppendPayment appends one ledger row.
func (s *Service) AppendPayment(ctx context.Context, p events.PaymentEvent, action string, at time.Time) error {
	values := &sheetsapi.ValueRange{
		Values: [][]any{paymentRowValues(p, action, at)},
	}
	_, err := s.srv.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName+"!A:H", values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", s.sheetName, err)
	}
	return nil
}

func paymentRowValues(p events.PaymentEvent, action string, at time.Time) []any {
	return []any{
		p.PaymentID,
		p.ReservationID,
		p.Reference,
		p.Amount,
		p.Method,
		p.Balance,
		action,
		at.Format("2006-01-02 15:04:05"),
	}
}

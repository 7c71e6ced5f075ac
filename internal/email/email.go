package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/Domenick1991/airline-booking/internal/kafka"
	"github.com/Domenick1991/airline-booking/pkg/logger"
)

// Sender delivers lifecycle notifications to passengers. Delivery is a
// stub that logs the would-be message.
type Sender struct {
	log *zap.Logger
}

func NewSender() *Sender {
	return &Sender{log: logger.WithComponent("email")}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	s.log.Info("send email",
		zap.String("to", event.Email),
		zap.String("event", event.Type),
		zap.String("ticket", event.TicketNumber),
		zap.String("pnr", event.PNR))
	return nil
}

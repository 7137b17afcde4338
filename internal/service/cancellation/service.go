package cancellation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

// Backend is the slice of the document store contract this flow consumes.
type Backend interface {
	CheckTrackingOrderStatus(ctx context.Context, bundleID string) (models.StatusCheck, error)
	CancelDocument(ctx context.Context, doctype, name string) error
}

// ConfirmFunc asks the operator to confirm a cancellation, given the
// server-computed message. Returning false declines.
type ConfirmFunc func(message string) bool

// Outcome describes how a cancellation request ended.
type Outcome string

const (
	// OutcomeCancelled means the document was cancelled in the backing store.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeDeclined means the operator declined; nothing was mutated.
	OutcomeDeclined Outcome = "declined"
)

// Service runs the confirm-then-cancel flow for tracking order bundles. The
// cancel is issued to the backing store only after explicit confirmation when
// the server asks for it; declining performs no mutation.
type Service struct {
	client Backend
	logger *zap.Logger
}

// NewService wires a cancellation service instance.
func NewService(client Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Cancel cancels the named document after the confirmation round-trip.
func (s *Service) Cancel(ctx context.Context, bundleID, doctype, name string, confirm ConfirmFunc) (Outcome, error) {
	status, err := s.client.CheckTrackingOrderStatus(ctx, bundleID)
	if err != nil {
		return "", fmt.Errorf("check tracking order status: %w", err)
	}

	if status.NeedsConfirmation {
		if confirm == nil || !confirm(status.ConfirmationMessage) {
			s.logger.Info("cancellation declined",
				zap.String("doctype", doctype), zap.String("name", name))
			return OutcomeDeclined, nil
		}
	}

	if err := s.client.CancelDocument(ctx, doctype, name); err != nil {
		return "", fmt.Errorf("cancel %s %s: %w", doctype, name, err)
	}

	s.logger.Info("document cancelled",
		zap.String("doctype", doctype), zap.String("name", name))
	return OutcomeCancelled, nil
}

// Package service implements the spendwise.v1 Connect services on top of a
// storage.Store and the settlement engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/spendwise/internal/auth"
	"github.com/mmynk/spendwise/internal/calculator"
	"github.com/mmynk/spendwise/internal/middleware"
	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/internal/storage"
)

// DefaultShareTolerance is how far explicit shares may miss the expense
// amount before AddExpense rejects them.
const DefaultShareTolerance money.Amount = 1

var errGroupIDRequired = errors.New("group_id required")

// Option configures the group and expense services.
type Option func(*settings)

type settings struct {
	logger          *slog.Logger
	settleTolerance money.Amount
	shareTolerance  money.Amount
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:         slog.Default(),
		shareTolerance: DefaultShareTolerance,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// planOptions returns the engine options the summaries run with.
func (s settings) planOptions() []calculator.Option {
	return []calculator.Option{calculator.WithTolerance(s.settleTolerance)}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSettleTolerance treats balances within tol of zero as settled when
// suggesting transfers.
func WithSettleTolerance(tol money.Amount) Option {
	return func(s *settings) { s.settleTolerance = tol }
}

// WithShareTolerance sets how far explicit shares may miss the expense total.
func WithShareTolerance(tol money.Amount) Option {
	return func(s *settings) { s.shareTolerance = tol }
}

// toConnectError maps storage and engine errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrMemberInUse):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, calculator.ErrNoMembers),
		errors.Is(err, calculator.ErrNonPositive),
		errors.Is(err, calculator.ErrSharesMismatch),
		errors.Is(err, calculator.ErrDuplicateMember):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// checkOwner fails with PermissionDenied unless the caller owns group.
func checkOwner(group *models.Group, userID string) error {
	if group.OwnerID != userID {
		return connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("group %s belongs to another user", group.ID))
	}
	return nil
}

// ownedGroup loads a group the caller owns.
func ownedGroup(ctx context.Context, store storage.GroupStore, groupID string) (*models.Group, string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, "", err
	}
	if groupID == "" {
		return nil, "", connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, "", toConnectError(err)
	}
	if err := checkOwner(group, userID); err != nil {
		return nil, "", err
	}
	return group, userID, nil
}

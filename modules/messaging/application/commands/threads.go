// Package commands contains the write use cases of the messaging module.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type CreateThreadCommand struct {
	ClientID  types.UserID
	TrainerID types.TrainerID
}

// CreateThreadHandler opens the chat of a client with a trainer they hold
// an active subscription with. A pair has a single thread; asking again
// returns it.
type CreateThreadHandler struct {
	threads  domain.ThreadRepository
	trainers api.TrainerDirectory
	ledger   api.SubscriptionLedger
	packages api.PackageCatalog
	uow      *eventbus.UnitOfWork
	logger   *slog.Logger
}

func NewCreateThreadHandler(threads domain.ThreadRepository, trainers api.TrainerDirectory, ledger api.SubscriptionLedger, packages api.PackageCatalog, uow *eventbus.UnitOfWork, logger *slog.Logger) *CreateThreadHandler {
	return &CreateThreadHandler{threads: threads, trainers: trainers, ledger: ledger, packages: packages, uow: uow, logger: logger}
}

func (h *CreateThreadHandler) Handle(ctx context.Context, cmd CreateThreadCommand) (types.ThreadID, bool, error) {
	trainer, err := h.trainers.Trainer(ctx, cmd.TrainerID)
	if errors.Is(err, api.ErrNotFound) {
		return types.ThreadID{}, false, domain.ErrTrainerUnavailable
	}
	if err != nil {
		return types.ThreadID{}, false, fmt.Errorf("resolving trainer: %w", err)
	}
	if trainer.IsSuspended || trainer.UserID == cmd.ClientID {
		return types.ThreadID{}, false, domain.ErrTrainerUnavailable
	}
	packageID, ok, err := h.ledger.ActiveSubscription(ctx, cmd.ClientID, cmd.TrainerID)
	if err != nil {
		return types.ThreadID{}, false, fmt.Errorf("checking subscription: %w", err)
	}
	if !ok {
		return types.ThreadID{}, false, domain.ErrSubscriptionRequired
	}
	priority := h.priority(ctx, packageID)

	var (
		id      types.ThreadID
		created bool
	)
	err = h.uow.Execute(ctx, "messaging.CreateThread", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		th, err := h.threads.FindByPair(ctx, cmd.ClientID, cmd.TrainerID)
		switch {
		case err == nil:
			id = th.ID()
			if th.IsPriority() == priority {
				return nil
			}
			th.SetPriority(priority)
		case errors.Is(err, domain.ErrThreadNotFound):
			th = domain.NewThread(cmd.ClientID, cmd.TrainerID, trainer.UserID, priority)
			id, created = th.ID(), true
		default:
			return fmt.Errorf("finding thread: %w", err)
		}
		if err := h.threads.Save(ctx, th); err != nil {
			return fmt.Errorf("saving thread: %w", err)
		}
		return nil
	})
	return id, created, err
}

// priority reads the package feature flag. A package that can no longer
// be read yields a regular thread.
func (h *CreateThreadHandler) priority(ctx context.Context, id types.PackageID) bool {
	pkg, err := h.packages.Package(ctx, id)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			h.logger.WarnContext(ctx, "reading package features failed",
				slog.String("package_id", id.String()),
				slog.Any("error", err),
			)
		}
		return false
	}
	return gjson.Get(pkg.FeaturesJSON, domain.PriorityFeature).Bool()
}

// DeleteThreadHandler removes a thread with its messages. Participants and
// administrators may delete.
type DeleteThreadHandler struct {
	threads domain.ThreadRepository
	uow     *eventbus.UnitOfWork
}

func NewDeleteThreadHandler(threads domain.ThreadRepository, uow *eventbus.UnitOfWork) *DeleteThreadHandler {
	return &DeleteThreadHandler{threads: threads, uow: uow}
}

func (h *DeleteThreadHandler) Handle(ctx context.Context, id types.ThreadID) error {
	p, err := sharedauth.Require(ctx)
	if err != nil {
		return err
	}
	return h.uow.Execute(ctx, "messaging.DeleteThread", func(ctx context.Context, _ *eventbus.TransactionalEventBus) error {
		th, err := h.threads.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsAdmin() && !th.HasParticipant(p.UserID) {
			return domain.ErrNotParticipant
		}
		return h.threads.Delete(ctx, id)
	})
}

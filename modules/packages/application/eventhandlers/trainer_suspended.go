// Package eventhandlers reacts to events of other modules inside the
// transaction that raised them.
package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlagappanMk24/Gymunity/modules/packages/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// TrainerSuspendedHandler takes every package of a suspended trainer off
// sale. Reactivating them is left to the trainer.
type TrainerSuspendedHandler struct {
	packages domain.PackageRepository
	logger   *slog.Logger
}

func NewTrainerSuspendedHandler(packages domain.PackageRepository, logger *slog.Logger) *TrainerSuspendedHandler {
	return &TrainerSuspendedHandler{packages: packages, logger: logger}
}

func (h *TrainerSuspendedHandler) Handle(ctx context.Context, event contracts.TrainerSuspendedEvent) error {
	active := true
	filter := domain.PackageFilter{TrainerID: &event.TrainerID, IsActive: &active}
	// Deactivated packages drop out of the filter, so the first page is
	// re-read until it is empty.
	for {
		pkgs, _, err := h.packages.List(ctx, filter, types.NewPage(1, types.MaxPageSize))
		if err != nil {
			return fmt.Errorf("listing packages: %w", err)
		}
		if len(pkgs) == 0 {
			return nil
		}
		for _, p := range pkgs {
			p.SetActive(false)
			if err := h.packages.Save(ctx, p); err != nil {
				return fmt.Errorf("saving package %s: %w", p.ID(), err)
			}
			h.logger.InfoContext(ctx, "deactivated package of suspended trainer",
				slog.String("package_id", p.ID().String()),
				slog.String("trainer_id", event.TrainerID.String()),
			)
		}
	}
}

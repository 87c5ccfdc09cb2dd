package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/domain"
)

type PaymentDTO struct {
	ID                 types.PaymentID      `json:"id"`
	SubscriptionID     types.SubscriptionID `json:"subscriptionId"`
	ClientID           types.UserID         `json:"clientId"`
	TrainerID          types.TrainerID      `json:"trainerId"`
	AmountCents        int64                `json:"amountCents"`
	PlatformFeeCents   int64                `json:"platformFeeCents"`
	TrainerPayoutCents int64                `json:"trainerPayoutCents"`
	Currency           string               `json:"currency"`
	Status             domain.PaymentStatus `json:"status"`
	Method             domain.Method        `json:"method"`
	ProviderReference  string               `json:"providerReference"`
	TransactionID      string               `json:"transactionId,omitempty"`
	FailureReason      string               `json:"failureReason,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	PaidAt             *time.Time           `json:"paidAt,omitempty"`
	RefundedAt         *time.Time           `json:"refundedAt,omitempty"`
}

func toPaymentDTO(p *domain.Payment) *PaymentDTO {
	return &PaymentDTO{
		ID:                 p.ID(),
		SubscriptionID:     p.SubscriptionID(),
		ClientID:           p.ClientID(),
		TrainerID:          p.TrainerID(),
		AmountCents:        p.Amount().Amount(),
		PlatformFeeCents:   p.PlatformFee().Amount(),
		TrainerPayoutCents: p.TrainerPayout().Amount(),
		Currency:           p.Amount().Currency(),
		Status:             p.Status(),
		Method:             p.Method(),
		ProviderReference:  p.ProviderReference(),
		TransactionID:      p.TransactionID(),
		FailureReason:      p.FailureReason(),
		CreatedAt:          p.CreatedAt(),
		PaidAt:             p.PaidAt(),
		RefundedAt:         p.RefundedAt(),
	}
}

type PaymentsHandler struct {
	payments domain.PaymentRepository
}

func NewPaymentsHandler(payments domain.PaymentRepository) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// Get returns a payment to its client or an administrator.
func (h *PaymentsHandler) Get(ctx context.Context, id types.PaymentID, viewer sharedauth.Principal) (*PaymentDTO, error) {
	p, err := h.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && p.ClientID() != viewer.UserID {
		return nil, domain.ErrPaymentNotFound
	}
	return toPaymentDTO(p), nil
}

func (h *PaymentsHandler) list(ctx context.Context, filter domain.PaymentFilter, page types.Page) (types.Paged[*PaymentDTO], error) {
	ps, total, err := h.payments.List(ctx, filter, page)
	if err != nil {
		return types.Paged[*PaymentDTO]{}, fmt.Errorf("listing payments: %w", err)
	}
	items := make([]*PaymentDTO, 0, len(ps))
	for _, p := range ps {
		items = append(items, toPaymentDTO(p))
	}
	return types.NewPaged(items, total, page), nil
}

func (h *PaymentsHandler) Mine(ctx context.Context, clientID types.UserID, page types.Page) (types.Paged[*PaymentDTO], error) {
	return h.list(ctx, domain.PaymentFilter{ClientID: &clientID}, page)
}

func (h *PaymentsHandler) Admin(ctx context.Context, filter domain.PaymentFilter, page types.Page) (types.Paged[*PaymentDTO], error) {
	return h.list(ctx, filter, page)
}

func (h *PaymentsHandler) Stats(ctx context.Context) (domain.PaymentStats, error) {
	return h.payments.Stats(ctx)
}

func (h *PaymentsHandler) Revenue(ctx context.Context, from, to *time.Time) ([]domain.Revenue, error) {
	rows, err := h.payments.Revenue(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("summing revenue: %w", err)
	}
	if rows == nil {
		rows = []domain.Revenue{}
	}
	return rows, nil
}

// maxExportRows caps a single payments export.
const maxExportRows = 10000

// Export renders every payment matching filter as a table.
func (h *PaymentsHandler) Export(ctx context.Context, filter domain.PaymentFilter) (export.Table, error) {
	t := export.Table{
		Title:   "Payments",
		Headers: []string{"Payment ID", "Subscription ID", "Client ID", "Amount", "Platform Fee", "Trainer Payout", "Currency", "Status", "Method", "Reference", "Created", "Paid"},
	}
	for number := 1; len(t.Rows) < maxExportRows; number++ {
		page := types.NewPage(number, types.MaxPageSize)
		ps, total, err := h.payments.List(ctx, filter, page)
		if err != nil {
			return export.Table{}, fmt.Errorf("listing payments: %w", err)
		}
		for _, p := range ps {
			paid := ""
			if p.PaidAt() != nil {
				paid = p.PaidAt().Format(time.DateTime)
			}
			t.Rows = append(t.Rows, []string{
				p.ID().String(),
				p.SubscriptionID().String(),
				p.ClientID().String(),
				cents(p.Amount().Amount()),
				cents(p.PlatformFee().Amount()),
				cents(p.TrainerPayout().Amount()),
				p.Amount().Currency(),
				p.Status().String(),
				string(p.Method()),
				p.ProviderReference(),
				p.CreatedAt().Format(time.DateTime),
				paid,
			})
		}
		if len(ps) == 0 || page.Offset()+len(ps) >= total {
			break
		}
	}
	return t, nil
}

func cents(v int64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

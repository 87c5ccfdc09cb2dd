package domain

import (
	"strings"
	"time"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Payment is one charge for a billing period of a subscription. The
// platform keeps PlatformFee and the trainer receives the rest.
type Payment struct {
	shareddomain.AggregateRoot

	id                types.PaymentID
	subscriptionID    types.SubscriptionID
	clientID          types.UserID
	trainerID         types.TrainerID
	amount            types.Money
	platformFee       types.Money
	status            PaymentStatus
	method            Method
	providerReference string
	transactionID     string
	failureReason     string
	createdAt         time.Time
	paidAt            *time.Time
	failedAt          *time.Time
	refundedAt        *time.Time
}

// NewPayment opens a pending payment for the next period of sub.
func NewPayment(sub *Subscription, method Method) *Payment {
	id := types.NewID[types.PaymentKind]()
	return &Payment{
		id:                id,
		subscriptionID:    sub.ID(),
		clientID:          sub.ClientID(),
		trainerID:         sub.TrainerID(),
		amount:            sub.Price(),
		platformFee:       sub.Price().Percent(sub.PlatformFeeBps()),
		status:            PaymentPending,
		method:            method,
		providerReference: strings.ToLower(string(method)) + "_" + strings.ReplaceAll(id.String(), "-", ""),
		createdAt:         time.Now().UTC(),
	}
}

// PaymentState is the persisted form of a Payment.
type PaymentState struct {
	ID                types.PaymentID
	SubscriptionID    types.SubscriptionID
	ClientID          types.UserID
	TrainerID         types.TrainerID
	Amount            types.Money
	PlatformFee       types.Money
	Status            PaymentStatus
	Method            Method
	ProviderReference string
	TransactionID     string
	FailureReason     string
	CreatedAt         time.Time
	PaidAt            *time.Time
	FailedAt          *time.Time
	RefundedAt        *time.Time
}

func ReconstitutePayment(s PaymentState) *Payment {
	return &Payment{
		id:                s.ID,
		subscriptionID:    s.SubscriptionID,
		clientID:          s.ClientID,
		trainerID:         s.TrainerID,
		amount:            s.Amount,
		platformFee:       s.PlatformFee,
		status:            s.Status,
		method:            s.Method,
		providerReference: s.ProviderReference,
		transactionID:     s.TransactionID,
		failureReason:     s.FailureReason,
		createdAt:         s.CreatedAt,
		paidAt:            s.PaidAt,
		failedAt:          s.FailedAt,
		refundedAt:        s.RefundedAt,
	}
}

func (p *Payment) State() PaymentState {
	return PaymentState{
		ID:                p.id,
		SubscriptionID:    p.subscriptionID,
		ClientID:          p.clientID,
		TrainerID:         p.trainerID,
		Amount:            p.amount,
		PlatformFee:       p.platformFee,
		Status:            p.status,
		Method:            p.method,
		ProviderReference: p.providerReference,
		TransactionID:     p.transactionID,
		FailureReason:     p.failureReason,
		CreatedAt:         p.createdAt,
		PaidAt:            p.paidAt,
		FailedAt:          p.failedAt,
		RefundedAt:        p.refundedAt,
	}
}

func (p *Payment) ID() types.PaymentID                  { return p.id }
func (p *Payment) SubscriptionID() types.SubscriptionID { return p.subscriptionID }
func (p *Payment) ClientID() types.UserID               { return p.clientID }
func (p *Payment) TrainerID() types.TrainerID           { return p.trainerID }
func (p *Payment) Amount() types.Money                  { return p.amount }
func (p *Payment) PlatformFee() types.Money             { return p.platformFee }
func (p *Payment) Status() PaymentStatus                { return p.status }
func (p *Payment) Method() Method                       { return p.method }
func (p *Payment) ProviderReference() string            { return p.providerReference }
func (p *Payment) TransactionID() string                { return p.transactionID }
func (p *Payment) FailureReason() string                { return p.failureReason }
func (p *Payment) CreatedAt() time.Time                 { return p.createdAt }
func (p *Payment) PaidAt() *time.Time                   { return p.paidAt }
func (p *Payment) RefundedAt() *time.Time               { return p.refundedAt }

// TrainerPayout is the amount left after the platform fee.
func (p *Payment) TrainerPayout() types.Money {
	payout, err := p.amount.Subtract(p.platformFee)
	if err != nil {
		return p.amount
	}
	return payout
}

// Complete marks a pending payment as paid.
func (p *Payment) Complete(transactionID string, now time.Time) error {
	if p.status != PaymentPending {
		return ErrPaymentNotPending
	}
	now = now.UTC()
	p.status = PaymentCompleted
	p.transactionID = transactionID
	p.paidAt = &now
	p.AddDomainEvent(newPaymentCompletedEvent(p))
	return nil
}

// Fail marks a pending payment as declined by the provider.
func (p *Payment) Fail(reason string, now time.Time) error {
	if p.status != PaymentPending {
		return ErrPaymentNotPending
	}
	now = now.UTC()
	p.status = PaymentFailed
	p.failureReason = strings.TrimSpace(reason)
	p.failedAt = &now
	p.AddDomainEvent(newPaymentFailedEvent(p))
	return nil
}

// Refund returns a completed payment to the client.
func (p *Payment) Refund(now time.Time) error {
	if p.status != PaymentCompleted {
		return ErrPaymentNotCompleted
	}
	now = now.UTC()
	p.status = PaymentRefunded
	p.refundedAt = &now
	p.AddDomainEvent(newPaymentRefundedEvent(p))
	return nil
}

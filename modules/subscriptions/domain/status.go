package domain

import "strings"

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusUnpaid   Status = "Unpaid"
	StatusActive   Status = "Active"
	StatusCanceled Status = "Canceled"
	StatusExpired  Status = "Expired"
)

func (s Status) String() string { return string(s) }

// IsOpen reports whether the subscription still blocks a second one to the
// same package.
func (s Status) IsOpen() bool { return s == StatusUnpaid || s == StatusActive }

// ParseStatus accepts the status names case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusUnpaid, StatusActive, StatusCanceled, StatusExpired} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentRefunded  PaymentStatus = "Refunded"
)

func (s PaymentStatus) String() string { return string(s) }

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, st := range []PaymentStatus{PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Method is the payment provider used for a payment.
type Method string

const (
	MethodStripe Method = "Stripe"
	MethodPayPal Method = "PayPal"
	MethodPaymob Method = "Paymob"
	MethodManual Method = "Manual"
)

func (m Method) String() string { return string(m) }

func ParseMethod(s string) (Method, error) {
	for _, m := range []Method{MethodStripe, MethodPayPal, MethodPaymob, MethodManual} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", ErrInvalidMethod
}

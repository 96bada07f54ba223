// Package errors defines domain-specific errors for the payment domain.
package errors

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrStkPushFailed   = errors.New("mpesa stk push failed")
	ErrCreatePayment   = errors.New("failed to create payment")
)

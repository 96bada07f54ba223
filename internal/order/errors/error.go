// Package errors provides custom error types for order-related operations.
package errors

import "errors"

var ErrCreateOrder = errors.New("failed to create order")
var ErrCreateOrderItem = errors.New("failed to create order item")

var ErrOrderNotFound = errors.New("order not found")
var ErrProductNotFound = errors.New("product not found")
var ErrInsufficientStock = errors.New("not enough stock available")
var ErrOrderAlreadyCancelled = errors.New("order already cancelled")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")

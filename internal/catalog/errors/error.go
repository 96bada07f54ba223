// Package errors provides custom error types for catalog-related operations.
package errors

import "errors"

var ErrServiceNotFound = errors.New("service not found")
var ErrProductNotFound = errors.New("product not found")

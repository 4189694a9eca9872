package services

import (
	"context"

	"github.com/mvaldes/almacen/internal/database"
)

// TransactionRunner is the atomic execution boundary every write operation
// goes through. *database.TxRunner implements it.
type TransactionRunner interface {
	RunMutation(ctx context.Context, operation string, fn database.MutationFunc) database.Result
	RunQuery(ctx context.Context, operation string, fn database.QueryFunc) database.Result
}

// Rollback reasons surfaced in Result.Message. Handlers map these to HTTP
// statuses; anything else in a failed result is an unexpected fault.
const (
	ReasonUserNotFound      = "user not found"
	ReasonProductNotFound   = "product not found"
	ReasonEmailTaken        = "email already registered"
	ReasonInsufficientStock = "insufficient stock"
	ReasonNegativeStock     = "stock cannot be negative"
	ReasonInvalidOperation  = "invalid stock operation"
)

// internal/app/system/txn/txn.go

// Package txn wraps MongoDB multi-document transactions.
//
// Replica sets and sharded clusters support transactions; standalone
// servers (and some DocumentDB deployments) do not. Run reports whether
// the transaction machinery itself was unavailable via IsNotSupported so
// callers can fall back to a non-transactional path guarded by their own
// locking.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Run executes fn inside a MongoDB transaction. All reads and writes in
// fn must use the provided session context or they escape the
// transaction. The driver retries transient transaction errors itself.
func Run(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// IsConflict reports whether err is a transient transaction error: the
// commit lost a write race and the whole operation may be retried.
func IsConflict(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.HasErrorLabel("TransientTransactionError") || ce.Name == "WriteConflict"
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		return we.HasErrorLabel("TransientTransactionError")
	}
	return false
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions at all (standalone server, old wire
// version, or a DocumentDB flavor without session support).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation / transaction numbers / API mismatch
			return true
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") {
		if strings.Contains(s, "replica set") ||
			strings.Contains(s, "session") ||
			strings.Contains(s, "illegal operation") {
			return true
		}
	}
	if strings.Contains(s, "session") && strings.Contains(s, "not supported") {
		return true
	}
	return false
}

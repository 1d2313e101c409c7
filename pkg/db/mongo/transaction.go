package mongo

import (
	"context"
	"fmt"
	"time"

	apperrors "docbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TransactionFunc may run more than once: the driver retries it on
// transient transaction errors.
type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

// NewTransactionManager runs transactions on the primary with snapshot reads
// and majority writes, so two patients racing for one slot see each other's
// lock. commitTimeout bounds the commit when positive.
func NewTransactionManager(client *mongo.Client, commitTimeout time.Duration) TransactionManager {
	opts := options.Transaction().
		SetReadPreference(readpref.Primary()).
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if commitTimeout > 0 {
		opts.SetMaxCommitTime(&commitTimeout)
	}
	return &mongoTransactionManager{client: client, opts: opts}
}

// ExecuteTransaction keeps AppErrors from fn intact and wraps everything else.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	// A cancelled request must still release its session.
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, m.opts)
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	default:
		return fmt.Errorf("booking transaction: %w", err)
	}
}

// Package txn runs multi-document writes in a MongoDB transaction when the
// deployment supports one, and sequentially when it does not (standalone
// servers and some hosted variants).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes fn atomically where possible.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

// New returns a Runner bound to client.
func New(client *mongo.Client, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{client: client, log: log}
}

// Run calls fn inside a transaction. If the server rejects transactions,
// fn is called once more with the plain context and its writes are applied
// one by one. fn must therefore be safe to retry from the start.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return r.fallback(ctx, fn, err)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return r.fallback(ctx, fn, err)
	}
	return err
}

func (r *Runner) fallback(ctx context.Context, fn func(ctx context.Context) error, cause error) error {
	r.log.Debug("transactions unavailable; running writes sequentially", zap.Error(cause))
	return fn(ctx)
}

// IsNotSupported reports whether err means the server cannot run
// transactions or sessions. Known command codes are checked first; other
// errors match when their message names two of the telltale phrases.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, transaction numbers only on replset, op not allowed in txn
			return true
		}
	}
	s := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(s, kw) {
			hits++
		}
	}
	return hits >= 2
}

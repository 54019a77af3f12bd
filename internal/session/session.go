// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Keys under which the session is stored.
const (
	KeyToken  = "token"
	KeyUserID = "userId"
)

// Session is the authenticated state shared with the rest of the application.
type Session struct {
	Token  string
	UserID string
}

// Persister writes sessions to a Store.
type Persister struct {
	store  Store
	logger *slog.Logger
}

// NewPersister creates a Persister. A nil logger falls back to slog.Default.
func NewPersister(store Store, logger *slog.Logger) (*Persister, error) {
	if store == nil {
		return nil, oops.Code(CodeSessionStoreFailed).Errorf("session store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{store: store, logger: logger}, nil
}

// Persist decodes token and stores it together with its userId.
// Nothing is written when the token does not decode, and a failed second
// write removes the first, so the store never holds half a session.
func (p *Persister) Persist(ctx context.Context, token string) (Session, error) {
	payload, err := DecodeToken(token)
	if err != nil {
		return Session{}, err
	}

	sess := Session{Token: token, UserID: payload.UserID}
	if err := p.write(ctx, sess); err != nil {
		return Session{}, err
	}

	p.logger.DebugContext(ctx, "session persisted", "user_id", sess.UserID)
	return sess, nil
}

func (p *Persister) write(ctx context.Context, sess Session) error {
	if batch, ok := p.store.(BatchSetter); ok {
		if err := batch.SetAll(map[string]string{KeyToken: sess.Token, KeyUserID: sess.UserID}); err != nil {
			return oops.Code(CodeSessionStoreFailed).With("operation", "write session").Wrap(err)
		}
		return nil
	}

	if err := p.store.Set(KeyToken, sess.Token); err != nil {
		return oops.Code(CodeSessionStoreFailed).With("key", KeyToken).Wrap(err)
	}
	if err := p.store.Set(KeyUserID, sess.UserID); err != nil {
		if rbErr := p.store.Remove(KeyToken); rbErr != nil {
			p.logger.WarnContext(ctx, "session rollback failed", "key", KeyToken, "error", rbErr)
		}
		return oops.Code(CodeSessionStoreFailed).With("key", KeyUserID).Wrap(err)
	}
	return nil
}

// Load reads the session from store. The bool is false unless both keys
// are present.
func Load(store Store) (Session, bool, error) {
	token, hasToken, err := store.Get(KeyToken)
	if err != nil {
		return Session{}, false, oops.Code(CodeSessionStoreFailed).With("key", KeyToken).Wrap(err)
	}
	userID, hasUserID, err := store.Get(KeyUserID)
	if err != nil {
		return Session{}, false, oops.Code(CodeSessionStoreFailed).With("key", KeyUserID).Wrap(err)
	}
	if !hasToken || !hasUserID {
		return Session{}, false, nil
	}
	return Session{Token: token, UserID: userID}, true, nil
}

// Clear removes both session keys.
func Clear(store Store) error {
	var errs []error
	for _, key := range []string{KeyToken, KeyUserID} {
		if err := store.Remove(key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return oops.Code(CodeSessionStoreFailed).With("operation", "clear session").Wrap(errors.Join(errs...))
	}
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/observability"
)

// RevocationStore is the allow-list of issued, not yet revoked tokens.
// A token absent from the store is never accepted. Entries are not pruned
// when their token expires.
type RevocationStore interface {
	Add(ctx context.Context, token string) error
	Exists(ctx context.Context, token string) (bool, error)
	Remove(ctx context.Context, token string) (bool, error)
}

// Outcome labels recorded for every SessionAuthority call.
const (
	outcomeIssued          = "issued"
	outcomeIssueFailed     = "issue_failed"
	outcomeAuthorized      = "authorized"
	outcomeRevoked         = "revoked"
	outcomeExpired         = "expired"
	outcomeInvalid         = "invalid"
	outcomeMalformedClaims = "malformed_claims"
	outcomeStoreError      = "store_error"
	outcomeLoggedOut       = "logged_out"
	outcomeNotFound        = "not_found"
)

// SessionAuthority issues, authorizes and revokes session tokens.
//
// A token moves Unissued -> Active on Issue and Active -> Revoked on Revoke.
// Expiry is never stored; it is read from the signed claims on Authorize.
type SessionAuthority struct {
	codec   *TokenCodec
	store   RevocationStore
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewSessionAuthority wires a codec to a revocation store.
func NewSessionAuthority(codec *TokenCodec, store RevocationStore, logger *zap.Logger, metrics *observability.Metrics) *SessionAuthority {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionAuthority{codec: codec, store: store, logger: logger, metrics: metrics}
}

// Issue mints a token for the user and records it as active. If the store
// write fails no token is returned.
func (s *SessionAuthority) Issue(ctx context.Context, username string, isAdmin bool) (string, error) {
	claims := s.codec.NewClaims(username, isAdmin)

	token, err := s.codec.Encode(claims)
	if err != nil {
		s.metrics.RecordAuthOutcome(outcomeIssueFailed)
		return "", fmt.Errorf("encode token: %w", err)
	}

	if err := s.store.Add(ctx, token); err != nil {
		s.metrics.RecordAuthOutcome(outcomeIssueFailed)
		return "", fmt.Errorf("record active token: %w", err)
	}

	s.metrics.RecordAuthOutcome(outcomeIssued)
	s.logger.Info("session issued",
		zap.String("username", username),
		zap.String("token_id", claims.ID),
		zap.Time("expires_at", claims.ExpiresAt))
	return token, nil
}

// Authorize resolves the caller behind token. Membership in the store is
// checked before the signature and expiry, so a token that was never issued
// or has been revoked reports ErrTokenRevoked even when it would decode.
func (s *SessionAuthority) Authorize(ctx context.Context, token string) (*domain.Identity, error) {
	active, err := s.store.Exists(ctx, token)
	if err != nil {
		s.metrics.RecordAuthOutcome(outcomeStoreError)
		return nil, fmt.Errorf("lookup active token: %w", err)
	}
	if !active {
		s.reject(outcomeRevoked)
		return nil, ErrTokenRevoked
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			s.reject(outcomeExpired)
		} else {
			s.reject(outcomeInvalid)
		}
		return nil, err
	}

	if claims.Subject == "" {
		s.reject(outcomeMalformedClaims)
		return nil, ErrMalformedClaims
	}

	s.metrics.RecordAuthOutcome(outcomeAuthorized)
	return &domain.Identity{
		Username: claims.Subject,
		IsAdmin:  claims.IsAdmin,
		RawToken: token,
	}, nil
}

// Revoke removes token from the active set. It fails with ErrTokenNotFound
// when there was nothing to remove.
func (s *SessionAuthority) Revoke(ctx context.Context, token string) error {
	removed, err := s.store.Remove(ctx, token)
	if err != nil {
		s.metrics.RecordAuthOutcome(outcomeStoreError)
		return fmt.Errorf("remove active token: %w", err)
	}
	if !removed {
		s.metrics.RecordAuthOutcome(outcomeNotFound)
		return ErrTokenNotFound
	}

	s.metrics.RecordAuthOutcome(outcomeLoggedOut)
	s.logger.Info("session revoked")
	return nil
}

func (s *SessionAuthority) reject(outcome string) {
	s.metrics.RecordAuthOutcome(outcome)
	s.logger.Debug("authorization rejected", zap.String("outcome", outcome))
}

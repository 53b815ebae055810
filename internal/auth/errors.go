package auth

import (
	"net/http"

	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// Authentication failures. Each is a *util.DomainError so the HTTP layer can
// render it directly; wrap with %w to add context.
var (
	ErrMissingCredential = apperrors.NewDomainError("MISSING_CREDENTIAL", "Not authenticated", http.StatusUnauthorized, nil)
	ErrTokenRevoked      = apperrors.NewDomainError("TOKEN_REVOKED", "Token is invalid or has been revoked", http.StatusUnauthorized, nil)
	ErrTokenExpired      = apperrors.NewDomainError("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized, nil)
	ErrTokenInvalid      = apperrors.NewDomainError("TOKEN_INVALID", "Token is invalid", http.StatusUnauthorized, nil)
	ErrMalformedClaims   = apperrors.NewDomainError("MALFORMED_CLAIMS", "Token payload invalid: 'sub' missing", http.StatusUnauthorized, nil)
	ErrForbidden         = apperrors.NewDomainError("FORBIDDEN", "Access denied: Admins only", http.StatusForbidden, nil)
	ErrTokenNotFound     = apperrors.NewDomainError("TOKEN_NOT_FOUND", "Token not found", http.StatusNotFound, nil)
)

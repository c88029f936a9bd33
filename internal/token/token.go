package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/berlinbruno/podpirate/internal/apperr"
)

// Kind identifies one of the three token kinds issued by the platform.
type Kind string

const (
	KindAccess       Kind = "ACCESS"
	KindRefresh      Kind = "REFRESH"
	KindVerification Kind = "VERIFICATION"
)

// All three kinds share one signing key; the kind is encoded by tagging the
// subject. Access tokens carry the bare account email.
const (
	refreshPrefix      = "#refresh"
	verificationPrefix = "#verification"

	bearerPrefix = "Bearer "
)

// Codec issues and validates the three JWT kinds. It is stateless and safe
// for concurrent use.
type Codec struct {
	secret          []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
}

// NewCodec creates a codec signing with secret. Lifetimes are per kind:
// access and refresh are typically days, verification minutes.
func NewCodec(secret string, accessTTL, refreshTTL, verificationTTL time.Duration) *Codec {
	return &Codec{
		secret:          []byte(secret),
		accessTTL:       accessTTL,
		refreshTTL:      refreshTTL,
		verificationTTL: verificationTTL,
	}
}

// Lifetime returns the configured validity window for a kind.
func (c *Codec) Lifetime(kind Kind) time.Duration {
	switch kind {
	case KindRefresh:
		return c.refreshTTL
	case KindVerification:
		return c.verificationTTL
	default:
		return c.accessTTL
	}
}

func subjectTag(kind Kind) string {
	switch kind {
	case KindRefresh:
		return refreshPrefix
	case KindVerification:
		return verificationPrefix
	default:
		return ""
	}
}

// Issue signs a token of the given kind for the account email, valid from
// now until now + lifetime(kind).
func (c *Codec) Issue(kind Kind, email string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subjectTag(kind) + email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.Lifetime(kind))),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Validate verifies raw against the expected kind and, when expectedEmail is
// non-empty, against the account email bound into the subject. It returns the
// subject email on success. Validation is pure: resolving the email to an
// account is the caller's job.
func (c *Codec) Validate(raw string, kind Kind, expectedEmail string) (string, error) {
	return c.ValidateAt(raw, kind, expectedEmail, time.Now())
}

// ValidateAt is Validate evaluated at an explicit point in time.
func (c *Codec) ValidateAt(raw string, kind Kind, expectedEmail string, now time.Time) (string, error) {
	if kind == KindAccess {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.ErrTokenExpired
		}
		return "", apperr.ErrTokenInvalid
	}
	if !parsed.Valid {
		return "", apperr.ErrTokenInvalid
	}

	email, err := splitSubject(claims.Subject, kind)
	if err != nil {
		return "", err
	}

	if expectedEmail != "" && !strings.EqualFold(email, expectedEmail) {
		return "", apperr.ErrEmailTokenMismatch
	}
	return email, nil
}

// splitSubject checks the kind tag and strips it off. A refresh or
// verification token presented where another kind is expected fails with a
// kind mismatch even when signature and expiry are fine.
func splitSubject(subject string, kind Kind) (string, error) {
	switch kind {
	case KindRefresh:
		if !strings.HasPrefix(subject, refreshPrefix) {
			return "", apperr.ErrTokenKindMismatch
		}
		return subject[len(refreshPrefix):], nil
	case KindVerification:
		if !strings.HasPrefix(subject, verificationPrefix) {
			return "", apperr.ErrTokenKindMismatch
		}
		return subject[len(verificationPrefix):], nil
	default:
		// Tagged subjects never validate as access tokens. Emails cannot
		// start with '#', so the check is unambiguous.
		if strings.HasPrefix(subject, refreshPrefix) || strings.HasPrefix(subject, verificationPrefix) {
			return "", apperr.ErrTokenKindMismatch
		}
		return subject, nil
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/internal/token"
	"github.com/berlinbruno/podpirate/pkg/models"
)

const (
	AccountContextKey = "account"
	EmailContextKey   = "account_email"
)

// JWTAuth validates the bearer access token, resolves the account behind
// it and stores both on the request context. Locked and unverified
// accounts are rejected here so handlers never see them.
func JWTAuth(codec *token.Codec, accounts store.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		email, err := codec.Validate(authHeader, token.KindAccess, "")
		if err != nil {
			abortWithTokenError(c, err)
			return
		}

		account, err := accounts.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			c.Abort()
			return
		}

		if account.Locked {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is locked"})
			c.Abort()
			return
		}
		if !account.EmailVerified {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account needs verification"})
			c.Abort()
			return
		}

		c.Set(AccountContextKey, account)
		c.Set(EmailContextKey, account.Email)
		c.Next()
	}
}

// RequireAdmin rejects requests whose authenticated account lacks the
// ADMIN role. Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := GetAccount(c)
		if !ok || !account.HasRole(models.RoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAccount retrieves the authenticated account from the context.
func GetAccount(c *gin.Context) (*models.Account, bool) {
	v, exists := c.Get(AccountContextKey)
	if !exists {
		return nil, false
	}
	account, ok := v.(*models.Account)
	return account, ok
}

// GetEmail retrieves the authenticated account's email from the context.
func GetEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get(EmailContextKey)
	if !exists {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func abortWithTokenError(c *gin.Context, err error) {
	if appErr, ok := apperr.From(err); ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": appErr.Message, "code": appErr.Code})
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	}
	c.Abort()
}

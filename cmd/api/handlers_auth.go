package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/berlinbruno/podpirate/internal/auth"
	"github.com/berlinbruno/podpirate/internal/metrics"
)

// Registration endpoint
func (api *API) register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := api.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RegistrationsTotal.Inc()
	c.JSON(http.StatusCreated, account)
}

// Login endpoint
func (api *API) login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, account, err := api.auth.Login(c.Request.Context(), req)
	if err != nil {
		metrics.RecordLogin("failure")
		respondError(c, err)
		return
	}

	metrics.RecordLogin("success")
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"account":       account,
	})
}

// Token refresh endpoint
func (api *API) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := api.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Email verification endpoint
func (api *API) verifyEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.auth.VerifyEmail(c.Request.Context(), req.Email, req.Token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// Resend verification mail endpoint
func (api *API) sendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.auth.SendVerificationToken(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification mail sent"})
}

// Forgot password endpoint. Unknown emails get the same answer as known
// ones so the endpoint cannot be used to probe for accounts.
func (api *API) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.auth.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		api.logger.ErrorWithErr("password reset dispatch failed", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset mail was sent"})
}

// Password reset endpoint
func (api *API) resetPassword(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Token           string `json:"token" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.auth.ResetPassword(c.Request.Context(), req.Email, req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

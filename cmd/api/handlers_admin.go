package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/berlinbruno/podpirate/internal/metrics"
	"github.com/berlinbruno/podpirate/internal/middleware"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// Admin account list endpoint. Supports role, status and keyword filters.
func (api *API) adminListAccounts(c *gin.Context) {
	page, size := pageParams(c)

	filter := store.AccountFilter{
		Keyword: c.Query("query"),
		Role:    models.Role(c.Query("role")),
	}
	switch c.Query("status") {
	case string(models.AccountStatusLocked):
		v := true
		filter.Locked = &v
	case string(models.AccountStatusActive):
		locked, verified := false, true
		filter.Locked = &locked
		filter.EmailVerified = &verified
	case string(models.AccountStatusPendingVerification):
		v := false
		filter.EmailVerified = &v
	}

	accounts, total, err := api.accounts.Search(c.Request.Context(), filter, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(accounts, total, page, size))
}

// Admin account detail endpoint
func (api *API) adminGetAccount(c *gin.Context) {
	account, err := api.accounts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// Account lock endpoint
func (api *API) adminLockAccount(c *gin.Context) {
	account, err := api.auth.Lock(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// Account unlock endpoint
func (api *API) adminUnlockAccount(c *gin.Context) {
	account, err := api.auth.Unlock(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// Admin account deletion endpoint
func (api *API) adminDeleteAccount(c *gin.Context) {
	admin, _ := middleware.GetAccount(c)

	target, err := api.accounts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := api.content.AdminDeleteAccount(c.Request.Context(), admin, target.ID); err != nil {
		respondError(c, err)
		return
	}

	api.notifyDeletion(c, target.Email, target.Username)
	metrics.CascadeDeletionsTotal.WithLabelValues("account").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// Admin podcast list endpoint. The FLAGGED pseudo-status filters on the
// flagged boolean instead of the real status field.
func (api *API) adminListPodcasts(c *gin.Context) {
	page, size := pageParams(c)

	filter := store.PodcastFilter{
		Keyword:   c.Query("query"),
		Category:  c.Query("category"),
		AccountID: c.Query("account_id"),
	}
	if status := models.PodcastStatus(c.Query("status")); status != "" {
		if status == models.PodcastStatusFlagged {
			v := true
			filter.Flagged = &v
		} else {
			filter.Status = status
		}
	}

	podcasts, total, err := api.podcasts.Search(c.Request.Context(), filter, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(podcasts, total, page, size))
}

// Admin podcast detail endpoint
func (api *API) adminGetPodcast(c *gin.Context) {
	podcast, err := api.podcasts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Podcast flag endpoint. Flagging un-publishes the podcast and all of its
// published episodes.
func (api *API) adminFlagPodcast(c *gin.Context) {
	admin, _ := middleware.GetAccount(c)

	podcast, err := api.content.FlagPodcast(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.PodcastsFlaggedTotal.Inc()
	c.JSON(http.StatusOK, podcast)
}

// Podcast unflag endpoint
func (api *API) adminUnflagPodcast(c *gin.Context) {
	admin, _ := middleware.GetAccount(c)

	podcast, err := api.content.UnflagPodcast(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Admin podcast deletion endpoint
func (api *API) adminDeletePodcast(c *gin.Context) {
	admin, _ := middleware.GetAccount(c)

	if err := api.content.AdminDeletePodcast(c.Request.Context(), admin, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	metrics.CascadeDeletionsTotal.WithLabelValues("podcast").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Podcast deleted"})
}

// Admin episode deletion endpoint
func (api *API) adminDeleteEpisode(c *gin.Context) {
	admin, _ := middleware.GetAccount(c)
	index, ok := episodeIndex(c)
	if !ok {
		return
	}

	podcast, err := api.content.AdminDeleteEpisode(c.Request.Context(), admin, c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.CascadeDeletionsTotal.WithLabelValues("episode").Inc()
	c.JSON(http.StatusOK, podcast)
}

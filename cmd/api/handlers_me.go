package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/internal/auth"
	"github.com/berlinbruno/podpirate/internal/content"
	"github.com/berlinbruno/podpirate/internal/media"
	"github.com/berlinbruno/podpirate/internal/metrics"
	"github.com/berlinbruno/podpirate/internal/middleware"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// Current account endpoint
func (api *API) getProfile(c *gin.Context) {
	account, _ := middleware.GetAccount(c)
	c.JSON(http.StatusOK, account)
}

// Profile update endpoint
func (api *API) updateProfile(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	var req auth.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, replacedPath, err := api.auth.UpdateProfile(c.Request.Context(), account.Email, req)
	if err != nil {
		respondError(c, err)
		return
	}

	if replacedPath != "" {
		if err := api.media.DeleteIfSet(c.Request.Context(), replacedPath); err != nil {
			api.logger.WithAccountID(account.ID).ErrorWithErr("failed to release replaced profile image", err)
		}
	}

	c.JSON(http.StatusOK, updated)
}

// Profile image upload URL endpoint
func (api *API) profileImageUploadURL(c *gin.Context) {
	account, _ := middleware.GetAccount(c)
	api.issueUploadURL(c, media.ProfileImagePath(account.ID, c.DefaultQuery("ext", "jpg")))
}

// Sign-out endpoint. Requires the password again and forces email
// re-verification since stateless tokens cannot be revoked.
func (api *API) signOut(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.auth.SignOut(c.Request.Context(), account.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Password change endpoint
func (api *API) changePassword(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.auth.ChangePassword(c.Request.Context(), account.Email, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Account self-deletion endpoint. Re-authenticates with the password and
// cascades through everything the account owns.
func (api *API) deleteAccount(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := api.auth.CheckPassword(c.Request.Context(), account.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	if err := api.content.DeleteAccount(c.Request.Context(), account.ID); err != nil {
		respondError(c, err)
		return
	}

	api.notifyDeletion(c, account.Email, account.Username)
	metrics.CascadeDeletionsTotal.WithLabelValues("account").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// Owned podcast list endpoint
func (api *API) listMyPodcasts(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	podcasts, err := api.content.ListOwnedPodcasts(c.Request.Context(), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": podcasts})
}

// Podcast creation endpoint
func (api *API) createPodcast(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	var req content.CreatePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	podcast, err := api.content.CreatePodcast(c.Request.Context(), account.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, podcast)
}

// Owned podcast detail endpoint
func (api *API) getMyPodcast(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	podcast, err := api.content.GetOwnedPodcast(c.Request.Context(), account.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Podcast partial update endpoint
func (api *API) updatePodcast(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	var req content.UpdatePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	podcast, err := api.content.UpdatePodcast(c.Request.Context(), account.ID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Podcast publish endpoint
func (api *API) publishPodcast(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	podcast, err := api.content.PublishPodcast(c.Request.Context(), account.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.PodcastsPublishedTotal.Inc()
	c.JSON(http.StatusOK, podcast)
}

// Podcast archive endpoint
func (api *API) archivePodcast(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	podcast, err := api.content.ArchivePodcast(c.Request.Context(), account.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Podcast deletion endpoint
func (api *API) deletePodcast(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	if err := api.content.DeletePodcast(c.Request.Context(), account.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	metrics.CascadeDeletionsTotal.WithLabelValues("podcast").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Podcast deleted"})
}

// Cover upload URL endpoint
func (api *API) podcastCoverUploadURL(c *gin.Context) {
	if _, ok := api.requireOwnedPodcast(c); !ok {
		return
	}
	api.issueUploadURL(c, media.PodcastCoverPath(c.Param("id"), c.DefaultQuery("ext", "jpg")))
}

// Banner upload URL endpoint
func (api *API) podcastBannerUploadURL(c *gin.Context) {
	if _, ok := api.requireOwnedPodcast(c); !ok {
		return
	}
	api.issueUploadURL(c, media.PodcastBannerPath(c.Param("id"), c.DefaultQuery("ext", "jpg")))
}

// Episode creation endpoint
func (api *API) addEpisode(c *gin.Context) {
	account, _ := middleware.GetAccount(c)

	var req content.CreateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	podcast, index, err := api.content.AddEpisode(c.Request.Context(), account.ID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"podcast": podcast, "episode_index": index})
}

// Episode partial update endpoint
func (api *API) updateEpisode(c *gin.Context) {
	account, _ := middleware.GetAccount(c)
	index, ok := episodeIndex(c)
	if !ok {
		return
	}

	var req content.UpdateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	podcast, err := api.content.UpdateEpisode(c.Request.Context(), account.ID, c.Param("id"), index, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Episode publish endpoint
func (api *API) publishEpisode(c *gin.Context) {
	account, _ := middleware.GetAccount(c)
	index, ok := episodeIndex(c)
	if !ok {
		return
	}

	podcast, err := api.content.PublishEpisode(c.Request.Context(), account.ID, c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.EpisodesPublishedTotal.Inc()
	c.JSON(http.StatusOK, podcast)
}

// Episode archive endpoint
func (api *API) archiveEpisode(c *gin.Context) {
	account, _ := middleware.GetAccount(c)
	index, ok := episodeIndex(c)
	if !ok {
		return
	}

	podcast, err := api.content.ArchiveEpisode(c.Request.Context(), account.ID, c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Episode deletion endpoint. Indices after the removed episode shift down.
func (api *API) deleteEpisode(c *gin.Context) {
	account, _ := middleware.GetAccount(c)
	index, ok := episodeIndex(c)
	if !ok {
		return
	}

	podcast, err := api.content.DeleteEpisode(c.Request.Context(), account.ID, c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.CascadeDeletionsTotal.WithLabelValues("episode").Inc()
	c.JSON(http.StatusOK, podcast)
}

// Episode image upload URL endpoint. URLs are only signed for episodes
// that exist.
func (api *API) episodeImageUploadURL(c *gin.Context) {
	index, ok := episodeIndex(c)
	if !ok {
		return
	}
	podcast, ok := api.requireOwnedPodcast(c)
	if !ok {
		return
	}
	if index >= len(podcast.Episodes) {
		respondError(c, apperr.ErrEpisodeNotFound)
		return
	}
	api.issueUploadURL(c, media.EpisodeImagePath(c.Param("id"), index, c.DefaultQuery("ext", "jpg")))
}

// Episode audio upload URL endpoint. URLs are only signed for episodes
// that exist.
func (api *API) episodeAudioUploadURL(c *gin.Context) {
	index, ok := episodeIndex(c)
	if !ok {
		return
	}
	podcast, ok := api.requireOwnedPodcast(c)
	if !ok {
		return
	}
	if index >= len(podcast.Episodes) {
		respondError(c, apperr.ErrEpisodeNotFound)
		return
	}
	api.issueUploadURL(c, media.EpisodeAudioPath(c.Param("id"), index, c.DefaultQuery("ext", "mp3")))
}

// requireOwnedPodcast aborts with a structured failure unless the caller
// owns the podcast in the route, and returns the podcast on success.
func (api *API) requireOwnedPodcast(c *gin.Context) (*models.Podcast, bool) {
	account, _ := middleware.GetAccount(c)
	podcast, err := api.content.GetOwnedPodcast(c.Request.Context(), account.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return podcast, true
}

// issueUploadURL signs a write URL for a fresh blob path and returns both.
// The caller records the path on the entity once the upload completes.
func (api *API) issueUploadURL(c *gin.Context, path string) {
	url, err := api.media.UploadURL(c.Request.Context(), path)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.SignedURLsIssuedTotal.WithLabelValues("upload").Inc()
	c.JSON(http.StatusOK, gin.H{"path": path, "upload_url": url})
}

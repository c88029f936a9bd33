package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/berlinbruno/podpirate/internal/metrics"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// Public podcast search endpoint
func (api *API) publicListPodcasts(c *gin.Context) {
	page, size := pageParams(c)

	podcasts, total, err := api.discovery.Search(c.Request.Context(), c.Query("category"), c.Query("query"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(podcasts, total, page, size))
}

// Public podcast detail endpoint. Only published podcasts and their
// published episodes are visible.
func (api *API) publicGetPodcast(c *gin.Context) {
	podcast, err := api.discovery.GetPodcast(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// Public media read URL endpoint. Signs a short-lived download URL for a
// blob path found on a published podcast.
func (api *API) publicMediaURL(c *gin.Context) {
	podcast, err := api.discovery.GetPodcast(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	path := c.Query("path")
	if !podcastOwnsPath(podcast, path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown media path"})
		return
	}

	url, err := api.media.DownloadURL(c.Request.Context(), path)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.SignedURLsIssuedTotal.WithLabelValues("download").Inc()
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// podcastOwnsPath reports whether a blob path belongs to the podcast or
// one of its visible episodes. URLs are only signed for known paths.
func podcastOwnsPath(podcast *models.Podcast, path string) bool {
	if path == "" {
		return false
	}
	if path == podcast.CoverPath || path == podcast.BannerPath {
		return true
	}
	for i := range podcast.Episodes {
		if path == podcast.Episodes[i].ImagePath || path == podcast.Episodes[i].AudioPath {
			return true
		}
	}
	return false
}

// Public creator profile endpoint
func (api *API) publicGetCreator(c *gin.Context) {
	profile, err := api.discovery.CreatorProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Public creator podcast list endpoint
func (api *API) publicListCreatorPodcasts(c *gin.Context) {
	page, size := pageParams(c)

	podcasts, total, err := api.discovery.CreatorPodcasts(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(podcasts, total, page, size))
}

package content

import (
	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// requireOwner checks that the acting account owns the podcast. Every
// mutation on the current-user surface passes through here; the admin
// surface bypasses ownership on purpose.
func requireOwner(podcast *models.Podcast, accountID string) error {
	if podcast.AccountID != accountID {
		return apperr.ErrPodcastForbidden
	}
	return nil
}

// RequireRole is the explicit capability check invoked at the top of every
// role-guarded operation.
func RequireRole(account *models.Account, role models.Role) error {
	if account == nil || !account.HasRole(role) {
		return apperr.ErrAdminRequired
	}
	return nil
}

package apperr

// Failure catalog. Codes are stable and part of the API contract.
var (
	// Accounts
	ErrEmailExists        = New(KindConflict, "EMAIL_ALREADY_EXISTS", "Email already exists", "Try logging in or use a different email")
	ErrUsernameExists     = New(KindConflict, "USERNAME_ALREADY_EXISTS", "Username already exists", "Choose a different username")
	ErrAdminAlreadyExists = New(KindConflict, "ADMIN_ALREADY_EXISTS", "Admin already exists", "An admin account is already registered")
	ErrWeakPassword       = New(KindValidation, "WEAK_PASSWORD", "Password does not meet security requirements", "Password must be 8-20 characters, with lowercase, uppercase, number, and special character")
	ErrPasswordMismatch   = New(KindValidation, "PASSWORD_NOT_MATCH", "Passwords do not match", "Ensure both password fields match")
	ErrInvalidCredentials = New(KindValidation, "INVALID_CREDENTIALS", "Invalid email or password", "Check your login details")
	ErrAccountUnverified  = New(KindUnavailable, "ACCOUNT_NEED_VERIFICATION", "Account needs verification", "Verify your email to proceed")
	ErrAccountLocked      = New(KindUnavailable, "ACCOUNT_LOCKED", "Account is locked", "The account is locked. Contact support.")
	ErrAccountNotFound    = New(KindNotFound, "ACCOUNT_NOT_FOUND", "Account not found", "No account exists with the provided identifier")
	ErrAlreadyLocked      = New(KindConflict, "ACCOUNT_ALREADY_LOCKED", "Account is already locked", "This account is already locked")
	ErrNotLocked          = New(KindConflict, "ACCOUNT_NOT_LOCKED", "Account is not locked", "This account is not locked and cannot be unlocked")
	ErrAdminRequired      = New(KindForbidden, "ADMIN_REQUIRED", "Admin privileges required", "This operation is restricted to administrators")

	// Tokens
	ErrTokenInvalid       = New(KindToken, "TOKEN_INVALID", "The provided token is invalid or malformed", "Re-authenticate to obtain a new token")
	ErrTokenExpired       = New(KindToken, "TOKEN_EXPIRED", "The provided token has expired", "Re-authenticate to obtain a new token")
	ErrTokenKindMismatch  = New(KindToken, "TOKEN_KIND_MISMATCH", "Token kind does not match the expected kind", "Tokens are not interchangeable across kinds")
	ErrEmailTokenMismatch = New(KindToken, "EMAIL_TOKEN_MISMATCH", "Email mismatch with token", "Ensure the token corresponds to the provided email")

	// Podcasts
	ErrPodcastNotFound         = New(KindNotFound, "PODCAST_NOT_FOUND", "Podcast not found", "Podcast does not exist")
	ErrPodcastForbidden        = New(KindForbidden, "PODCAST_ACCESS_FORBIDDEN", "You don't have permission to access this podcast", "You are not the owner of this podcast")
	ErrPodcastAlreadyFlagged   = New(KindConflict, "PODCAST_ALREADY_FLAGGED", "Podcast is already flagged", "This podcast has already been flagged for review")
	ErrPodcastNotFlagged       = New(KindConflict, "PODCAST_NOT_FLAGGED", "Podcast is not flagged", "This podcast is not flagged and cannot be unflagged")
	ErrPodcastPublishForbidden = New(KindForbidden, "PODCAST_FORBIDDEN_TO_PUBLISH", "You don't have permission to publish this podcast", "Publishing is restricted due to content violations")
	ErrPodcastMissingAssets    = New(KindForbidden, "PODCAST_MISSING_ASSETS", "Podcast is missing required assets", "Upload a cover image before publishing")
	ErrPodcastMissingEpisode   = New(KindForbidden, "PODCAST_MISSING_EPISODE", "Podcast has no published episodes", "Publish at least one episode first")

	// Episodes
	ErrEpisodeNotFound     = New(KindNotFound, "EPISODE_NOT_FOUND", "Episode not found in the podcast", "No episode exists at the given index")
	ErrEpisodeMissingAudio = New(KindForbidden, "EPISODE_MISSING_AUDIO", "Episode audio is missing", "Upload an audio file before publishing the episode")

	// Media
	ErrFileUploadIncomplete = New(KindNotFound, "FILE_UPLOAD_INCOMPLETE", "The file upload is incomplete or the file is not available yet", "Re-upload the file and try again")
)

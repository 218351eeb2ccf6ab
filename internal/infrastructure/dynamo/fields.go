package dynamo

// Attribute names used in key, condition and update expressions.
const (
	fieldOTPID     = "id"
	fieldEmail     = "email"
	fieldCode      = "code"
	fieldExpiresAt = "expires_at"
	fieldIsUsed    = "is_used"
	fieldUsedAt    = "used_at"
	fieldPurgeAt   = "purge_at"

	fieldUserID = "user_id"

	fieldListingID  = "id"
	fieldAvailable  = "available"
	fieldIsVerified = "is_verified"
	fieldCategoryID = "category_id"

	indexEmail = "email-index"
)

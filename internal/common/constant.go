package common

const (
	// AuthorizationHeader carries "Bearer <token>" on metadata service calls.
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	ContentTypeJSON = "application/json"

	MaxImageSizeBytes    = int64(5 * 1024 * 1024)
	MaxDocumentSizeBytes = int64(10 * 1024 * 1024)

	DefaultMaxImageWidth = 1920
	DefaultImageQuality  = 80
)

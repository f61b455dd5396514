package constants

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	SessionIDKey ContextKey = "session_id"
	UserIDKey    ContextKey = "user_id"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderSessionID      = "X-Session-ID"
	HeaderUserID         = "X-User-ID" // 由上游 auth gateway 設定
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderAdminToken     = "X-Admin-Token"
	SessionCookieName    = "sid"
)

const (
	ServiceName        = "storefront"
	MaxSessionIDLength = 128
	MaxRequestBodySize = 1 << 20
)

type ENV string

const (
	Dev  ENV = "development"
	Stag ENV = "staging"
	Prod ENV = "production"
)

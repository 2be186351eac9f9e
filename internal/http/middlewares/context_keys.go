package middlewares

const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxUsername  = "auth.username"
	CtxSessionID = "auth.sessionID"
)

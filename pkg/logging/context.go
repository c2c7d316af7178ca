package logging

import (
	"context"

	"github.com/google/uuid"
)

func GetRequestIDFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(requestKey).(string)
	return s
}

func MakeContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestKey, requestID)
}

func MakeContextWithNewRequestID(ctx context.Context) context.Context {
	return MakeContextWithRequestID(ctx, uuid.New().String())
}

func GetFSTokenFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey).(string)
	return s
}

// MakeContextWithFSToken tags every log line of a call with the filesystem
// instance it runs against.
func MakeContextWithFSToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

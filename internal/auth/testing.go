package auth

import "context"

// SetUserIDForTest injects a user ID into the context for testing purposes.
func SetUserIDForTest(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// SetHandleForTest injects a handle into the context for testing purposes.
func SetHandleForTest(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, handleKey, handle)
}

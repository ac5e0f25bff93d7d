package models

import "context"

// Caller is the identity resolved for one request. A zero Caller is anonymous.
type Caller struct {
	UserID      int64
	Username    string
	IsAnonymous bool
	SessionID   string
	CSRFToken   string
}

func (c *Caller) Authenticated() bool {
	return c != nil && c.UserID > 0
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext never returns nil.
func CallerFromContext(ctx context.Context) *Caller {
	if caller, ok := ctx.Value(callerKey{}).(*Caller); ok && caller != nil {
		return caller
	}
	return &Caller{}
}

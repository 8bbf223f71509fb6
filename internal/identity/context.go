package identity

import "context"

type ctxKey string

const profileKey ctxKey = "portal.profile"

// WithProfile stores the authenticated profile in context.
func WithProfile(ctx context.Context, p Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// ProfileFromContext extracts the profile if present.
func ProfileFromContext(ctx context.Context) (Profile, bool) {
	val := ctx.Value(profileKey)
	if val == nil {
		return Profile{}, false
	}
	p, ok := val.(Profile)
	return p, ok && p.ID != ""
}

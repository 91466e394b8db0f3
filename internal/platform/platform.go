// Package platform abstracts the chat service the scoreboard lives in. The
// controller only ever talks to ChannelPoster, so tests run against a fake
// and the Discord binding stays at the edge.
package platform

import (
	"context"
	"errors"
)

// ErrPostGone reports that a post no longer exists or is no longer reachable
// (deleted externally, permission revoked). Callers treat it as "no post"
// rather than as a transient failure worth retrying.
var ErrPostGone = errors.New("post gone")

// ChannelPoster is the single-channel surface the scoreboard needs.
type ChannelPoster interface {
	// CreatePost publishes a new post and returns its platform-assigned id.
	CreatePost(ctx context.Context, text string) (string, error)
	// FetchPost returns the current text of the post with the given id.
	FetchPost(ctx context.Context, id string) (string, error)
	// EditPost replaces the full text of an existing post.
	EditPost(ctx context.Context, id, text string) error
	// DeletePost removes a post.
	DeletePost(ctx context.Context, id string) error
	// Announce sends a message nobody tracks or edits afterwards.
	Announce(ctx context.Context, text string) error
}

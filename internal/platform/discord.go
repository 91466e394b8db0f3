package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// DiscordChannel posts into one fixed Discord channel.
type DiscordChannel struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordChannel(session *discordgo.Session, channelID string) *DiscordChannel {
	return &DiscordChannel{session: session, channelID: channelID}
}

func (d *DiscordChannel) CreatePost(ctx context.Context, text string) (string, error) {
	msg, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create post: %w", mapErr(err))
	}
	return msg.ID, nil
}

func (d *DiscordChannel) FetchPost(ctx context.Context, id string) (string, error) {
	msg, err := d.session.ChannelMessage(d.channelID, id, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("fetch post %s: %w", id, mapErr(err))
	}
	return msg.Content, nil
}

func (d *DiscordChannel) EditPost(ctx context.Context, id, text string) error {
	if _, err := d.session.ChannelMessageEdit(d.channelID, id, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit post %s: %w", id, mapErr(err))
	}
	return nil
}

func (d *DiscordChannel) DeletePost(ctx context.Context, id string) error {
	if err := d.session.ChannelMessageDelete(d.channelID, id, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete post %s: %w", id, mapErr(err))
	}
	return nil
}

func (d *DiscordChannel) Announce(ctx context.Context, text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("announce: %w", mapErr(err))
	}
	return nil
}

// mapErr folds Discord's "message is unreachable" REST answers into
// ErrPostGone; everything else stays transient.
func mapErr(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusNotFound, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrPostGone, err)
		}
	}
	return err
}

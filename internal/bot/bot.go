// Package bot wires the Discord gateway to the check-in pipeline: messages
// from roster members in the status channel are treated as check-ins.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"standup-bot/internal/logger"
	"standup-bot/internal/model"
	"standup-bot/internal/service"
)

type Bot struct {
	session   *discordgo.Session
	channelID string
	members   *service.MemberService
	checkin   *service.CheckinService
}

func New(session *discordgo.Session, channelID string, members *service.MemberService, checkin *service.CheckinService) *Bot {
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{session: session, channelID: channelID, members: members, checkin: checkin}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessage)
	return b
}

func (b *Bot) Session() *discordgo.Session { return b.session }

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error { return b.session.Close() }

func (b *Bot) onReady(_ *discordgo.Session, _ *discordgo.Ready) {
	logger.Info("bot.ready", "channel", b.channelID)
}

func (b *Bot) onMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.ChannelID != b.channelID {
		return
	}
	discordID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}
	member, ok := b.members.Find(discordID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := b.checkin.ProcessStatus(ctx, member, m.Content); err != nil {
		logger.Error("bot.checkin_failed", "member", member.Name, "err", err)
	}
}

// PromptStatus asks one member for their update. Used by the per-member
// scheduled jobs.
func (b *Bot) PromptStatus(member model.TeamMember) {
	text := fmt.Sprintf("<@%d> time for a status update! Please share what you've been working on.", member.DiscordID)
	if _, err := b.session.ChannelMessageSend(b.channelID, text); err != nil {
		logger.Warn("bot.prompt_failed", "member", member.Name, "err", err)
	}
}

package discord

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
)

const embedColor = 0x2b2d31

// messenger is the part of the disgo REST API the relay needs.
type messenger interface {
	CreateDMChannel(userID snowflake.ID, opts ...rest.RequestOpt) (*discord.DMChannel, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// DMNotifier relays notifications to the recipient's Discord DMs. Party ids
// are Discord user snowflakes.
type DMNotifier struct {
	rest messenger
}

var _ notifications.Sink = (*DMNotifier)(nil)

func NewDMNotifier(token string) *DMNotifier {
	return &DMNotifier{rest: rest.New(rest.NewClient(token))}
}

func (d *DMNotifier) Deliver(ctx context.Context, n notifications.Notification) error {
	userID, err := snowflake.Parse(n.RecipientID)
	if err != nil {
		return fmt.Errorf("recipient %q is not a discord user id: %w", n.RecipientID, err)
	}

	dmChannel, err := d.rest.CreateDMChannel(userID, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to create DM channel with %s: %w", n.RecipientID, err)
	}

	_, err = d.rest.CreateMessage(dmChannel.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{buildEmbed(n)},
	}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to send DM to %s: %w", n.RecipientID, err)
	}
	return nil
}

func buildEmbed(n notifications.Notification) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle(n.Title).
		SetDescription(n.Message).
		SetColor(embedColor).
		SetFooter(string(n.Kind), "").
		SetTimestamp(n.CreatedAt)

	if tradeID, ok := n.Metadata["trade_id"].(string); ok && tradeID != "" {
		embed.AddField("Trade", fmt.Sprintf("`%s`", tradeID), true)
	}
	if initiator, ok := n.Metadata["initiator_id"].(string); ok && initiator != "" && initiator != n.RecipientID {
		embed.AddField("From", fmt.Sprintf("<@%s>", initiator), true)
	}
	return embed.Build()
}

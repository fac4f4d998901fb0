package event

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// ChannelMessenger is the part of *discordgo.Session the notifier uses.
type ChannelMessenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts a one-line notice for every transaction held for review.
type DiscordNotifier struct {
	session   ChannelMessenger
	channelID string
}

func NewDiscordNotifier(session ChannelMessenger, channelID string) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID}
}

func (d *DiscordNotifier) Handle(ctx context.Context, event entity.TransactionEvent) error {
	tx := event.Transaction
	if !tx.Verdict.NeedsReview() {
		return nil
	}

	if _, err := d.session.ChannelMessageSend(d.channelID, reviewNotice(tx), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}

	return nil
}

func reviewNotice(tx entity.Transaction) string {
	score := "n/a"
	if tx.RiskScore != nil {
		score = strconv.FormatFloat(*tx.RiskScore, 'f', 2, 64)
	}

	return fmt.Sprintf("[%s] transaction %s: %s -> %s, amount %s, risk score %s",
		tx.Verdict, tx.ID, orDash(tx.SourceAccount), orDash(tx.TargetAccount), tx.Amount.String(), score)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

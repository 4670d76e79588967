package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/intent"
	"github.com/dejobratic/tdsbot/internal/storefront/metrics"
	"github.com/dejobratic/tdsbot/internal/storefront/notify"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
)

// EventHandler turns one inbound event into the responses to deliver.
type EventHandler interface {
	Handle(ctx context.Context, event domain.Event) []domain.Response
}

// Settings are the store facts the conversation quotes.
type Settings struct {
	StoreName     string
	SupportNumber string
	PaymentHandle string
	// AdminChatID receives order alerts. Empty disables them.
	AdminChatID string
}

// ConversationOption customises a Conversation.
type ConversationOption func(*Conversation)

// WithResponder answers free text no rule recognised.
func WithResponder(r ports.Responder) ConversationOption {
	return func(c *Conversation) { c.responder = r }
}

// WithIntentMetrics counts resolved intents.
func WithIntentMetrics(m *metrics.Metrics) ConversationOption {
	return func(c *Conversation) { c.metrics = m }
}

// Conversation routes commands, button taps, free text and media.
type Conversation struct {
	flow       *PurchaseFlow
	resolver   *intent.Resolver
	dispatcher *notify.Dispatcher
	responder  ports.Responder
	settings   Settings
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewConversation wires required dependencies.
func NewConversation(
	flow *PurchaseFlow,
	resolver *intent.Resolver,
	dispatcher *notify.Dispatcher,
	settings Settings,
	logger *slog.Logger,
	opts ...ConversationOption,
) *Conversation {
	c := &Conversation{
		flow:       flow,
		resolver:   resolver,
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle never fails: problems are logged and answered with guidance.
// Responses without a recipient go to the event's user.
func (c *Conversation) Handle(ctx context.Context, event domain.Event) []domain.Response {
	var responses []domain.Response
	switch event.Kind {
	case domain.EventCommand:
		responses = c.handleCommand(ctx, event)
	case domain.EventCallback:
		responses = c.handleAction(ctx, event.UserID, event.Action)
	case domain.EventText:
		responses = c.handleText(ctx, event)
	case domain.EventMedia:
		responses = c.handleMedia(ctx, event)
	default:
		c.logger.WarnContext(ctx, "ignoring unknown event kind", "kind", event.Kind)
	}

	for i := range responses {
		if responses[i].Recipient == "" {
			responses[i].Recipient = event.UserID
		}
	}
	return responses
}

func (c *Conversation) handleCommand(ctx context.Context, event domain.Event) []domain.Response {
	now := c.flow.now()
	command := strings.ToLower(strings.TrimPrefix(event.Command, "/"))

	switch command {
	case "start":
		return []domain.Response{c.welcome()}
	case "help":
		return []domain.Response{c.help()}
	case "products":
		return []domain.Response{c.productList(now)}
	case "sunday":
		return []domain.Response{c.discountStatus(now)}
	case "whycheap":
		return []domain.Response{c.whyCheap()}
	case "upload":
		return c.requestUpload(ctx, event.UserID)
	case "cancel":
		return c.cancel(ctx, event.UserID)
	}

	if key, ok := strings.CutPrefix(command, "buy_"); ok {
		return c.selectProduct(ctx, event.UserID, key, false)
	}
	if key, ok := strings.CutPrefix(command, "sunday_"); ok {
		return c.withProduct(key, func(p domain.Product) domain.Response { return c.discountCard(p, now) })
	}
	if _, err := c.flow.catalog.Get(command); err == nil {
		return c.withProduct(command, func(p domain.Product) domain.Response { return c.productCard(p, now) })
	}
	return []domain.Response{unknownResponse}
}

func (c *Conversation) handleAction(ctx context.Context, userID string, action domain.Action) []domain.Response {
	if err := action.Validate(); err != nil {
		c.logger.WarnContext(ctx, "ignoring invalid action", "error", err, "user_id", userID)
		return nil
	}

	now := c.flow.now()
	switch action.Kind {
	case domain.ActionBuy:
		return c.selectProduct(ctx, userID, action.ProductKey, action.ForceDiscount)
	case domain.ActionDiscountOffer:
		return c.withProduct(action.ProductKey, func(p domain.Product) domain.Response { return c.discountCard(p, now) })
	case domain.ActionCheckDiscount:
		return []domain.Response{c.discountStatusShort(now)}
	case domain.ActionViewProducts:
		return []domain.Response{c.productList(now)}
	case domain.ActionUploadNow:
		return c.requestUpload(ctx, userID)
	}
	return nil
}

func (c *Conversation) handleText(ctx context.Context, event domain.Event) []domain.Response {
	now := c.flow.now()
	resolved := c.resolver.Resolve(event.Text, now)

	label := string(resolved.Kind)
	if resolved.Kind == intent.KindQuick {
		label = string(resolved.Quick)
	}
	if c.metrics != nil {
		c.metrics.RecordIntent(ctx, label)
	}
	c.logger.DebugContext(ctx, "resolved intent", "user_id", event.UserID, "intent", label, "product_key", resolved.ProductKey)

	switch resolved.Kind {
	case intent.KindQuick:
		return []domain.Response{{Text: resolved.Reply, Buttons: c.standardButtons()}}
	case intent.KindProduct:
		return c.withProduct(resolved.ProductKey, func(p domain.Product) domain.Response { return c.productCard(p, now) })
	case intent.KindPurchase:
		if resolved.ProductKey == "" {
			return []domain.Response{c.choosePrompt()}
		}
		return c.selectProduct(ctx, event.UserID, resolved.ProductKey, false)
	default:
		return []domain.Response{{Text: c.fallbackReply(ctx, event), Buttons: c.standardButtons()}}
	}
}

func (c *Conversation) fallbackReply(ctx context.Context, event domain.Event) string {
	if c.responder == nil {
		return c.fallbackText()
	}
	reply, err := c.responder.Respond(ctx, event.UserID, event.Text)
	if err != nil || strings.TrimSpace(reply) == "" {
		c.logger.WarnContext(ctx, "fallback responder unavailable", "error", err, "user_id", event.UserID)
		return c.fallbackText()
	}
	return reply
}

func (c *Conversation) handleMedia(ctx context.Context, event domain.Event) []domain.Response {
	if event.Media == nil {
		return nil
	}

	order, err := c.flow.SubmitProof(ctx, domain.PaymentProof{
		UserID:      event.UserID,
		Handle:      event.Handle,
		Media:       *event.Media,
		SubmittedAt: event.ReceivedAt,
	})
	if errors.Is(err, domain.ErrNoActiveSession) {
		c.logger.DebugContext(ctx, "ignoring media outside awaiting_proof", "user_id", event.UserID)
		return nil
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to accept payment proof", "error", err, "user_id", event.UserID)
		return []domain.Response{failureResponse}
	}

	c.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"product_key", order.ProductKey,
		"amount", order.Amount.String(),
	)

	responses := []domain.Response{
		{
			Text:     c.dispatcher.FormatConfirmation(order),
			Markdown: true,
			Buttons: [][]domain.Button{{
				domain.LinkButton("📱 Open WhatsApp for Activation", c.dispatcher.ActivationLink(order, c.settings.SupportNumber)),
			}},
		},
		{Text: c.dispatcher.FormatReceipt(order), Markdown: true},
	}
	if c.settings.AdminChatID != "" {
		media := *event.Media
		responses = append(responses, domain.Response{
			Recipient: c.settings.AdminChatID,
			Text:      c.dispatcher.FormatAdminAlert(order, event.Handle),
			Markdown:  true,
			Media:     &media,
		})
	}
	return responses
}

func (c *Conversation) selectProduct(ctx context.Context, userID, productKey string, forceDiscount bool) []domain.Response {
	session, product, err := c.flow.Select(ctx, userID, productKey, forceDiscount)
	if errors.Is(err, domain.ErrProductNotFound) {
		return []domain.Response{notFoundResponse}
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to start purchase", "error", err, "user_id", userID, "product_key", productKey)
		return []domain.Response{failureResponse}
	}

	c.logger.InfoContext(ctx, "purchase started",
		"user_id", userID,
		"product_key", product.Key,
		"amount", session.Quote.Amount.String(),
		"discounted", session.Quote.Discounted,
	)
	return []domain.Response{c.purchaseInstructions(session, product)}
}

func (c *Conversation) requestUpload(ctx context.Context, userID string) []domain.Response {
	session, err := c.flow.RequestUpload(ctx, userID)
	if err == nil {
		return []domain.Response{uploadPrompt(session)}
	}
	if !errors.Is(err, domain.ErrNoActiveSession) {
		c.logger.ErrorContext(ctx, "failed to request upload", "error", err, "user_id", userID)
		return []domain.Response{failureResponse}
	}

	// A repeated request while already awaiting proof repeats the prompt.
	if current, err := c.flow.Inspect(ctx, userID); err == nil && current.State == domain.StateAwaitingProof {
		return []domain.Response{uploadPrompt(current)}
	}
	return []domain.Response{selectFirstResponse}
}

func (c *Conversation) cancel(ctx context.Context, userID string) []domain.Response {
	canceled, err := c.flow.Cancel(ctx, userID)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to cancel purchase", "error", err, "user_id", userID)
		return []domain.Response{failureResponse}
	}
	if !canceled {
		return []domain.Response{nothingToCancel}
	}
	return []domain.Response{canceledResponse}
}

func (c *Conversation) withProduct(key string, render func(domain.Product) domain.Response) []domain.Response {
	product, err := c.flow.catalog.Get(key)
	if err != nil {
		return []domain.Response{notFoundResponse}
	}
	return []domain.Response{render(product)}
}

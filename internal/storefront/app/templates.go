package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/notify"
	"github.com/shopspring/decimal"
)

func (c *Conversation) supportButton() domain.Button {
	return domain.LinkButton("📱 Contact Support", c.dispatcher.SupportLink())
}

func (c *Conversation) standardButtons() [][]domain.Button {
	return [][]domain.Button{
		{
			domain.CallbackButton("🛒 View Products", domain.Action{Kind: domain.ActionViewProducts}),
			domain.CallbackButton("🎁 Sunday Offers", domain.Action{Kind: domain.ActionCheckDiscount}),
		},
		{c.supportButton()},
	}
}

func (c *Conversation) welcome() domain.Response {
	text := fmt.Sprintf(`🤖 *Welcome to %s!* 🛍️

✨ *Premium Subscriptions at Unbeatable Prices*

🎯 *Quick Actions:*
🛒 /products - View all products
🎁 /sunday - Sunday offers
💰 /whycheap - Why prices are low
🆘 /help - Full guide

💡 *Just type what you need!*
• "Netflix price?"
• "I want to buy YouTube"
• "Sunday offers?"
• "How to pay?"

*We're here to help you save!* 😊`, c.settings.StoreName)
	return domain.Response{Text: text, Markdown: true, Buttons: c.standardButtons()}
}

func (c *Conversation) help() domain.Response {
	handle := notify.EscapeMarkdown(c.settings.PaymentHandle)
	text := fmt.Sprintf(`🆘 *%s Bot Guide*

🛒 *HOW TO BUY:*
1. Browse products: /products
2. Select product: /netflix, /youtube, etc
3. Click "Buy Now" in product message
4. Pay via UPI (%s)
5. Upload payment screenshot
6. Get WhatsApp link for activation

🎁 *SUNDAY OFFERS:*
• Every Sunday: discounted prices on all products
• Check: /sunday
• Auto-applied on Sundays

💰 *PAYMENT:*
• UPI ID: %s
• Screenshot required for verification
• Changed your mind? /cancel

⏱️ *ACTIVATION:*
• Within 15-30 minutes
• WhatsApp support 24/7
• 7-day warranty

*Need help? Just type your question!*`, c.settings.StoreName, handle, handle)
	return domain.Response{Text: text, Markdown: true}
}

func (c *Conversation) productList(now time.Time) domain.Response {
	var b strings.Builder
	b.WriteString("🛒 *All Products*\n")
	if c.flow.pricing.IsDiscountDay(now) {
		b.WriteString("🎁 *SUNDAY OFFERS ACTIVE!*\n\n")
	} else {
		fmt.Fprintf(&b, "⏳ *Sunday in %d days*\n\n", c.flow.pricing.DaysUntilDiscountDay(now))
	}

	for _, p := range c.flow.catalog.List() {
		quote := c.flow.pricing.Quote(p, now)
		fmt.Fprintf(&b, "🎯 *%s*\n💰 %s\n📝 /%s\n🎁 /sunday\\_%s\n\n", notify.EscapeMarkdown(p.Name), notify.EscapeMarkdown(quote.Label), p.Key, p.Key)
	}
	b.WriteString("💡 *Why so cheap?* /whycheap\n🛍️ *Ready to buy?* Select a product!")

	return domain.Response{
		Text:     b.String(),
		Markdown: true,
		Buttons: [][]domain.Button{
			{domain.CallbackButton("🎁 Check Sunday Offers", domain.Action{Kind: domain.ActionCheckDiscount})},
			{c.supportButton()},
		},
	}
}

func (c *Conversation) discountStatus(now time.Time) domain.Response {
	products := c.flow.catalog.List()

	if !c.flow.pricing.IsDiscountDay(now) {
		left := c.flow.pricing.UntilNextWindow(now)
		hours := int(left.Hours())

		var b strings.Builder
		b.WriteString("⏳ *Sunday Offers Locked*\n\n")
		b.WriteString("📅 *Today is not Sunday*\n🎁 *Sunday Offers unlock every Sunday*\n\n")
		fmt.Fprintf(&b, "⏰ *Time until next Sunday:*\n%d days, %d hours\n\n", hours/24, hours%24)
		b.WriteString("*Normal Prices (No discount):*\n")
		for _, p := range products {
			fmt.Fprintf(&b, "• %s: %s\n", notify.EscapeMarkdown(p.Name), notify.EscapeMarkdown(p.NormalPrice.Label))
		}
		b.WriteString("\n*View products:* /products")
		return domain.Response{Text: b.String(), Markdown: true}
	}

	var (
		b     strings.Builder
		total decimal.Decimal
		row   []domain.Button
		rows  [][]domain.Button
	)
	b.WriteString("🎉 *SUNDAY OFFERS ACTIVATED!* 🎉\n\n")
	b.WriteString("⏰ *Time:* 12:00 AM to 11:59 PM IST\n\n*TODAY'S PRICES:*\n")
	for _, p := range products {
		savings := p.Savings()
		total = total.Add(savings)
		fmt.Fprintf(&b, "• %s: %s (Save ₹%s)\n", notify.EscapeMarkdown(p.Name), notify.EscapeMarkdown(p.DiscountPrice.Label), savings.String())

		row = append(row, domain.CallbackButton(
			fmt.Sprintf("🛒 Buy %s (₹%s)", p.Name, p.DiscountPrice.Amount.String()),
			domain.BuyAction(p.Key, true),
		))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	fmt.Fprintf(&b, "\n*Total Savings Today:* ₹%s\n\n*Hurry! Offer ends tonight!*\n\n*View products:* /products", total.String())

	return domain.Response{Text: b.String(), Markdown: true, Buttons: rows}
}

func (c *Conversation) discountStatusShort(now time.Time) domain.Response {
	if c.flow.pricing.IsDiscountDay(now) {
		return domain.Response{Text: "🎉 Yes! Sunday offers are ACTIVE! Use /sunday to see prices."}
	}
	return domain.Response{Text: "⏳ Sunday offers are not active. Check /sunday for countdown."}
}

func (c *Conversation) whyCheap() domain.Response {
	text := `💰 *Why Our Prices Are The Best:*

1. *Bulk Family Plans* - We share premium family plans among multiple users
2. *Regional Pricing* - Leverage price differences between countries
3. *Direct Partnerships* - Direct deals with service providers
4. *No Middlemen* - Eliminate commission layers
5. *Volume Discounts* - Large customer base = better rates

🛡️ *100% Genuine Guarantee:*
• Official subscriptions only
• 7-day replacement warranty
• 24/7 WhatsApp support

*Ready to save?* /products`
	return domain.Response{Text: text, Markdown: true}
}

// writeProductHeader escapes every catalog field it renders.
func writeProductHeader(b *strings.Builder, p domain.Product) {
	fmt.Fprintf(b, "🎯 *%s*\n\n%s\n\n", notify.EscapeMarkdown(p.Name), notify.EscapeMarkdown(p.Description))
	if len(p.Features) > 0 {
		b.WriteString("✨ *Features:*\n")
		for _, f := range p.Features {
			fmt.Fprintf(b, "• %s\n", notify.EscapeMarkdown(f))
		}
		b.WriteString("\n")
	}
}

func writeProductFooter(b *strings.Builder, p domain.Product) {
	if p.Rationale != "" {
		fmt.Fprintf(b, "\n\n💡 *Why it's cheap:*\n%s", notify.EscapeMarkdown(p.Rationale))
	}
	fmt.Fprintf(b, "\n\n📱 *UPI ID:* %s\n\n🛒 *Buy Now:* /buy\\_%s\n🎁 *Sunday Offer:* /sunday\\_%s",
		notify.EscapeMarkdown(p.PaymentHandle), p.Key, p.Key)
}

func (c *Conversation) productCard(p domain.Product, now time.Time) domain.Response {
	var b strings.Builder
	writeProductHeader(&b, p)
	fmt.Fprintf(&b, "💰 *Normal Price:* %s", notify.EscapeMarkdown(p.NormalPrice.Label))
	writeProductFooter(&b, p)

	quote := c.flow.pricing.Quote(p, now)
	return domain.Response{
		Text:     b.String(),
		Markdown: true,
		Buttons: [][]domain.Button{
			{domain.CallbackButton(fmt.Sprintf("🛒 Buy Now (%s)", quote.Label), domain.BuyAction(p.Key, false))},
			{
				domain.CallbackButton("🎁 Sunday Offer", domain.Action{Kind: domain.ActionDiscountOffer, ProductKey: p.Key}),
				c.supportButton(),
			},
		},
	}
}

func (c *Conversation) discountCard(p domain.Product, now time.Time) domain.Response {
	var b strings.Builder
	writeProductHeader(&b, p)

	active := c.flow.pricing.IsDiscountDay(now)
	if active {
		fmt.Fprintf(&b, "🎁 *SUNDAY OFFER ACTIVATED!*\n💰 *Sunday Price:* %s\n📉 *Discount:* %s", notify.EscapeMarkdown(p.DiscountPrice.Label), notify.EscapeMarkdown(p.DiscountLabel))
	} else {
		next := c.flow.pricing.NextDiscountWindowStart(now)
		fmt.Fprintf(&b, "⏳ *Sunday Offer Locked*\n🔓 Unlocks on Sunday only\n📅 Next Sunday: %s\n💰 *Current Price:* %s",
			next.Format("02 Jan 2006"), notify.EscapeMarkdown(p.NormalPrice.Label))
	}
	writeProductFooter(&b, p)

	resp := domain.Response{Text: b.String(), Markdown: true}
	if active {
		resp.Buttons = [][]domain.Button{{
			domain.CallbackButton(fmt.Sprintf("🛒 Buy Now (%s)", p.DiscountPrice.Label), domain.BuyAction(p.Key, true)),
		}}
	}
	return resp
}

func (c *Conversation) purchaseInstructions(s domain.Session, p domain.Product) domain.Response {
	amount := s.Quote.Amount.String()
	handle := notify.EscapeMarkdown(p.PaymentHandle)

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *Purchase: %s*\n\n💰 *Price:* %s\n", notify.EscapeMarkdown(p.Name), notify.EscapeMarkdown(s.Quote.Label))
	if s.Quote.Discounted {
		b.WriteString("🎁 *Sunday Discount Applied!*\n")
	}
	fmt.Fprintf(&b, "\n📋 *Process:*\n1. Pay ₹%s via UPI\n2. Upload payment screenshot\n3. Get WhatsApp link\n4. Activation in 15-30 mins\n\n", amount)
	fmt.Fprintf(&b, "💳 *Payment Details:*\nUPI ID: %s\nAmount: ₹%s\n\n", handle, amount)
	fmt.Fprintf(&b, "*Payment Instructions:*\n1. Open GPay/PhonePe/Paytm\n2. Send ₹%s to %s\n3. Take screenshot of \"Payment Successful\"\n4. Send screenshot here\n\n", amount, handle)
	b.WriteString("*After payment, tap the button below or type /upload*")

	return domain.Response{
		Text:     b.String(),
		Markdown: true,
		Buttons: [][]domain.Button{{
			domain.CallbackButton("📸 I've Paid - Upload Screenshot", domain.Action{Kind: domain.ActionUploadNow}),
		}},
	}
}

func uploadPrompt(s domain.Session) domain.Response {
	text := fmt.Sprintf("📸 *Upload Payment Proof*\n\nPlease send screenshot of:\n• \"Payment Successful\" screen\n• Transaction ID visible\n• Amount: ₹%s\n\n*Send the image now...*",
		s.Quote.Amount.String())
	return domain.Response{Text: text, Markdown: true}
}

func (c *Conversation) choosePrompt() domain.Response {
	var rows [][]domain.Button
	for _, p := range c.flow.catalog.List() {
		rows = append(rows, []domain.Button{domain.CallbackButton("🛒 "+p.Name, domain.BuyAction(p.Key, false))})
	}
	return domain.Response{
		Text:    "🛒 Great! Which product would you like to buy? Pick one below or tell me the product name.",
		Buttons: rows,
	}
}

func (c *Conversation) fallbackText() string {
	return fmt.Sprintf("🤖 I'm the %s bot! I help you buy premium subscriptions at amazing prices. 😊\n\nTry:\n• /products - View all products\n• /sunday - Check Sunday offers\n• /help - Get assistance\n\nOr ask about specific products like \"Netflix price?\"",
		c.settings.StoreName)
}

var (
	selectFirstResponse = domain.Response{Text: "❌ Please select a product first!\n\nUse /products to view products and buy one."}
	notFoundResponse    = domain.Response{Text: "❌ Product not found. Use /products to see available products."}
	unknownResponse     = domain.Response{Text: "❓ I don't know that command. Use /help to see what I can do."}
	canceledResponse    = domain.Response{Text: "🗑️ Your purchase was canceled. Use /products whenever you're ready."}
	nothingToCancel     = domain.Response{Text: "👌 There is nothing to cancel."}
	failureResponse     = domain.Response{Text: "⚠️ Something went wrong on our side. Please try again in a moment."}
)

// Package model defines domain types used by the bot.
package model

// Currency is the ISO-like code for Telegram Stars.
const Currency = "XTR"

// ParseModeMarkdown selects the platform's legacy Markdown rendering.
const ParseModeMarkdown = "Markdown"

// Item is a purchasable digital good. Price is in whole Stars.
type Item struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Price       int    `yaml:"price" json:"price"`
	Secret      string `yaml:"secret" json:"-"`
}

// Option is one selectable button: a label and the opaque data echoed
// back by the platform when it is pressed.
type Option struct {
	Label string
	Data  string
}

// Message is an outbound chat message.
type Message struct {
	Text      string
	ParseMode string
	// Options render as a one-button-per-row inline keyboard.
	Options []Option
}

// PriceLine is a labeled portion of an invoice total.
type PriceLine struct {
	Label  string
	Amount int
}

// Invoice is a payment request for a single item.
type Invoice struct {
	Title          string
	Description    string
	Payload        string
	Currency       string
	Prices         []PriceLine
	StartParameter string
}

// UpdateKind tells which fields of an Update are meaningful.
type UpdateKind int

const (
	KindUnknown UpdateKind = iota
	KindCommand
	KindCallback
	KindPreCheckout
	KindSuccessfulPayment
)

func (k UpdateKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindCallback:
		return "callback"
	case KindPreCheckout:
		return "pre_checkout"
	case KindSuccessfulPayment:
		return "successful_payment"
	default:
		return "unknown"
	}
}

// Update is an inbound platform event reduced to what the shop handlers
// need.
type Update struct {
	// ID is a correlation id assigned on intake.
	ID     string
	Kind   UpdateKind
	UserID int64
	ChatID int64

	// KindCommand
	Command string
	Args    []string

	// KindCallback: CallbackID identifies the query, Data is the item id.
	CallbackID string
	Data       string

	// KindPreCheckout
	QueryID string

	// KindPreCheckout and KindSuccessfulPayment
	Payload  string
	ChargeID string
}

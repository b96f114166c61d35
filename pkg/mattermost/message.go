package mattermost

// Message is an outbound post: Markdown text plus optional attachments whose
// action buttons carry a callback URL and a context map. Every button embeds
// all identifiers its handler needs; the bot keeps no session state between
// requests.
type Message struct {
	Text        string         `json:"text,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
}

// Attachment decorates a message with secondary text and interactive actions.
type Attachment struct {
	Fallback string   `json:"fallback,omitempty"`
	Color    string   `json:"color,omitempty"`
	Pretext  string   `json:"pretext,omitempty"`
	Text     string   `json:"text,omitempty"`
	Title    string   `json:"title,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}

// Action is an interactive button wired to an integration URL.
type Action struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Style       string      `json:"style,omitempty"`
	Integration Integration `json:"integration"`
}

// Integration is the callback target and context of an action.
type Integration struct {
	URL     string         `json:"url"`
	Context map[string]any `json:"context"`
}

// MessageBuilder assembles an outbound Message.
type MessageBuilder struct {
	message Message
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{}
}

func (b *MessageBuilder) Text(text string) *MessageBuilder {
	b.message.Text = text
	return b
}

func (b *MessageBuilder) Prop(key string, value any) *MessageBuilder {
	if b.message.Props == nil {
		b.message.Props = map[string]any{}
	}
	b.message.Props[key] = value
	return b
}

// Attachment appends an attachment built by fn.
func (b *MessageBuilder) Attachment(fn func(*AttachmentBuilder)) *MessageBuilder {
	builder := &AttachmentBuilder{}
	fn(builder)
	b.message.Attachments = append(b.message.Attachments, builder.Build())
	return b
}

func (b *MessageBuilder) Build() Message {
	built := b.message
	built.Attachments = append([]Attachment(nil), b.message.Attachments...)
	return built
}

// AttachmentBuilder assembles a single attachment.
type AttachmentBuilder struct {
	attachment Attachment
}

func (b *AttachmentBuilder) Pretext(text string) *AttachmentBuilder {
	b.attachment.Pretext = text
	return b
}

func (b *AttachmentBuilder) Text(text string) *AttachmentBuilder {
	b.attachment.Text = text
	return b
}

func (b *AttachmentBuilder) Color(hex string) *AttachmentBuilder {
	b.attachment.Color = hex
	return b
}

// Button appends a button action targeting url with the given context.
func (b *AttachmentBuilder) Button(id, name, url string, context map[string]any) *AttachmentBuilder {
	b.attachment.Actions = append(b.attachment.Actions, Action{
		ID:   id,
		Name: name,
		Type: "button",
		Integration: Integration{
			URL:     url,
			Context: context,
		},
	})
	return b
}

func (b *AttachmentBuilder) Build() Attachment {
	return b.attachment
}

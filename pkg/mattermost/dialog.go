package mattermost

// Dialog is an interactive form definition sent to Mattermost for user input.
type Dialog struct {
	CallbackID       string          `json:"callback_id"`
	Title            string          `json:"title"`
	IntroductionText string          `json:"introduction_text,omitempty"`
	Elements         []DialogElement `json:"elements"`
	SubmitLabel      string          `json:"submit_label,omitempty"`
	NotifyOnCancel   bool            `json:"notify_on_cancel"`
	State            string          `json:"state,omitempty"`
}

// DialogElement is one typed form field. Type is "text", "select", "radio" or
// "bool"; Subtype refines text inputs (email, number, ...).
type DialogElement struct {
	DisplayName string         `json:"display_name"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Subtype     string         `json:"subtype,omitempty"`
	Optional    bool           `json:"optional"`
	HelpText    string         `json:"help_text,omitempty"`
	Default     string         `json:"default,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	DataSource  string         `json:"data_source,omitempty"`
}

// SelectOption is one choice in a select or radio element.
type SelectOption struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// DialogBuilder assembles a Dialog field by field.
type DialogBuilder struct {
	dialog Dialog
}

// NewDialog starts a dialog with the given callback id and title.
func NewDialog(callbackID, title string) *DialogBuilder {
	return &DialogBuilder{dialog: Dialog{
		CallbackID: callbackID,
		Title:      title,
	}}
}

func (b *DialogBuilder) IntroductionText(text string) *DialogBuilder {
	b.dialog.IntroductionText = text
	return b
}

func (b *DialogBuilder) SubmitLabel(label string) *DialogBuilder {
	b.dialog.SubmitLabel = label
	return b
}

func (b *DialogBuilder) NotifyOnCancel(notify bool) *DialogBuilder {
	b.dialog.NotifyOnCancel = notify
	return b
}

// State attaches the opaque continuation token.
func (b *DialogBuilder) State(state DialogState) *DialogBuilder {
	b.dialog.State = state.Encode()
	return b
}

func (b *DialogBuilder) AddElement(element DialogElement) *DialogBuilder {
	b.dialog.Elements = append(b.dialog.Elements, element)
	return b
}

// TextElement appends a text input. Subtype may be empty, "email", "number",
// "password", "tel" or "url".
func (b *DialogBuilder) TextElement(element DialogElement) *DialogBuilder {
	element.Type = "text"
	return b.AddElement(element)
}

func (b *DialogBuilder) SelectElement(element DialogElement) *DialogBuilder {
	element.Type = "select"
	return b.AddElement(element)
}

func (b *DialogBuilder) BoolElement(element DialogElement) *DialogBuilder {
	element.Type = "bool"
	return b.AddElement(element)
}

func (b *DialogBuilder) Build() Dialog {
	built := b.dialog
	built.Elements = append([]DialogElement(nil), b.dialog.Elements...)
	return built
}

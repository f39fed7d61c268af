package widget

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/ettle/strcase"
	"github.com/frahmantamala/chathub/internal"
)

const (
	PositionBottomRight = "bottom-right"
	PositionBottomLeft  = "bottom-left"
	PositionTopRight    = "top-right"
	PositionTopLeft     = "top-left"
)

// Settings is the whole appearance and behavior configuration of a tenant's widget.
type Settings struct {
	PrimaryColor     string `json:"primary_color"`
	SecondaryColor   string `json:"secondary_color"`
	TextColor        string `json:"text_color"`
	BackgroundColor  string `json:"background_color"`
	Position         string `json:"position"`
	Title            string `json:"title"`
	Subtitle         string `json:"subtitle"`
	WelcomeMessage   string `json:"welcome_message"`
	Placeholder      string `json:"placeholder"`
	AvatarURL        string `json:"avatar_url"`
	ShowAvatar       bool   `json:"show_avatar"`
	ShowTimestamp    bool   `json:"show_timestamp"`
	EnableSound      bool   `json:"enable_sound"`
	EnableFileUpload bool   `json:"enable_file_upload"`
	EnableEmoji      bool   `json:"enable_emoji"`
	AutoOpen         bool   `json:"auto_open"`
	AutoOpenDelay    int    `json:"auto_open_delay"`
	ShowBranding     bool   `json:"show_branding"`
	CollectEmail     bool   `json:"collect_email"`
	OfflineMessage   string `json:"offline_message"`
	BorderRadius     int    `json:"border_radius"`
	FontFamily       string `json:"font_family"`
}

// View is Settings plus where they came from.
type View struct {
	TenantID  string     `json:"tenant_id"`
	Settings  Settings   `json:"settings"`
	IsDefault bool       `json:"is_default"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type EmbedCode struct {
	TenantID  string `json:"tenant_id"`
	ScriptURL string `json:"script_url"`
	Code      string `json:"code"`
}

var (
	ErrInvalidSettings = internal.NewValidationError("widget settings are invalid", internal.ErrCodeValidationFailed)
	ErrInvalidImport   = internal.NewUnprocessableError("imported widget settings are invalid", internal.ErrCodeInvalidImport)
	ErrMalformedImport = internal.NewUnprocessableError("imported file is not valid JSON", internal.ErrCodeMalformedImport)
)

func DefaultSettings() Settings {
	return Settings{
		PrimaryColor:    "#3B82F6",
		SecondaryColor:  "#1E40AF",
		TextColor:       "#1F2937",
		BackgroundColor: "#FFFFFF",
		Position:        PositionBottomRight,
		Title:           "Chat with us",
		Subtitle:        "We typically reply in a few minutes",
		WelcomeMessage:  "Hi there! How can we help you today?",
		Placeholder:     "Type your message...",
		ShowAvatar:      true,
		ShowTimestamp:   true,
		EnableSound:     true,
		EnableEmoji:     true,
		AutoOpenDelay:   5,
		ShowBranding:    true,
		OfflineMessage:  "We're offline right now. Leave a message and we'll get back to you.",
		BorderRadius:    12,
		FontFamily:      "Inter, sans-serif",
	}
}

type attribute struct {
	name  string
	value string
}

func (s Settings) attributes() []attribute {
	pairs := []struct {
		field string
		value string
	}{
		{"PrimaryColor", s.PrimaryColor},
		{"SecondaryColor", s.SecondaryColor},
		{"TextColor", s.TextColor},
		{"BackgroundColor", s.BackgroundColor},
		{"Position", s.Position},
		{"Title", s.Title},
		{"Subtitle", s.Subtitle},
		{"WelcomeMessage", s.WelcomeMessage},
		{"Placeholder", s.Placeholder},
		{"AvatarURL", s.AvatarURL},
		{"ShowAvatar", strconv.FormatBool(s.ShowAvatar)},
		{"ShowTimestamp", strconv.FormatBool(s.ShowTimestamp)},
		{"EnableSound", strconv.FormatBool(s.EnableSound)},
		{"EnableFileUpload", strconv.FormatBool(s.EnableFileUpload)},
		{"EnableEmoji", strconv.FormatBool(s.EnableEmoji)},
		{"AutoOpen", strconv.FormatBool(s.AutoOpen)},
		{"AutoOpenDelay", strconv.Itoa(s.AutoOpenDelay)},
		{"ShowBranding", strconv.FormatBool(s.ShowBranding)},
		{"CollectEmail", strconv.FormatBool(s.CollectEmail)},
		{"OfflineMessage", s.OfflineMessage},
		{"BorderRadius", strconv.Itoa(s.BorderRadius)},
		{"FontFamily", s.FontFamily},
	}
	attrs := make([]attribute, 0, len(pairs))
	for _, p := range pairs {
		attrs = append(attrs, attribute{name: "data-" + strcase.ToKebab(p.field), value: p.value})
	}
	return attrs
}

// RenderEmbedCode builds the <script> tag that loads the widget. Every attribute value is HTML-escaped.
func RenderEmbedCode(scriptURL, tenantID string, s Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<script src="%s" data-tenant-id="%s"`, html.EscapeString(scriptURL), html.EscapeString(tenantID))
	for _, a := range s.attributes() {
		fmt.Fprintf(&b, "\n  %s=\"%s\"", a.name, html.EscapeString(a.value))
	}
	b.WriteString("\n  async></script>")
	return b.String()
}

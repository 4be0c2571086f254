// Package language renders the user-facing notices the core emits
// (rejections, failures, lifecycle hints) through a localizable catalog.
package language

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Notice ids.
const (
	StartHint            = `StartHint`
	ConversationStarted  = `ConversationStarted`
	ConversationEnded    = `ConversationEnded`
	AlreadyTalking       = `AlreadyTalking`
	EntityBusy           = `EntityBusy`
	PleaseWait           = `PleaseWait`
	ProducerFailed       = `ProducerFailed`
	NoActiveConversation = `NoActiveConversation`
	NoProfession         = `NoProfession`
)

var defaultMessages = []*i18n.Message{
	{ID: StartHint, Other: `Approach a villager and address them to begin a conversation.`},
	{ID: ConversationStarted, Other: `You are now talking with {{.Entity}}. Send a message to begin, or say "end" to stop.`},
	{ID: ConversationEnded, Other: `Your conversation with {{.Entity}} has ended.`},
	{ID: AlreadyTalking, Other: `You are already talking with {{.Entity}}.`},
	{ID: EntityBusy, Other: `{{.Entity}} is talking with someone else. Try again later.`},
	{ID: PleaseWait, Other: `Please wait for {{.Entity}} to respond.`},
	{ID: ProducerFailed, Other: `Something went wrong getting a reply from {{.Entity}}. Please try again later.`},
	{ID: NoActiveConversation, Other: `You are not in a conversation right now.`},
	{ID: NoProfession, Other: `{{.Entity}} has no profession and cannot be talked to.`},
}

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

func init() {
	bundle = i18n.NewBundle(language.English)
	if err := bundle.AddMessages(language.English, defaultMessages...); err != nil {
		panic(err)
	}
	localizer = i18n.NewLocalizer(bundle, language.English.String())
}

// T renders a notice by id with optional template data. An unknown id
// falls back to the id itself rather than failing.
func T(id string, data map[string]any) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

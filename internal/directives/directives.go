// Package directives extracts structured commands (trades, emotes) that
// the language model embeds inside its free-text replies.
package directives

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/GoMudEngine/npctalk/internal/mudlog"
)

// Emote is one of the closed set of gestures an entity can perform.
type Emote string

const (
	EmoteShakeHead    Emote = `SHAKE_HEAD`
	EmoteSoundYes     Emote = `SOUND_YES`
	EmoteSoundNo      Emote = `SOUND_NO`
	EmoteSoundAmbient Emote = `SOUND_AMBIENT`
)

var knownEmotes = map[Emote]struct{}{
	EmoteShakeHead:    {},
	EmoteSoundYes:     {},
	EmoteSoundNo:      {},
	EmoteSoundAmbient: {},
}

// Action is the tagged union of everything a reply can ask the world to do.
type Action interface {
	actionDirective()
}

// TradeAction is an offer from the entity: it takes Offered from the actor
// and gives Requested in return.
type TradeAction struct {
	Offered   []ItemStack // What the actor pays, at most two stacks
	Requested ItemStack   // What the entity gives, exactly one stack
}

func (TradeAction) actionDirective() {}

type EmoteAction struct {
	Kind Emote
}

func (EmoteAction) actionDirective() {}

var (
	tradeRegexp  = regexp.MustCompile(`(?s)TRADE(\[.*?\])ENDTRADE`)
	actionRegexp = regexp.MustCompile(`ACTION:([A-Z_]+)`)
)

type directiveSpan struct {
	start  int
	end    int
	action Action // nil when the directive was recognized but malformed
}

// Parse splits a raw reply into display text and an ordered action list.
// It never fails: malformed directives are logged, dropped, and stripped
// from the display text so the actor never sees raw directive syntax.
func Parse(text string) (string, []Action) {

	spans := []directiveSpan{}

	for _, m := range tradeRegexp.FindAllStringSubmatchIndex(text, -1) {
		trade, err := parseTrade(text[m[2]:m[3]])
		if err != nil {
			mudlog.Warn("Directives", "trade_dropped", err.Error())
			spans = append(spans, directiveSpan{start: m[0], end: m[1]})
			continue
		}
		spans = append(spans, directiveSpan{start: m[0], end: m[1], action: trade})
	}

	for _, m := range actionRegexp.FindAllStringSubmatchIndex(text, -1) {
		kind := Emote(text[m[2]:m[3]])
		if _, ok := knownEmotes[kind]; !ok {
			mudlog.Debug("Directives", "unknown_emote", string(kind))
			continue
		}
		spans = append(spans, directiveSpan{start: m[0], end: m[1], action: EmoteAction{Kind: kind}})
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	actions := []Action{}
	var cleaned strings.Builder
	pos := 0

	for _, s := range spans {
		if s.start < pos {
			// Nested inside an earlier directive (e.g. ACTION text within a
			// trade payload); already consumed.
			continue
		}
		cleaned.WriteString(text[pos:s.start])
		pos = s.end
		if s.action != nil {
			actions = append(actions, s.action)
		}
	}
	cleaned.WriteString(text[pos:])

	return strings.TrimSpace(cleaned.String()), actions
}

// parseTrade decodes the JSON payload between the trade markers: an array
// of exactly two string arrays, first what the actor gives (1-2 stacks),
// second what the entity gives (exactly 1 stack).
func parseTrade(payload string) (TradeAction, error) {

	var trade TradeAction

	var sides [][]string
	if err := json.Unmarshal([]byte(payload), &sides); err != nil {
		return trade, fmt.Errorf(`trade payload is not valid JSON: %v`, err)
	}

	if len(sides) != 2 {
		return trade, fmt.Errorf(`trade payload must have exactly 2 sides, got %d`, len(sides))
	}

	if len(sides[0]) < 1 || len(sides[0]) > 2 {
		return trade, fmt.Errorf(`offered side must have 1-2 items, got %d`, len(sides[0]))
	}

	if len(sides[1]) != 1 {
		return trade, fmt.Errorf(`requested side must have exactly 1 item, got %d`, len(sides[1]))
	}

	for _, encoded := range sides[0] {
		stack, err := parseItemStack(encoded)
		if err != nil {
			return trade, err
		}
		trade.Offered = append(trade.Offered, stack)
	}

	requested, err := parseItemStack(sides[1][0])
	if err != nil {
		return trade, err
	}
	trade.Requested = requested

	return trade, nil
}

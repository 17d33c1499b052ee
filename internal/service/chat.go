package service

import (
	"context"
	"fmt"
	"strings"

	"core/internal/config"
	"core/internal/model"
	"core/internal/repository"
	"core/internal/utils"
)

// Fixed replies. Chat requests always produce a response; failures are
// downgraded to these, never raised to the caller.
const (
	msgNotConfigured = "AI service is not configured. Please set OPENAI_API_KEY."
	msgSaySomething  = "Please say something!"
	msgApology       = "I encountered an error. Please try again."
)

// chatState enumerates the pipeline states. The two external-model calls with
// branch-dependent context form a small linear state machine; an explicit
// transition function keeps the fallback paths independently testable.
type chatState int

const (
	stateReceived chatState = iota
	stateClassifying
	stateDirectAnswer
	stateContextLookup
	stateAnswering
	stateDone
)

// categorySynonyms normalizes colloquial category names to seat-type values
var categorySynonyms = map[string]string{
	"GEN": "OPEN",
	"OBC": "OBC-NCL",
}

// classifySystemPrompt drives the stage-1 call: data questions come back as a
// JSON intent object, general chat comes back as plain text and saves the
// second call.
const classifySystemPrompt = `You are an intelligent assistant for a College Predictor app.

Analyze the user's query and history.

Scenario 1: DATA QUERY (Cutoffs, Ranks, Predictions)
If the user asks for cutoffs, rank predictions, or college chances, return a JSON object with the intent and entities.
CRITICAL: If a prediction query lacks Rank (or Marks/Percentile) AND Category, return intent "missing_info".

Scenario 2: GENERAL CHAT
If the user inputs a greeting, asks general questions, or follows up conversationally without needing data, DIRECTLY answer the user in natural language (text). Do NOT return JSON.

JSON Structure (only for Scenario 1):
{
    "intent": "cutoff" | "rank_predict" | "missing_info",
    "entities": {
        "institute": "string or null",
        "program": "string or null",
        "category": "string or null",
        "rank": "integer or null",
        "marks": "integer or null",
        "percentile": "float or null",
        "round": "integer or null (default 6)"
    },
    "missing_fields": ["rank", "category"] (if intent is missing_info)
}`

// ChatPipeline runs the two-stage classify-then-answer protocol over an
// external text-completion model
type ChatPipeline struct {
	client ChatClient
	store  *repository.Store
	cfg    config.ChatConfig
}

// exchange carries one chat request through the state machine
type exchange struct {
	message string
	history []model.ChatTurn
	intent  *model.ParsedIntent
	context string
	answer  string
}

// NewChatPipeline creates a new chat pipeline
func NewChatPipeline(client ChatClient, store *repository.Store, cfg config.ChatConfig) *ChatPipeline {
	return &ChatPipeline{client: client, store: store, cfg: cfg}
}

// Respond processes one chat exchange and always returns a reply string.
// Upstream failures resolve to a fixed apology; an unconfigured model
// provider short-circuits without any outbound call.
func (p *ChatPipeline) Respond(ctx context.Context, message string, history []model.ChatTurn) string {
	if p.client == nil || !p.client.IsEnabled() {
		return msgNotConfigured
	}
	if strings.TrimSpace(message) == "" {
		return msgSaySomething
	}

	ex := &exchange{message: message, history: history}
	for state := stateReceived; state != stateDone; {
		state = p.step(ctx, state, ex)
	}
	return ex.answer
}

// step is the transition function. Each external-model call is attempted
// once; there is no retry loop.
func (p *ChatPipeline) step(ctx context.Context, state chatState, ex *exchange) chatState {
	switch state {
	case stateReceived:
		return stateClassifying

	case stateClassifying:
		raw, err := p.client.Complete(ctx, p.classifyMessages(ex.message, ex.history))
		if err != nil {
			ex.answer = msgApology
			return stateDone
		}
		intent, direct := parseClassification(raw)
		if intent == nil {
			ex.answer = direct
			return stateDirectAnswer
		}
		ex.intent = intent
		return stateContextLookup

	case stateDirectAnswer:
		return stateDone

	case stateContextLookup:
		ex.context = p.buildContext(ex.intent)
		return stateAnswering

	case stateAnswering:
		reply, err := p.client.Complete(ctx, p.answerMessages(ex))
		if err != nil {
			ex.answer = msgApology
		} else {
			ex.answer = strings.TrimSpace(reply)
		}
		return stateDone
	}
	return stateDone
}

// parseClassification decides between the DirectAnswer and ContextLookup
// branches. A reply without a braced span is the final answer as-is; a span
// that fails to parse falls back to the raw text with code fences stripped.
func parseClassification(raw string) (*model.ParsedIntent, string) {
	raw = strings.TrimSpace(raw)
	span := utils.ExtractJSONSpan(raw)
	if span == "" {
		return nil, raw
	}
	var intent model.ParsedIntent
	if err := utils.ParseModelJSON(raw, &intent); err != nil {
		return nil, utils.StripCodeFences(raw)
	}
	return &intent, ""
}

// classifyMessages assembles the stage-1 message list: system instructions,
// the bounded history window, then the user's text.
func (p *ChatPipeline) classifyMessages(message string, history []model.ChatTurn) []ChatMessage {
	messages := []ChatMessage{{Role: "system", Content: classifySystemPrompt}}

	if limit := p.cfg.HistoryLimit; len(history) > limit {
		history = history[len(history)-limit:]
	}
	for _, turn := range history {
		role := model.RoleAssistant
		if turn.Role == model.RoleUser {
			role = model.RoleUser
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Text})
	}

	return append(messages, ChatMessage{Role: "user", Content: message})
}

// answerMessages assembles the stage-2 message pair: a generic instruction
// plus the original question and the assembled context.
func (p *ChatPipeline) answerMessages(ex *exchange) []ChatMessage {
	task := "Answer the user naturally based on the context."
	if ex.intent != nil && ex.intent.Intent == model.IntentMissingInfo {
		if len(ex.intent.MissingFields) > 0 {
			task = fmt.Sprintf("Politely ask the user for the missing details: %s.", strings.Join(ex.intent.MissingFields, ", "))
		} else {
			task = "Politely ask the user for the details needed to answer."
		}
	}

	content := fmt.Sprintf("User asked: %q\nContext found:\n%s\n\nTask: %s", ex.message, ex.context, task)
	return []ChatMessage{
		{Role: "system", Content: "You are a helpful assistant for a College Predictor app."},
		{Role: "user", Content: content},
	}
}

// buildContext resolves the parsed intent into a textual context snippet for
// the answer call
func (p *ChatPipeline) buildContext(intent *model.ParsedIntent) string {
	switch intent.Intent {
	case model.IntentCutoff:
		return p.cutoffContext(intent.Entities)
	case model.IntentRankPredict:
		return p.marksContext()
	default:
		// missing_info and anything unrecognized carry no context
		return ""
	}
}

// cutoffContext re-queries the record store with the extracted entities and
// renders the best matches as short text lines
func (p *ChatPipeline) cutoffContext(entities model.IntentEntities) string {
	round := p.cfg.DefaultRound
	if entities.Round != nil {
		round = *entities.Round
	}
	if _, ok := p.store.Round(round); !ok {
		round = p.cfg.DefaultRound
	}
	records, ok := p.store.Round(round)
	if !ok {
		return "No matching cutoff data found."
	}

	matches := make([]model.SeatRecord, 0, len(records))
	for _, rec := range records {
		if entities.Institute != nil && !containsFold(rec.Institute, *entities.Institute) {
			continue
		}
		if entities.Program != nil && !containsFold(rec.Program, *entities.Program) {
			continue
		}
		if entities.Category != nil && !containsFold(rec.SeatType, normalizeCategory(*entities.Category)) {
			continue
		}
		if entities.Rank != nil && (rec.ClosingRankNumeric == nil || *rec.ClosingRankNumeric < *entities.Rank) {
			continue
		}
		matches = append(matches, rec)
	}

	if entities.Rank != nil {
		// The tightest attainable seats first when the user gave a rank.
		sortByClosingRankAsc(matches)
	}
	if len(matches) > p.cfg.ContextLimit {
		matches = matches[:p.cfg.ContextLimit]
	}
	if len(matches) == 0 {
		return "No matching cutoff data found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Matches (Round %d):", round)
	for _, rec := range matches {
		fmt.Fprintf(&b, "\n- %s, %s, %s, Closing Rank: %s", rec.Institute, rec.Program, rec.SeatType, rec.ClosingRank)
	}
	return b.String()
}

// marksContext renders the marks-to-rank reference table as text
func (p *ChatPipeline) marksContext() string {
	bands := p.store.MarksTable()
	if len(bands) == 0 {
		return "Rank data unavailable."
	}
	var b strings.Builder
	b.WriteString("Reference Data (Marks | Percentile | Rank):")
	for _, band := range bands {
		fmt.Fprintf(&b, "\n%s | %s | %s", band.Marks, band.Percentile, band.Rank)
	}
	return b.String()
}

// normalizeCategory maps colloquial category names to seat-type values;
// unrecognized categories pass through unchanged
func normalizeCategory(category string) string {
	if mapped, ok := categorySynonyms[strings.ToUpper(category)]; ok {
		return mapped
	}
	return category
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

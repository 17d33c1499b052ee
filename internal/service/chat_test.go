package service

import (
	"context"
	"strings"
	"testing"

	"core/internal/config"
	"core/internal/model"
	"core/internal/repository"
)

// fakeChatClient scripts model replies per call, in order
type fakeChatClient struct {
	replies []string
	errs    []error
	calls   [][]ChatMessage
	enabled bool
}

func (f *fakeChatClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, messages)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return reply, err
}

func (f *fakeChatClient) IsEnabled() bool {
	return f.enabled
}

type failingErr struct{}

func (failingErr) Error() string { return "connection refused" }

func chatTestStore() *repository.Store {
	return repository.NewStore(map[int][]model.SeatRecord{
		6: {
			seatRecord(6, "IIT Madras", "Computer Science and Engineering", "AI", "OPEN", "Gender-Neutral", intPtr(200)),
			seatRecord(6, "IIT Madras", "Computer Science and Engineering", "AI", "OBC-NCL", "Gender-Neutral", intPtr(95)),
			seatRecord(6, "IIT Bombay", "Computer Science and Engineering", "AI", "OPEN", "Gender-Neutral", intPtr(68)),
			seatRecord(6, "NIT Trichy", "Civil Engineering", "HS", "OPEN", "Gender-Neutral", intPtr(24000)),
		},
	}, []model.MarksRankBand{
		{Marks: "281 - 300", Percentile: "99.99989145 - 100", Rank: "1 - 20"},
		{Marks: "271 - 280", Percentile: "99.994681 - 99.997394", Rank: "24 - 80"},
	})
}

func chatConfig() config.ChatConfig {
	return config.ChatConfig{HistoryLimit: 5, ContextLimit: 10, DefaultRound: 6}
}

func TestChatPipeline_Unconfigured(t *testing.T) {
	client := &fakeChatClient{enabled: false}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())

	got := pipeline.Respond(context.Background(), "hello", nil)
	if got != msgNotConfigured {
		t.Errorf("expected fixed not-configured message, got %q", got)
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no outbound calls, got %d", len(client.calls))
	}
}

func TestChatPipeline_NilClient(t *testing.T) {
	pipeline := NewChatPipeline(nil, chatTestStore(), chatConfig())
	if got := pipeline.Respond(context.Background(), "hello", nil); got != msgNotConfigured {
		t.Errorf("expected fixed not-configured message, got %q", got)
	}
}

func TestChatPipeline_EmptyMessage(t *testing.T) {
	client := &fakeChatClient{enabled: true}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())

	if got := pipeline.Respond(context.Background(), "   ", nil); got != msgSaySomething {
		t.Errorf("expected empty-message prompt, got %q", got)
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no outbound calls, got %d", len(client.calls))
	}
}

func TestChatPipeline_DirectAnswer(t *testing.T) {
	client := &fakeChatClient{enabled: true, replies: []string{"Hello! How can I help?"}}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())

	got := pipeline.Respond(context.Background(), "hi there", nil)
	if got != "Hello! How can I help?" {
		t.Errorf("expected raw model text back, got %q", got)
	}
	if len(client.calls) != 1 {
		t.Fatalf("plain-text reply must not trigger a second call, got %d calls", len(client.calls))
	}
}

func TestChatPipeline_MissingInfo(t *testing.T) {
	client := &fakeChatClient{
		enabled: true,
		replies: []string{
			`{"intent":"missing_info","entities":{},"missing_fields":["rank"]}` + "\nLet me check what else I need.",
			"Could you share your rank so I can predict your chances?",
		},
	}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())

	got := pipeline.Respond(context.Background(), "which colleges can I get?", nil)
	if got != "Could you share your rank so I can predict your chances?" {
		t.Errorf("expected second-stage reply, got %q", got)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected two outbound calls, got %d", len(client.calls))
	}
	stage2 := client.calls[1]
	if len(stage2) != 2 || stage2[0].Role != "system" || stage2[1].Role != "user" {
		t.Fatalf("expected system+user message pair in stage 2, got %+v", stage2)
	}
	if !strings.Contains(stage2[1].Content, "rank") {
		t.Errorf("stage-2 instruction should name the missing field, got %q", stage2[1].Content)
	}
}

func TestChatPipeline_CutoffContext(t *testing.T) {
	client := &fakeChatClient{
		enabled: true,
		replies: []string{
			`{"intent":"cutoff","entities":{"institute":"iit madras","category":"GEN"}}`,
			"Here are the cutoffs for IIT Madras.",
		},
	}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())

	got := pipeline.Respond(context.Background(), "what is the cutoff for IIT Madras?", nil)
	if got != "Here are the cutoffs for IIT Madras." {
		t.Errorf("unexpected final answer %q", got)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected two outbound calls, got %d", len(client.calls))
	}
	context2 := client.calls[1][1].Content
	if !strings.Contains(context2, "Matches (Round 6):") {
		t.Errorf("stage-2 context missing match header: %q", context2)
	}
	// GEN normalizes to OPEN; the OBC-NCL row must not appear.
	if !strings.Contains(context2, "IIT Madras, Computer Science and Engineering, OPEN, Closing Rank: 200") {
		t.Errorf("stage-2 context missing OPEN match: %q", context2)
	}
	if strings.Contains(context2, "OBC-NCL") {
		t.Errorf("category GEN should exclude OBC-NCL rows: %q", context2)
	}
	if strings.Contains(context2, "NIT Trichy") {
		t.Errorf("institute filter should exclude NIT Trichy: %q", context2)
	}
}

func TestChatPipeline_CutoffWithRankSortsAscending(t *testing.T) {
	client := &fakeChatClient{
		enabled: true,
		replies: []string{
			`{"intent":"cutoff","entities":{"program":"computer science","rank":80}}`,
			"answer",
		},
	}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())
	pipeline.Respond(context.Background(), "where can I get CSE with rank 80?", nil)

	if len(client.calls) != 2 {
		t.Fatalf("expected two outbound calls, got %d", len(client.calls))
	}
	context2 := client.calls[1][1].Content
	// Closing ranks 95 and 200 qualify; 68 is below the rank and excluded.
	idx95 := strings.Index(context2, "Closing Rank: 95")
	idx200 := strings.Index(context2, "Closing Rank: 200")
	if idx95 < 0 || idx200 < 0 {
		t.Fatalf("expected both qualifying rows in context: %q", context2)
	}
	if idx95 > idx200 {
		t.Errorf("rank-constrained cutoff context should sort ascending: %q", context2)
	}
	if strings.Contains(context2, "Closing Rank: 68") {
		t.Errorf("row with closing rank below the user rank must be excluded: %q", context2)
	}
}

func TestChatPipeline_RankPredictContext(t *testing.T) {
	client := &fakeChatClient{
		enabled: true,
		replies: []string{
			`{"intent":"rank_predict","entities":{"marks":275}}`,
			"With 275 marks you can expect a rank around 24-80.",
		},
	}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())
	pipeline.Respond(context.Background(), "what rank for 275 marks?", nil)

	if len(client.calls) != 2 {
		t.Fatalf("expected two outbound calls, got %d", len(client.calls))
	}
	context2 := client.calls[1][1].Content
	if !strings.Contains(context2, "271 - 280") || !strings.Contains(context2, "24 - 80") {
		t.Errorf("stage-2 context missing marks reference table: %q", context2)
	}
}

func TestChatPipeline_MalformedJSONFallsBackToText(t *testing.T) {
	raw := "```json\n{intent: cutoff, bad json,}\n```"
	client := &fakeChatClient{enabled: true, replies: []string{raw}}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())

	got := pipeline.Respond(context.Background(), "cutoff?", nil)
	if got != "{intent: cutoff, bad json,}" {
		t.Errorf("expected fence-stripped raw text, got %q", got)
	}
	if len(client.calls) != 1 {
		t.Errorf("malformed JSON must not trigger a second call, got %d calls", len(client.calls))
	}
}

func TestChatPipeline_UpstreamFailure(t *testing.T) {
	t.Run("stage 1 failure", func(t *testing.T) {
		client := &fakeChatClient{enabled: true, errs: []error{failingErr{}}}
		pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())
		if got := pipeline.Respond(context.Background(), "hi", nil); got != msgApology {
			t.Errorf("expected apology, got %q", got)
		}
		if len(client.calls) != 1 {
			t.Errorf("no retry expected, got %d calls", len(client.calls))
		}
	})

	t.Run("stage 2 failure", func(t *testing.T) {
		client := &fakeChatClient{
			enabled: true,
			replies: []string{`{"intent":"rank_predict","entities":{}}`, ""},
			errs:    []error{nil, failingErr{}},
		}
		pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())
		if got := pipeline.Respond(context.Background(), "rank for 200 marks?", nil); got != msgApology {
			t.Errorf("expected apology, got %q", got)
		}
		if len(client.calls) != 2 {
			t.Errorf("expected exactly two calls, got %d", len(client.calls))
		}
	})
}

func TestChatPipeline_HistoryWindow(t *testing.T) {
	client := &fakeChatClient{enabled: true, replies: []string{"ok"}}
	pipeline := NewChatPipeline(client, chatTestStore(), chatConfig())

	history := make([]model.ChatTurn, 0, 8)
	for i := 0; i < 4; i++ {
		history = append(history,
			model.ChatTurn{Role: model.RoleUser, Text: "question"},
			model.ChatTurn{Role: model.RoleAssistant, Text: "answer"},
		)
	}
	pipeline.Respond(context.Background(), "latest question", history)

	stage1 := client.calls[0]
	// system + last 5 history turns + current message
	if len(stage1) != 7 {
		t.Fatalf("expected 7 messages (system, 5 history, user), got %d", len(stage1))
	}
	if stage1[0].Role != "system" {
		t.Errorf("first message should be the system instruction")
	}
	if last := stage1[len(stage1)-1]; last.Role != "user" || last.Content != "latest question" {
		t.Errorf("final message should be the user's text, got %+v", last)
	}
}

func TestCutoffContext_SubstitutesDefaultRound(t *testing.T) {
	pipeline := NewChatPipeline(&fakeChatClient{enabled: true}, chatTestStore(), chatConfig())

	// Round 3 was never loaded; the default round's data answers instead.
	got := pipeline.cutoffContext(model.IntentEntities{Round: intPtr(3)})
	if !strings.Contains(got, "Matches (Round 6):") {
		t.Errorf("expected fallback to round 6, got %q", got)
	}
}

func TestParseClassification(t *testing.T) {
	t.Run("plain text yields direct answer", func(t *testing.T) {
		intent, direct := parseClassification("Hello! How can I help?")
		if intent != nil {
			t.Fatalf("expected no intent, got %+v", intent)
		}
		if direct != "Hello! How can I help?" {
			t.Errorf("expected raw text unchanged, got %q", direct)
		}
	})

	t.Run("embedded object yields intent", func(t *testing.T) {
		intent, _ := parseClassification(`{"intent":"cutoff","entities":{"round":3}}`)
		if intent == nil || intent.Intent != model.IntentCutoff {
			t.Fatalf("expected cutoff intent, got %+v", intent)
		}
		if intent.Entities.Round == nil || *intent.Entities.Round != 3 {
			t.Errorf("expected round entity 3, got %+v", intent.Entities.Round)
		}
	})
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GEN", "OPEN"},
		{"gen", "OPEN"},
		{"OBC", "OBC-NCL"},
		{"SC", "SC"},
		{"EWS", "EWS"},
		{"open", "open"},
	}
	for _, tt := range tests {
		if got := normalizeCategory(tt.in); got != tt.want {
			t.Errorf("normalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhsu-tw/tianji/internal/dates"
	"github.com/jhsu-tw/tianji/internal/extract"
	"github.com/jhsu-tw/tianji/internal/numerology"
	"github.com/jhsu-tw/tianji/internal/providers"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/tone"
)

// Life-number module states.
const (
	StateWaitingModuleSelection = "waiting_module_selection"
	StateCoreCategorySelection  = "core_category_selection"
	StateWaitingCoreQuestion    = "waiting_core_question"
	StateContinueSelection      = "continue_selection"
)

// Lifenum runs the life-number numerology flow.
type Lifenum struct {
	deps Deps
}

// NewLifenum creates the life-number module.
func NewLifenum(deps Deps) *Lifenum {
	return &Lifenum{deps: deps}
}

func (m *Lifenum) Name() string { return session.ModuleLifenum }

func (m *Lifenum) Init(rec *session.Record, toneKey string) (string, error) {
	var greeting string
	if rec.Tier == session.TierFree {
		if toneKey == "" || !tone.ValidFree(toneKey) {
			return "", ErrInvalidTone
		}
		greeting = lifenumFreeGreetings[toneKey]
	} else {
		toneKey = tone.AngelPersonaOrDefault(toneKey)
		greeting = lifenumInitGreetings[toneKey]
	}

	rec.Tone = toneKey
	rec.State = StateWaitingBasicInfo
	rec.AddMessage("assistant", greeting)
	return greeting, nil
}

func (m *Lifenum) Step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	from := rec.State
	reply, err := m.step(ctx, rec, in)
	logTransition(m.deps, m.Name(), from, rec.State, err)
	return reply, err
}

func (m *Lifenum) step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	switch rec.State {
	case StateWaitingBasicInfo:
		return m.stepBasicInfo(ctx, rec, in.Message)
	case StateWaitingModuleSelection:
		if rec.PendingModule != "" {
			return m.stepConfirmation(ctx, rec, in.Message)
		}
		return m.stepSelection(ctx, rec, in.Message)
	case StateCoreCategorySelection:
		return m.stepCategorySelection(rec, in)
	case StateWaitingCoreQuestion:
		return m.stepCoreQuestion(ctx, rec, in.Message)
	case StateContinueSelection:
		return m.stepContinue(ctx, rec, in.Message)
	case StateCompleted:
		rec.AddMessage("user", in.Message)
		text := freeText(lifenumCompletedRestart, rec.Tone)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text}, nil
	}
	return nil, fmt.Errorf("lifenum: unknown state %q", rec.State)
}

func (m *Lifenum) stepBasicInfo(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	opts := extract.Options{RequireEnglishName: rec.Tier == session.TierPaid}
	id, err := extract.ExtractIdentity(ctx, m.deps.LLM, msg, opts)
	if err != nil {
		var mfe *extract.MissingFieldsError
		if errors.As(err, &mfe) {
			rec.AddMessage("user", msg)
			text := freeText(lifenumErrorMessages, rec.Tone)
			rec.AddMessage("assistant", text)
			return &Reply{Text: text, RequiresInput: true}, nil
		}
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.Name = id.Name
	rec.Gender = id.Gender
	rec.Birthdate = id.Birthdate
	rec.EnglishName = id.EnglishName
	rec.State = StateWaitingModuleSelection

	text := lifenumGreeting(rec.Tone, id.Name, id.Gender)
	rec.AddMessage("assistant", text)
	return &Reply{
		Text:          text,
		RequiresInput: true,
		Fields:        map[string]any{"topics": topicDisplayNames(rec.Tier)},
	}, nil
}

func topicDisplayNames(tier string) []string {
	topics := tierTopics(tier)
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.Display)
	}
	return out
}

// stepSelection routes a topic-selection message. A direct topic name runs
// the analysis immediately; anything else is treated as a description of the
// user's concern and mapped to a topic for confirmation.
func (m *Lifenum) stepSelection(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	if topic, ok := matchTopic(msg); ok {
		if rec.Tier == session.TierFree && !topic.Free {
			rec.AddMessage("user", msg)
			text := fmt.Sprintf("「%s」需要升級後才能解析喔。目前可以選擇：%s。", topic.Display, strings.Join(topicDisplayNames(rec.Tier), "、"))
			rec.AddMessage("assistant", text)
			return &Reply{Text: text, RequiresInput: true}, nil
		}
		return m.runTopic(ctx, rec, msg, topic)
	}

	detected, reason, err := m.detectTopic(ctx, rec, msg)
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.PendingModule = detected.Key
	text := lifenumConfirmation(rec.Tone, detected.Display, reason, rec.Name, rec.Gender)
	rec.AddMessage("assistant", text)
	return &Reply{
		Text:          text,
		RequiresInput: true,
		Fields:        map[string]any{"pending_topic": detected.Key},
	}, nil
}

func (m *Lifenum) stepConfirmation(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	s := strings.TrimSpace(msg)
	switch {
	case strings.Contains(s, "不要") || strings.Contains(s, "不用") || strings.Contains(s, "不好") || s == "不":
		rec.AddMessage("user", msg)
		rec.PendingModule = ""
		text := lifenumRejection(rec.Tone, rec.Name, rec.Gender, rec.Tier)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text, RequiresInput: true}, nil
	case strings.Contains(s, "好") || strings.Contains(s, "可以") || strings.Contains(s, "ok") || strings.Contains(s, "OK"):
		topic := lifeTopicsByKey[rec.PendingModule]
		reply, err := m.runTopic(ctx, rec, msg, topic)
		if err != nil {
			return nil, err
		}
		rec.PendingModule = ""
		return reply, nil
	default:
		rec.AddMessage("user", msg)
		text := freeText(lifenumConfirmationRetry, rec.Tone)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text, RequiresInput: true}, nil
	}
}

// topicDetection is the structured topic-recommendation response.
type topicDetection struct {
	Module string `json:"module"`
	Reason string `json:"reason"`
}

const topicDetectionFallbackReason = "根據您的描述，我建議從核心生命靈數開始，這能幫助您更全面地了解自己的天賦與人生方向。"

func (m *Lifenum) detectTopic(ctx context.Context, rec *session.Record, purpose string) (lifeTopic, string, error) {
	var options strings.Builder
	for i, t := range tierTopics(rec.Tier) {
		fmt.Fprintf(&options, "%d. %s - %s：%s\n", i+1, t.Key, t.Display, t.Description)
	}

	system := fmt.Sprintf(`你是一位專業的生命靈數諮詢師助理。請根據使用者的困惑或需求，推薦最適合的生命靈數模組。

可選模組：
%s
請以 JSON 格式回應，包含：
{
    "module": "建議的模組代碼",
    "reason": "推薦理由（30-50字，直接說明原因，不要包含任何稱呼或問候語）"
}

注意：reason 欄位只需要說明推薦的原因，不要加上使用者的名字或任何稱呼。`, options.String())

	user := fmt.Sprintf("使用者姓名：%s\n使用者的困惑或需求：%s\n\n請推薦最適合的模組並說明理由（理由不要包含稱呼）。", rec.Name, purpose)

	result, err := m.deps.LLM.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.5,
		MaxTokens:   1000,
		Timeout:     30 * time.Second,
		ResponseFormat: &providers.ResponseFormat{
			Type: "json_object",
			Name: "topic_detection",
		},
	})
	if err != nil {
		return lifeTopic{}, "", fmt.Errorf("topic detection: %v: %w", err, extract.ErrUnavailable)
	}

	raw := result.ParsedJSON
	if len(raw) == 0 {
		raw = json.RawMessage(result.Content)
	}
	var det topicDetection
	if err := json.Unmarshal(raw, &det); err != nil {
		return lifeTopicsByKey["core"], topicDetectionFallbackReason, nil
	}

	topic, ok := lifeTopicsByKey[det.Module]
	if !ok || (rec.Tier == session.TierFree && !topic.Free) {
		return lifeTopicsByKey["core"], topicDetectionFallbackReason, nil
	}
	return topic, det.Reason, nil
}

// runTopic computes the reading and produces the topic analysis. This is the
// Step's single external call.
func (m *Lifenum) runTopic(ctx context.Context, rec *session.Record, msg string, topic lifeTopic) (*Reply, error) {
	d, err := dates.Parse(rec.Birthdate)
	if err != nil {
		return nil, fmt.Errorf("lifenum: stored birthdate %q: %w", rec.Birthdate, err)
	}
	reading := numerology.Compute(d, m.deps.now())
	if rec.Tier == session.TierPaid && rec.EnglishName != "" {
		reading = reading.WithName(rec.EnglishName)
	}

	length := "400-500"
	if rec.Tier == session.TierFree {
		length = "300-400"
	}

	system := fmt.Sprintf(`你是一位專業的生命靈數解讀師。

使用者 %s 的生命靈數計算結果：
%s

本次要解析的主題是「%s」（%s）。

【語氣要求】
%s

【回答要求】
1. 聚焦在「%s」這個主題,結合上方的計算結果深入解析
2. 提供具體、實用且有啟發性的內容
3. 不使用 markdown 格式標記
4. 回應長度控制在 %s 字
5. 避免給予絕對性的預測,改用建議導向的表達
6. 嚴格禁止使用「因果報應」四字,若需表達相關概念,請統一改用「因果回饋分析」。`,
		rec.Name, reading.Summary(),
		topic.Display, topic.Description,
		tone.StyleDescription(rec.Tone),
		topic.Display, length)

	analysis, err := extract.Interpret(ctx, m.deps.LLM, extract.InterpretRequest{
		System:      system,
		User:        fmt.Sprintf("請為 %s 解析「%s」。", rec.Name, topic.Display),
		Temperature: 0.8,
		MaxTokens:   900,
	})
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.LifeModule = topic.Key
	rec.AddTopicMemory(session.MemoryModuleAnalysis, topic.Key, truncateRunes(analysis, 100), m.deps.now())
	rec.MaybeClearMemories(m.deps.Memory.MaxTurns)

	fields := map[string]any{"topic": topic.Key, "numbers": reading}

	if rec.Tier == session.TierFree {
		rec.State = StateCompleted
		rec.AddMessage("assistant", analysis)
		return &Reply{Text: analysis, Fields: fields}, nil
	}

	if topic.Key == "core" {
		rec.State = StateCoreCategorySelection
		var b strings.Builder
		b.WriteString(analysis)
		b.WriteString("\n\n")
		b.WriteString(freeText(lifenumCategoryButtons, rec.Tone))
		b.WriteString("\n")
		for _, c := range coreCategories {
			fmt.Fprintf(&b, "\n🔹 %s", c)
		}
		text := b.String()
		rec.AddMessage("assistant", text)
		fields["categories"] = coreCategories
		return &Reply{Text: text, RequiresInput: true, Fields: fields}, nil
	}

	rec.State = StateContinueSelection
	text := analysis + "\n\n" + fmt.Sprintf(freeText(lifenumTopicContinue, rec.Tone), topic.Noun)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text, RequiresInput: true, Fields: fields}, nil
}

func (m *Lifenum) stepCategorySelection(rec *session.Record, in Input) (*Reply, error) {
	category := in.Category
	if _, ok := matchCoreCategory(category); !ok {
		category, ok = matchCoreCategory(in.Message)
		if !ok {
			rec.AddMessage("user", in.Message)
			var b strings.Builder
			b.WriteString(freeText(lifenumCategoryButtons, rec.Tone))
			b.WriteString("\n")
			for _, c := range coreCategories {
				fmt.Fprintf(&b, "\n🔹 %s", c)
			}
			text := b.String()
			rec.AddMessage("assistant", text)
			return &Reply{Text: text, RequiresInput: true, Fields: map[string]any{"categories": coreCategories}}, nil
		}
	}

	rec.AddMessage("user", in.Message)
	rec.CoreCategory = category
	rec.State = StateWaitingCoreQuestion
	text := fmt.Sprintf(freeText(lifenumCategoryQuestion, rec.Tone), category)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text, RequiresInput: true, Fields: map[string]any{"category": category}}, nil
}

func (m *Lifenum) stepCoreQuestion(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	answer, err := m.answerQuestion(ctx, rec, msg, rec.CoreCategory)
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.AddTopicMemory(session.MemoryCoreQA, rec.CoreCategory, truncateRunes(msg, 100), m.deps.now())
	rec.MaybeClearMemories(m.deps.Memory.MaxTurns)
	rec.State = StateContinueSelection

	text := answer + "\n\n" + freeText(lifenumContinuePrompt, rec.Tone)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text, RequiresInput: true}, nil
}

func (m *Lifenum) stepContinue(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	if wantsToEnd(msg) || hasNoQuestion(msg) {
		rec.AddMessage("user", msg)
		rec.State = StateCompleted
		text := m.farewell(rec)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text}, nil
	}

	if topic, ok := matchTopic(msg); ok {
		return m.runTopic(ctx, rec, msg, topic)
	}

	answer, err := m.answerQuestion(ctx, rec, msg, "")
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.MaybeClearMemories(m.deps.Memory.MaxTurns)
	text := answer + "\n\n" + freeText(lifenumContinuePrompt, rec.Tone)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text, RequiresInput: true}, nil
}

// answerQuestion handles a free-form question inside the continued dialogue,
// feeding recent memory notes into the prompt for continuity.
func (m *Lifenum) answerQuestion(ctx context.Context, rec *session.Record, msg, category string) (string, error) {
	d, err := dates.Parse(rec.Birthdate)
	if err != nil {
		return "", fmt.Errorf("lifenum: stored birthdate %q: %w", rec.Birthdate, err)
	}
	reading := numerology.Compute(d, m.deps.now())
	if rec.Tier == session.TierPaid && rec.EnglishName != "" {
		reading = reading.WithName(rec.EnglishName)
	}

	var memory strings.Builder
	for _, mem := range rec.RecentMemories(m.deps.Memory.ContextSize) {
		fmt.Fprintf(&memory, "- [%s] %s\n", mem.Type, mem.Content)
	}

	focus := ""
	if category != "" {
		focus = fmt.Sprintf("\n使用者目前聚焦的方向是「%s」。\n", category)
	}

	system := fmt.Sprintf(`你是一位專業的生命靈數解讀師,正在與使用者 %s 進行深度對話。

使用者的生命靈數計算結果：
%s
%s
【先前解析的重點】
%s
【語氣要求】
%s

【回答要求】
1. 結合計算結果與先前解析的重點,回答使用者的問題
2. 提供具體、實用且有啟發性的回答
3. 不使用 markdown 格式標記
4. 回應長度控制在 300-400 字
5. 避免給予絕對性的預測,改用建議導向的表達
6. 嚴格禁止使用「因果報應」四字,若需表達相關概念,請統一改用「因果回饋分析」。`,
		rec.Name, reading.Summary(), focus, memory.String(), tone.StyleDescription(rec.Tone))

	return extract.Interpret(ctx, m.deps.LLM, extract.InterpretRequest{
		System:      system,
		User:        fmt.Sprintf("使用者的問題：%s", msg),
		Temperature: 0.8,
		MaxTokens:   800,
	})
}

// farewell builds the deterministic closing summary from the session memory.
func (m *Lifenum) farewell(rec *session.Record) string {
	style, ok := lifenumFarewells[rec.Tone]
	if !ok {
		style = lifenumFarewells["guan_yu"]
	}

	var points []string
	analyzed := rec.AnalyzedTopics()
	if rec.Name != "" && rec.Birthdate != "" {
		if d, err := dates.Parse(rec.Birthdate); err == nil {
			points = append(points, fmt.Sprintf("為 %s 解析了生命靈數 %d", rec.Name, numerology.CoreNumber(d)))
		}
	}

	var items []string
	for _, key := range analyzed {
		if t, ok := lifeTopicsByKey[key]; ok {
			items = append(items, t.Display)
		}
	}
	seen := make(map[string]bool)
	for _, mem := range rec.Memories {
		if mem.Type == session.MemoryCoreQA && mem.Topic != "" && !seen[mem.Topic] {
			seen[mem.Topic] = true
			items = append(items, "核心生命靈數-"+mem.Topic)
		}
	}
	if len(items) > 0 {
		points = append(points, "探索了："+strings.Join(items, " • "))
	}

	var b strings.Builder
	b.WriteString(style.Header)
	if len(points) > 0 {
		b.WriteString(style.ListHead)
		for i, p := range points {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s %s", style.Bullet, p)
		}
		b.WriteString(style.Outro)
	} else {
		b.WriteString(style.Empty)
	}

	var recs []string
	for _, key := range analyzed {
		if r, ok := topicRecommendations[key]; ok {
			recs = append(recs, fmt.Sprintf("📿 %s\n%s", r.Title, r.Description))
		}
	}
	if len(recs) > 0 {
		b.WriteString("\n\n━━━━━━━━━━━━━━━━━\n")
		b.WriteString("🔮 能量調整建議\n")
		b.WriteString("━━━━━━━━━━━━━━━━━\n\n")
		b.WriteString(strings.Join(recs, "\n\n"))
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

var _ Module = (*Lifenum)(nil)

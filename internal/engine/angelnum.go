package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhsu-tw/tianji/internal/angel"
	"github.com/jhsu-tw/tianji/internal/extract"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/tone"
)

// Angel-number module states.
const (
	StateWaitingAngelNumber = "waiting_angel_number"
	StateAskingForQuestion  = "asking_for_question"
	StateConversation       = "conversation"
)

// maxPaidAngelDigits caps the paid-tier topic length.
const maxPaidAngelDigits = 4

// Angelnum runs the angel-number reading flow.
type Angelnum struct {
	deps  Deps
	cache *angel.Cache
}

// NewAngelnum creates the angel-number module.
func NewAngelnum(deps Deps) *Angelnum {
	return &Angelnum{deps: deps, cache: angel.NewCache()}
}

func (m *Angelnum) Name() string { return session.ModuleAngelnum }

// freeText picks the entry for a free tone, falling back to "default" for
// paid personas outside the free set.
func freeText(table map[string]string, toneKey string) string {
	if s, ok := table[toneKey]; ok {
		return s
	}
	return table["default"]
}

var angelInitGreetings = map[string]string{
	tone.Friendly: "嗨～歡迎來到 天使數字 AI 對話空間 💫\n\n你是不是最近也常常看到某個數字一直出現呢？\n\n像是 1111、3333 或是車牌、時鐘都在重複提醒你？⌛️\n\n別懷疑,這可不是巧合～\n\n那是天使在用數字跟你打招呼呢 ✨\n\n請告訴我你的姓名、性別與生日,\n\n然後我會請你選擇最近看到的天使數字 💌\n\n例如：王小明 男 1990/07/12",
	tone.Caring:   "親愛的靈魂旅人,歡迎來到 天使數字的光之門 🌙\n\n當某個數字頻繁出現在你眼前,\n\n那是宇宙在輕喚你注意內在的訊息。\n\n或許它是鼓勵、或是一份提醒——\n\n但無論是什麼,都代表你正在被溫柔地指引著 💫\n\n請先告訴我你的姓名、性別與生日,\n\n接著我會請你選擇最近最常出現的數字 🕊️\n\n例如：王小明 男 1990/07/12",
	tone.Ritual:   "歡迎步入 天使數字殿堂 ✨\n\n當你多次看見相同的數字,\n\n那並非偶然,而是一道來自宇宙的密碼。\n\n每個數字皆蘊含神聖能量,\n\n象徵著靈魂階段的覺醒與啟示。\n\n請先告訴我你的姓名、性別與出生之日,\n\n隨後我將請你選擇那組反覆出現的數字 🕯️\n\n例如：王小明 男 1990/07/12",
	"default":     "歡迎來到天使數字解讀空間。請告訴我您的姓名、性別與生日，讓我為您解讀宇宙的訊息。",
}

var angelAskNumberPrompts = map[string]string{
	tone.Friendly: "接下來想請你告訴我一件小事：\n\n你最近最常看到的天使數字是什麼呢？💫\n\n像是「1111」、「3333」或是「5555」這樣的數字～\n\n別擔心沒有對錯,\n\n那只是宇宙在用數字的語言和你打招呼 🌈\n\n請告訴我你看到的數字吧！",
	tone.Caring:   "接下來,讓我們一起傾聽宇宙的語言吧～\n\n請回想一下,最近是否有某個數字反覆出現在你眼前？\n\n那是天使想讓你注意的訊息喔 🕊️\n\n請告訴我那組數字,\n\n像是「1111」、「7777」或「4444」這樣的,\n\n我會幫你解讀其中所蘊含的能量與指引 💫",
	tone.Ritual:   "在揭開符碼之前,我需要知道一件重要的事：\n\n近期反覆出現在你生命中的數字是什麼？\n\n那是一道宇宙的訊號,一段天使傳遞的能量序列。\n\n像是「1111」、「9999」這樣的重複數,\n\n它都象徵著你與宇宙能量正在共振。\n\n請輸入那組數字,\n\n讓我為你解讀這份來自天界的啟示 ✨",
	"default":     "請告訴我您最近反覆看到的天使數字，我將為您解讀其中的神聖含義。",
}

var angelIncompleteInfo = map[string]string{
	tone.Friendly: "噢～我好像還沒收到完整的資料呢 😅\n\n請再幫我輸入一次「姓名、性別、生日」喔～\n\n格式像這樣：\n📝 王小明 男 1990/07/12\n或 李小華 女 1985/03/25\n\n這樣我就能幫你準確解讀天使數字囉 🌟",
	tone.Caring:   "我收到您的訊息了,但還缺少一些小小的關鍵資訊 🌙\n\n為了讓我能準確為您解讀天使數字,\n請您提供「姓名、性別與生日」。\n\n範例：\n🕊 王小明 男 1990/07/12\n🕊 李小華 女 1985/03/25\n\n當我收到完整資料後,我就能為您開啟光之門。",
	tone.Ritual:   "天使數字之門尚未完全開啟。\n\n我需要更完整的召喚資訊,才能解讀數字的能量。\n\n請以以下格式重新輸入：\n✦ 王小明 男 1990/07/12\n✦ 李小華 女 1985/03/25\n\n當正確的姓名、性別與生日被輸入時,\n天使之光將再次流動,指引屬於您的數字之途 🔮",
	"default":     "資料不完整，請提供姓名、性別與生日。",
}

var angelInvalidNumber = map[string]string{
	tone.Friendly: "咦？我好像沒看到數字耶 😅\n\n請直接輸入你看到的數字就好囉～\n\n像是「1111」、「2222」、「5555」這樣 ✨",
	tone.Caring:   "親愛的,我沒有收到數字喔 🌙\n\n請直接告訴我那組數字吧,\n\n像是「2222」或「8888」這樣的形式 💫",
	tone.Ritual:   "請直接輸入數字序列,\n\n例如「7777」或「1111」🔮",
	"default":     "請輸入有效的天使數字。",
}

var angelNoQuestionEnd = map[string]string{
	tone.Friendly: "好的！希望這次的天使數字解讀對你有幫助 ✨\n\n如果未來又看到其他天使數字,隨時都可以回來找我喔 💫\n\n祝你一切順心～",
	tone.Caring:   "親愛的,很高興能為你解讀這個天使數字 🌙\n\n願這份來自宇宙的訊息能照亮你的道路 💕\n\n如果未來有其他數字想要了解,我隨時都在這裡陪伴你 🕊️",
	tone.Ritual:   "天使數字的啟示已完整揭示 ✨\n\n願您領受這份來自天界的智慧,踏上光明之途 🕯️\n\n若有其他數字欲解讀,請隨時再來",
	"default":     "感謝您的信任。願天使的指引為您帶來光明。再會。",
}

var angelConversationEnd = map[string]string{
	tone.Friendly: "很開心能陪你探索天使數字的奧秘 ✨\n\n希望這些訊息對你有幫助～\n\n如果未來又看到其他天使數字,隨時都可以回來找我喔 💫",
	tone.Caring:   "親愛的,很榮幸能陪伴你這段探索之旅 🌙\n\n願天使的祝福常伴你左右 💕\n\n記得,宇宙一直都在支持著你 🕊️",
	tone.Ritual:   "感謝您的信任與聆聽 ✨\n\n願天使的光芒永遠照耀您的道路 🕯️\n\n再會",
	"default":     "感謝您的信任與聆聽。願天使的光芒永遠照耀您的道路。再會。",
}

var angelAskQuestionSuffix = map[string]string{
	tone.Friendly: "\n\n關於這個天使數字,你有什麼想要進一步了解的嗎？\n\n或是有什麼困惑想要詢問的呢？我很樂意繼續為你解答喔 💫",
	tone.Caring:   "\n\n親愛的,關於這個天使數字的訊息,\n\n你是否有任何想要深入探討的地方？\n\n或是生活中有什麼困惑想要尋求指引呢？我會陪著你一起探索 🌙",
	tone.Ritual:   "\n\n若您對此數字的啟示有任何疑問,\n\n或欲深入探究其中奧義,\n\n請隨時提問,我將為您揭示更深層的訊息 🕯️",
	"default":     "\n\n若您對此解析有任何疑問，或想深入探討，請隨時提問。",
}

var angelContinueSuffix = map[string]string{
	tone.Friendly: "\n\n還有其他想了解的嗎？💫",
	tone.Caring:   "\n\n如果還有疑問,我會繼續陪你探索 🌙",
	tone.Ritual:   "\n\n若有其他疑問,請繼續提問 🕯️",
	"default":     "\n\n若有其他疑問，請繼續提問。",
}

var angelCompletedRestart = map[string]string{
	tone.Friendly: "天使數字解析完成了！✨ 如果你想解讀其他數字,可以點擊上面的「🔄 重新開始」按鈕喔 💫",
	tone.Caring:   "這次的天使訊息解讀就到這裡了 ☺️✨\n\n希望這些來自宇宙的指引能幫助到你 💕\n\n如果想要解讀其他天使數字,隨時點上面的「🔄 重新開始」按鈕就可以了 🌸",
	tone.Ritual:   "天使數字的啟示已完整揭示。\n\n若欲解讀其他數字序列,請點擊「🔄 重新開始」按鈕 🕯️",
	"default":     "解讀已完成。若欲解讀其他數字，請點擊重新開始。",
}

// topicLockedMessage rejects a new digit topic mid-dialogue.
const topicLockedMessage = "您只能針對第一次的數字提問，新的數字請開啟新的對話串呦 ✨"

func (m *Angelnum) Init(rec *session.Record, toneKey string) (string, error) {
	if rec.Tier == session.TierFree {
		if toneKey == "" {
			toneKey = tone.Friendly
		}
		if !tone.ValidFree(toneKey) {
			return "", ErrInvalidTone
		}
	} else {
		if toneKey == "" {
			toneKey = tone.DefaultPaidAngel
		}
		toneKey = tone.AngelPersonaOrDefault(toneKey)
	}

	rec.Tone = toneKey
	rec.State = StateWaitingBasicInfo
	greeting := freeText(angelInitGreetings, toneKey)
	rec.AddMessage("assistant", greeting)
	return greeting, nil
}

func (m *Angelnum) Step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	from := rec.State
	reply, err := m.step(ctx, rec, in)
	logTransition(m.deps, m.Name(), from, rec.State, err)
	return reply, err
}

func (m *Angelnum) step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	switch rec.State {
	case StateWaitingBasicInfo:
		return m.stepBasicInfo(ctx, rec, in.Message)
	case StateWaitingAngelNumber:
		return m.stepAngelNumber(ctx, rec, in.Message)
	case StateAskingForQuestion:
		if hasNoQuestion(in.Message) {
			return m.close(rec, in.Message, angelNoQuestionEnd)
		}
		return m.stepConversation(ctx, rec, in.Message)
	case StateConversation:
		return m.stepConversation(ctx, rec, in.Message)
	case StateCompleted:
		return m.restart(rec, in.Message)
	}
	return nil, fmt.Errorf("angelnum: unknown state %q", rec.State)
}

func (m *Angelnum) stepBasicInfo(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	id, err := extract.ExtractIdentity(ctx, m.deps.LLM, msg, extract.Options{})
	if err != nil {
		var mfe *extract.MissingFieldsError
		if errors.As(err, &mfe) {
			rec.AddMessage("user", msg)
			text := freeText(angelIncompleteInfo, rec.Tone)
			rec.AddMessage("assistant", text)
			return &Reply{Text: text, RequiresInput: true}, nil
		}
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.Name = id.Name
	rec.Gender = id.Gender
	rec.Birthdate = id.Birthdate

	var greetingPart string
	switch rec.Tone {
	case tone.Friendly:
		greetingPart = fmt.Sprintf("%s,你好呀～我這邊已經收到你的資料囉 ✨\n\n", id.Name)
	case tone.Caring:
		greetingPart = fmt.Sprintf("%s,感謝你分享你的資料 🌙\n\n", id.Name)
	case tone.Ritual:
		greetingPart = fmt.Sprintf("%s,感謝你的回應 🕯️\n\n", id.Name)
	default:
		greetingPart = fmt.Sprintf("%s，已收到您的資料。\n\n", id.Name)
	}

	text := greetingPart + freeText(angelAskNumberPrompts, rec.Tone)
	rec.State = StateWaitingAngelNumber
	rec.AddMessage("assistant", text)
	return &Reply{
		Text:          text,
		RequiresInput: true,
		Fields:        map[string]any{"show_angel_number_selector": rec.Tier == session.TierFree},
	}, nil
}

func (m *Angelnum) stepAngelNumber(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	number := extractDigits(msg)
	if number == "" {
		rec.AddMessage("user", msg)
		text := freeText(angelInvalidNumber, rec.Tone)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text, RequiresInput: true}, nil
	}

	if rec.Tier == session.TierPaid && len(number) > maxPaidAngelDigits {
		rec.AddMessage("user", msg)
		var text string
		switch rec.Tone {
		case tone.Friendly:
			text = fmt.Sprintf("嗯...你輸入的數字「%s」有點太長囉 😅\n\n天使數字通常是 4 位數以內的喔～\n\n請重新輸入一個簡短一點的數字吧！像是「1111」、「333」或「88」✨", number)
		case tone.Caring:
			text = fmt.Sprintf("親愛的,你輸入的「%s」超過了 4 位數 🌙\n\n讓我們專注在更精煉的數字上吧～\n\n請輸入 4 位數以內的天使數字,像是「444」或「1212」💫", number)
		case tone.Ritual:
			text = fmt.Sprintf("數字「%s」超出了天使數字的規範。\n\n請輸入 4 位數以內的數字序列 🔮", number)
		default:
			text = fmt.Sprintf("數字「%s」超過 4 位數。請輸入 4 位數以內的天使數字。", number)
		}
		rec.AddMessage("assistant", text)
		return &Reply{Text: text, RequiresInput: true}, nil
	}

	intelligent := rec.Tier == session.TierPaid
	meaning := m.cache.Lookup(number, intelligent)

	system := angel.PromptContext(meaning, tone.StyleDescription(rec.Tone))
	user := fmt.Sprintf("使用者的姓名是 %s,他/她最近反覆看到天使數字 %s。\n\n請根據這個數字的核心意義,為 %s 提供完整、溫暖且具啟發性的解析,幫助他/她理解宇宙想要傳達的訊息。",
		rec.Name, number, rec.Name)

	temperature, maxTokens := 0.7, 500
	if rec.Tier == session.TierPaid {
		temperature, maxTokens = 1.0, 800
	}

	interpretation, err := extract.Interpret(ctx, m.deps.LLM, extract.InterpretRequest{
		System:      system,
		User:        user,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, err
	}

	var greeting string
	switch rec.Tone {
	case tone.Friendly:
		greeting = fmt.Sprintf("%s,我看到了你的天使數字 %s！✨\n\n", rec.Name, number)
	case tone.Caring:
		greeting = fmt.Sprintf("親愛的 %s,讓我為你解讀天使數字 %s 🌙\n\n", rec.Name, number)
	case tone.Ritual:
		greeting = fmt.Sprintf("%s,%s 的神聖啟示如下 🕯️\n\n", rec.Name, number)
	default:
		greeting = fmt.Sprintf("%s，關於天使數字 %s 的解讀如下：\n\n", rec.Name, number)
	}

	rec.AddMessage("user", msg)
	rec.AngelNumber = number

	text := greeting + interpretation
	fields := map[string]any{"angel_number": number}

	if rec.Tier == session.TierFree {
		rec.State = StateCompleted
		rec.AddMessage("assistant", text)
		return &Reply{Text: text, Fields: fields}, nil
	}

	text += freeText(angelAskQuestionSuffix, rec.Tone)
	rec.State = StateAskingForQuestion
	rec.AddMessage("assistant", text)
	fields["pattern"] = meaning.Pattern
	return &Reply{Text: text, RequiresInput: true, Fields: fields}, nil
}

func (m *Angelnum) stepConversation(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	if wantsToEnd(msg) {
		return m.close(rec, msg, angelConversationEnd)
	}

	// A bare 3-4 digit input that differs from the committed number is an
	// attempt to switch topics; the session stays locked to the first one.
	clean := strings.TrimSpace(msg)
	if isDigits(clean) && (len(clean) == 3 || len(clean) == 4) && clean != rec.AngelNumber {
		rec.AddMessage("user", msg)
		rec.State = StateConversation
		rec.AddMessage("assistant", topicLockedMessage)
		return &Reply{Text: topicLockedMessage, RequiresInput: true}, nil
	}

	meaning := m.cache.Lookup(rec.AngelNumber, rec.Tier == session.TierPaid)

	var history strings.Builder
	for _, h := range rec.RecentHistory(6, 100) {
		fmt.Fprintf(&history, "%s: %s\n", h.Role, h.Content)
	}

	system := fmt.Sprintf(`你是一位專業的天使數字解讀師,正在與使用者 %s 進行深度對話。

天使數字 %s 的核心意義：
%s

【對話背景】
你們正在討論天使數字 %s,以下是最近的對話內容：
%s

【語氣要求】
使用「%s」的語氣。

【回答要求】
1. 基於天使數字 %s 的核心意義來回答
2. 參考對話歷史,保持對話的連貫性
3. 提供具體、實用且有啟發性的回答
4. 不使用 markdown 格式標記
5. 回應長度控制在 350-500 字,請務必完整表達完整的意思
6. 避免給予絕對性的預測或判斷,改用建議導向的表達
7. 禁止使用「一定會」、「絕對」、「必須」等確定性表達,請使用「建議」、「可以考慮」、「或許」等引導性語言
8. 嚴格禁止使用「因果報應」四字,若需表達相關概念,請統一改用「因果回饋分析」。

請針對使用者的最新問題,提供有深度的回答。`,
		rec.Name, rec.AngelNumber, strings.Join(meaning.Meanings, "\n"),
		rec.AngelNumber, history.String(), tone.StyleDescription(rec.Tone), rec.AngelNumber)

	answer, err := extract.Interpret(ctx, m.deps.LLM, extract.InterpretRequest{
		System:      system,
		User:        fmt.Sprintf("使用者的最新問題：%s\n\n請根據對話背景和天使數字的意義,提供深度且連貫的回答。", msg),
		Temperature: 1.0,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.State = StateConversation
	text := answer + freeText(angelContinueSuffix, rec.Tone)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text, RequiresInput: true}, nil
}

func (m *Angelnum) close(rec *session.Record, msg string, table map[string]string) (*Reply, error) {
	rec.AddMessage("user", msg)
	rec.State = StateCompleted
	text := freeText(table, rec.Tone)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text}, nil
}

func (m *Angelnum) restart(rec *session.Record, msg string) (*Reply, error) {
	rec.AddMessage("user", msg)
	text := freeText(angelCompletedRestart, rec.Tone)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text}, nil
}

var _ Module = (*Angelnum)(nil)

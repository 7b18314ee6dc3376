package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhsu-tw/tianji/internal/almanac"
	"github.com/jhsu-tw/tianji/internal/dates"
	"github.com/jhsu-tw/tianji/internal/extract"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/tone"
)

// Auspicious module states.
const (
	StateWaitingCategoryAndDate  = "waiting_category_and_date"
	StateWaitingSpecificQuestion = "waiting_specific_question"
)

// Auspicious runs the date-selection flow.
type Auspicious struct {
	deps Deps
}

// NewAuspicious creates the auspicious-date module.
func NewAuspicious(deps Deps) *Auspicious {
	return &Auspicious{deps: deps}
}

func (m *Auspicious) Name() string { return session.ModuleAuspicious }

var auspiciousGreetings = map[string]string{
	tone.Friendly: "嗨嗨！歡迎來到擇日小幫手 😊\n\n想知道什麼時候適合搬家、簽約、開工嗎？\n\n我會幫你從黃曆中找出最適合的好日子！\n\n先告訴我你的姓名、性別和生日吧～\n\n例如：王小明 男 1990/07/12",
	tone.Caring:   "親愛的朋友,歡迎來到擇日空間 🌙\n\n人生中的重要時刻,都值得一個好日子來開啟。\n\n讓我陪你一起,從古老的黃曆智慧中找到屬於你的吉時。\n\n請先告訴我你的姓名、性別與生日,\n\n例如：王小明 男 1990/07/12",
	tone.Ritual:   "歡迎蒞臨擇日殿堂 🕯️\n\n天時地利,擇吉而行。\n\n黃曆之中,藏有天地運行的節律。\n\n請先稟報你的姓名、性別與生辰,\n\n例如：王小明 男 1990/07/12",
}

var auspiciousBasicInfoError = map[string]string{
	tone.Friendly: "咦～資料好像不太完整耶 😅\n\n請再輸入一次「姓名、性別、生日」喔！\n\n例如：王小明 男 1990/07/12",
	tone.Caring:   "親愛的,你的資料還少了一些 🌙\n\n請再提供一次「姓名、性別、生日」,\n\n例如：王小明 男 1990/07/12",
	tone.Ritual:   "稟報之資訊尚有缺漏。\n\n請重新呈報「姓名、性別、生辰」,\n\n例如：王小明 男 1990/07/12",
}

// categorySelectionPrompt lists the categories and asks for one plus a date.
func categorySelectionPrompt(toneKey, name string) string {
	var b strings.Builder
	switch toneKey {
	case tone.Friendly:
		fmt.Fprintf(&b, "%s,收到你的資料囉 ✨\n\n接下來,告訴我你想挑日子做什麼事吧！\n\n", name)
	case tone.Caring:
		fmt.Fprintf(&b, "%s,謝謝你的分享 🌙\n\n現在,讓我們一起看看你想為什麼事情挑選好日子～\n\n", name)
	case tone.Ritual:
		fmt.Fprintf(&b, "%s,你的資料已登錄 🕯️\n\n請擇一事項,以便為你推算吉日。\n\n", name)
	default:
		fmt.Fprintf(&b, "%s，已收到您的資料。\n\n請選擇您想挑選吉日的事項。\n\n", name)
	}
	for i, c := range almanac.Categories() {
		fmt.Fprintf(&b, "%d. %s(%s)\n", i+1, c.Name, c.Examples)
	}
	b.WriteString("\n請告訴我分類和預計的日期,\n\n例如：「家庭居所，2025-12-15」")
	return b.String()
}

// categoryDateReprompt nudges after an unparseable category-and-date message.
const categoryDateReprompt = "請選擇分類並告訴我日期～\n\n例如：「家庭居所，2025-12-15」"

func (m *Auspicious) Init(rec *session.Record, toneKey string) (string, error) {
	// Both tiers use the three base tones. Free rejects an unknown tone,
	// paid falls back to friendly.
	if rec.Tier == session.TierFree {
		if toneKey == "" || !tone.ValidFree(toneKey) {
			return "", ErrInvalidTone
		}
	} else if !tone.ValidFree(toneKey) {
		toneKey = tone.Friendly
	}

	rec.Tone = toneKey
	rec.State = StateWaitingBasicInfo
	greeting := auspiciousGreetings[toneKey]
	rec.AddMessage("assistant", greeting)
	return greeting, nil
}

func (m *Auspicious) Step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	from := rec.State
	reply, err := m.step(ctx, rec, in)
	logTransition(m.deps, m.Name(), from, rec.State, err)
	return reply, err
}

func (m *Auspicious) step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	switch rec.State {
	case StateWaitingBasicInfo:
		return m.stepBasicInfo(ctx, rec, in.Message)
	case StateWaitingCategoryAndDate:
		return m.stepCategoryAndDate(rec, in)
	case StateWaitingSpecificQuestion:
		return m.stepSpecificQuestion(ctx, rec, in.Message)
	case StateCompleted:
		text := "本次擇日已完成。若想為其他事項挑選吉日，請重新開始一段對話。"
		rec.AddMessage("user", in.Message)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text}, nil
	}
	return nil, fmt.Errorf("auspicious: unknown state %q", rec.State)
}

func (m *Auspicious) stepBasicInfo(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	id, err := extract.ExtractIdentity(ctx, m.deps.LLM, msg, extract.Options{})
	if err != nil {
		var mfe *extract.MissingFieldsError
		if errors.As(err, &mfe) {
			rec.AddMessage("user", msg)
			text := freeText(auspiciousBasicInfoError, rec.Tone)
			rec.AddMessage("assistant", text)
			return &Reply{Text: text, RequiresInput: true}, nil
		}
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.Name = id.Name
	rec.Gender = id.Gender
	rec.Birthdate = id.Birthdate
	rec.State = StateWaitingCategoryAndDate

	text := categorySelectionPrompt(rec.Tone, id.Name)
	rec.AddMessage("assistant", text)
	return &Reply{
		Text:          text,
		RequiresInput: true,
		Fields:        map[string]any{"categories": almanac.Categories()},
	}, nil
}

// parseCategoryAndDate resolves the category and date from structured input
// fields, falling back to splitting free text like 「家庭居所，2025-12-15」.
func parseCategoryAndDate(in Input) (almanac.Category, string, bool) {
	cat, catOK := almanac.CategoryByKey(in.Category)
	if !catOK && in.Category != "" {
		cat, catOK = almanac.MatchCategory(in.Category)
	}

	date := strings.TrimSpace(in.SelectedDate)

	if !catOK || date == "" {
		for _, part := range strings.FieldsFunc(in.Message, func(r rune) bool {
			return r == ',' || r == '，' || r == '、' || r == ' '
		}) {
			part = strings.TrimSpace(strings.Trim(part, "「」"))
			if part == "" {
				continue
			}
			if !catOK {
				if c, ok := almanac.MatchCategory(part); ok {
					cat, catOK = c, true
					continue
				}
			}
			if date == "" {
				if _, err := dates.Parse(part); err == nil {
					date = part
				}
			}
		}
	}

	if !catOK || date == "" {
		return almanac.Category{}, "", false
	}
	normalized, err := dates.Normalize(date)
	if err != nil {
		return almanac.Category{}, "", false
	}
	return cat, normalized, true
}

func (m *Auspicious) stepCategoryAndDate(rec *session.Record, in Input) (*Reply, error) {
	cat, date, ok := parseCategoryAndDate(in)
	if !ok {
		rec.AddMessage("user", in.Message)
		rec.AddMessage("assistant", categoryDateReprompt)
		return &Reply{Text: categoryDateReprompt, RequiresInput: true}, nil
	}

	rec.AddMessage("user", in.Message)
	rec.Category = cat.Key
	rec.SelectedDate = date
	rec.State = StateWaitingSpecificQuestion

	text := fmt.Sprintf("好的！你選擇了「%s」，日期是「%s」。\n\n請具體描述你想做的事情，例如：搬家到新家、簽約買房、開業典禮等。", cat.Name, date)
	rec.AddMessage("assistant", text)
	return &Reply{
		Text:          text,
		RequiresInput: true,
		Fields:        map[string]any{"category": cat.Key, "selected_date": date},
	}, nil
}

func (m *Auspicious) stepSpecificQuestion(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	cat, _ := almanac.CategoryByKey(rec.Category)

	d, err := dates.Parse(rec.SelectedDate)
	if err != nil {
		return nil, fmt.Errorf("auspicious: stored date %q: %w", rec.SelectedDate, err)
	}
	month := fmt.Sprintf("%04d-%02d", d.Year, d.Month)

	monthContent, err := m.deps.Almanac.MonthContent(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("almanac month %s: %v: %w", month, err, extract.ErrUnavailable)
	}
	if monthContent == "" {
		rec.AddMessage("user", msg)
		rec.Category = ""
		rec.SelectedDate = ""
		rec.State = StateWaitingCategoryAndDate
		text := fmt.Sprintf("抱歉，目前還沒有 %d 年 %d 月的黃曆資料，請換一個日期。\n\n%s", d.Year, d.Month, categoryDateReprompt)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text, RequiresInput: true}, nil
	}

	toneName, _ := tone.FreeDescription(rec.Tone)
	system := fmt.Sprintf(`你是一位精通黃曆擇日的命理師,正在為 %s 挑選吉日。

使用者的需求：
- 事項分類：%s(%s)
- 預計日期：%s
- 具體想做的事：%s

%s 月份的黃曆資料如下：
%s

【回應要求】
1. 判斷預計日期 %s 是否適合「%s」這件事,並說明黃曆上的宜忌依據
2. 若該日不宜,從同月份中推薦 2-3 個更合適的日子,並說明理由
3. 使用「%s」的語氣
4. 不使用 markdown 格式標記
5. 回應長度控制在 250-350 字`,
		rec.Name,
		cat.Name, cat.Description,
		rec.SelectedDate, msg,
		month, monthContent,
		rec.SelectedDate, msg,
		toneName)

	answer, err := extract.Interpret(ctx, m.deps.LLM, extract.InterpretRequest{
		System:      system,
		User:        fmt.Sprintf("請為「%s」分析 %s 是否為吉日,並給出建議。", msg, rec.SelectedDate),
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.SpecificQuestion = msg
	rec.State = StateCompleted
	rec.AddMessage("assistant", answer)
	return &Reply{Text: answer, Fields: map[string]any{
		"category":      rec.Category,
		"selected_date": rec.SelectedDate,
	}}, nil
}

var _ Module = (*Auspicious)(nil)

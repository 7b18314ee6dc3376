package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jhsu-tw/tianji/internal/extract"
	"github.com/jhsu-tw/tianji/internal/jiao"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/tone"
)

// Divination module states.
const StateWaitingQuestion = "waiting_question"

// Divination runs the coin-block (擲筊) flow.
type Divination struct {
	deps Deps
}

// NewDivination creates the divination module.
func NewDivination(deps Deps) *Divination {
	return &Divination{deps: deps}
}

func (m *Divination) Name() string { return session.ModuleDivination }

var divinationFreeGreetings = map[string]string{
	tone.Friendly: "哈囉！歡迎來到擲筊問事空間 😊\n\n我會陪你一起向神明請示心中的疑問～\n\n在開始之前,先告訴我你的姓名、性別和生日吧！\n\n例如：王小明 男 1990/07/12",
	tone.Caring:   "親愛的朋友,歡迎來到這個寧靜的問事空間 🌙\n\n無論你心中有什麼困惑,神明都會溫柔地傾聽。\n\n請先告訴我你的姓名、性別與生日,\n\n讓我為你開啟這場心靈的對話。\n\n例如：王小明 男 1990/07/12",
	tone.Ritual:   "歡迎蒞臨擲筊問事殿堂 🕯️\n\n誠心所至,金石為開。\n\n請先稟報你的姓名、性別與生辰,\n\n以示對神明的敬意。\n\n例如：王小明 男 1990/07/12",
}

var divinationBasicInfoSuccess = map[string]string{
	tone.Friendly: "%s,你好！我已經收到你的資料囉 ✨\n\n現在,請告訴我你想要請示神明的問題吧！\n\n無論是工作、感情、健康還是其他煩惱,都可以問喔 😊",
	tone.Caring:   "%s,謝謝你願意分享 🌙\n\n現在,請把你心中的疑問告訴我吧。\n\n神明會用祂的方式給你指引,我會陪著你一起等待答案 💕",
	tone.Ritual:   "%s,你的誠意已達天聽 🕯️\n\n請稟明你欲請示之事,\n\n神明將以聖筊、笑筊或陰筊為你指點迷津。",
}

var divinationBasicInfoError = map[string]string{
	tone.Friendly: "咦～我好像沒有收到完整的資料耶 😅\n\n請再輸入一次「姓名、性別、生日」喔！\n\n例如：王小明 男 1990/07/12",
	tone.Caring:   "親愛的,你的資料好像還少了一些 🌙\n\n請再提供一次「姓名、性別、生日」,\n\n例如：王小明 男 1990/07/12",
	tone.Ritual:   "稟報之資訊尚有缺漏。\n\n請重新呈報「姓名、性別、生辰」,\n\n例如：王小明 男 1990/07/12",
}

// Free-tier canned interpretations keyed by tone then result.
var divinationFreeResults = map[string]map[jiao.Result]string{
	tone.Friendly: {
		jiao.Holy:     "%s,恭喜你擲出了聖筊！🎉\n\n神明已經聽到你的問題,並且給了肯定的答覆 ✨\n\n這表示你所問的事情,神明認為可行、值得去做！\n\n放心大膽地往前走吧,神明會保佑你的 😊",
		jiao.Laughing: "%s,你擲出了笑筊 😄\n\n神明笑而不答,可能是你的問題不夠明確,\n\n或是時機還沒有成熟喔～\n\n建議你把問題想得更清楚一點,改天再來請示吧！",
		jiao.Negative: "%s,這次擲出的是陰筊 🌧️\n\n神明對這件事持保留態度,可能需要再考慮考慮。\n\n別灰心！這不代表不行,只是提醒你要多想想、多準備。\n\n調整一下方向,或許會有不一樣的結果喔 💪",
	},
	tone.Caring: {
		jiao.Holy:     "%s,神明給了你聖筊 🌟\n\n祂聽見了你的心聲,並溫柔地給予肯定。\n\n你所掛念的事情,可以安心前行。\n\n願你帶著這份祝福,勇敢地走下去 💕",
		jiao.Laughing: "%s,神明以笑筊回應你 🌙\n\n祂笑著,也許是想告訴你,問題的答案還在醞釀中。\n\n不要著急,給自己一點時間,把心中的疑問沉澱清楚,\n\n再來與神明對話吧 🕊️",
		jiao.Negative: "%s,這次是陰筊 🌧️\n\n神明希望你再多想一想,這不是拒絕,而是一份提醒。\n\n有時候,暫停是為了更好的出發。\n\n請溫柔地對待自己,重新梳理後再來請示 💕",
	},
	tone.Ritual: {
		jiao.Holy:     "%s,聖筊已現 ☯️\n\n一陰一陽,天地相合。\n\n神明允諾你所請示之事,此乃吉兆。\n\n持心正念,依願而行,神明自當庇佑。",
		jiao.Laughing: "%s,笑筊已現 ☯️\n\n雙陽朝天,神明笑而不語。\n\n所問之事尚未明朗,或問法有誤,或時機未至。\n\n請靜心重整思緒,擇日再來請示。",
		jiao.Negative: "%s,陰筊已現 ☯️\n\n雙陰伏地,神明未允所請。\n\n此事宜緩不宜急,宜靜不宜動。\n\n請重新審視所求,或另尋他法,再行請示。",
	},
}

// paidAskQuestionSuffix follows the first interpretation on the paid tier.
const divinationAskQuestionSuffix = "\n\n如果有什麼還不清楚的，或是想再深入了解，請繼續提問。我會盡力為你解答。"

// divinationCloseText ends a paid dialogue.
const divinationCloseText = "既然沒有其他問題，我就先退駕了。願你心存善念，平安喜樂。"

// divinationNoQuestion matches short closing phrases before the followup loop.
var divinationNoQuestion = []string{"沒有", "没有", "不用", "沒了", "没了", "好了", "謝謝", "谢谢", "感恩", "不需要", "不用了", "再見", "再见", "掰掰"}

func divinationWantsToClose(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	if utf8.RuneCountInString(s) >= 10 {
		return false
	}
	for _, kw := range divinationNoQuestion {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func (m *Divination) Init(rec *session.Record, toneKey string) (string, error) {
	if rec.Tier == session.TierFree {
		if toneKey == "" || !tone.ValidFree(toneKey) {
			return "", ErrInvalidTone
		}
		rec.Tone = toneKey
		rec.State = StateWaitingBasicInfo
		greeting := divinationFreeGreetings[toneKey]
		rec.AddMessage("assistant", greeting)
		return greeting, nil
	}

	deity := tone.DeityOrDefault(toneKey)
	rec.Tone = deity.Key
	rec.State = StateWaitingBasicInfo
	greeting := deity.Greeting + "\n\n請告訴我你的姓名、性別與生日。\n例如：王小明 男 1990/07/12"
	rec.AddMessage("assistant", greeting)
	return greeting, nil
}

func (m *Divination) Step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	from := rec.State
	reply, err := m.step(ctx, rec, in)
	logTransition(m.deps, m.Name(), from, rec.State, err)
	return reply, err
}

func (m *Divination) step(ctx context.Context, rec *session.Record, in Input) (*Reply, error) {
	switch rec.State {
	case StateWaitingBasicInfo:
		return m.stepBasicInfo(ctx, rec, in.Message)
	case StateWaitingQuestion:
		return m.stepQuestion(ctx, rec, in.Message)
	case StateAskingForQuestion:
		return m.stepFollowup(ctx, rec, in.Message)
	case StateCompleted:
		text := "本次問事已結束。若有新的疑問，請重新開始一段對話。"
		rec.AddMessage("user", in.Message)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text}, nil
	}
	return nil, fmt.Errorf("divination: unknown state %q", rec.State)
}

func (m *Divination) stepBasicInfo(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	id, err := extract.ExtractIdentity(ctx, m.deps.LLM, msg, extract.Options{})
	if err != nil {
		var mfe *extract.MissingFieldsError
		if errors.As(err, &mfe) {
			rec.AddMessage("user", msg)
			var text string
			if rec.Tier == session.TierFree {
				text = divinationBasicInfoError[rec.Tone]
			} else {
				text = "資料不完整。請重新提供「姓名、性別、生日」，以便我為你啟動儀式。"
			}
			rec.AddMessage("assistant", text)
			return &Reply{Text: text, RequiresInput: true}, nil
		}
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.Name = id.Name
	rec.Gender = id.Gender
	rec.Birthdate = id.Birthdate
	rec.State = StateWaitingQuestion

	var text string
	if rec.Tier == session.TierFree {
		text = fmt.Sprintf(divinationBasicInfoSuccess[rec.Tone], id.Name)
	} else {
		text = fmt.Sprintf("%s，資料已確認。\n請告訴我你此刻想向神明請示的問題。\n我將為你擲筊，指點迷津。", id.Name)
	}
	rec.AddMessage("assistant", text)
	return &Reply{Text: text, RequiresInput: true}, nil
}

func (m *Divination) stepQuestion(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	result := jiao.Draw(m.deps.Rand)
	info := result.Info()

	if rec.Tier == session.TierFree {
		rec.AddMessage("user", msg)
		rec.Question = msg
		rec.DrawResult = string(result)
		rec.State = StateCompleted
		text := fmt.Sprintf(divinationFreeResults[rec.Tone][result], rec.Name)
		rec.AddMessage("assistant", text)
		return &Reply{Text: text, Fields: map[string]any{
			"draw_result": string(result),
			"draw_symbol": info.Symbol,
		}}, nil
	}

	deity := tone.DeityOrDefault(rec.Tone)
	system := fmt.Sprintf(`你是%s,正透過擲筊為信眾解惑。

【你的說話風格】
%s
關鍵詞：%s
範例：%s

信眾 %s 誠心向你請示：「%s」

擲筊結果：%s(%s)
筊象含義：%s

【回應要求】
1. 以%s的口吻,針對信眾的問題與筊象結果給予開示
2. 結合筊象的含義,給出具體的建議或提醒
3. 不使用 markdown 格式標記
4. 回應長度控制在 150-200 字`,
		deity.Name, deity.Style, deity.Keywords, deity.Example,
		rec.Name, msg,
		info.Name, info.Symbol, result.PromptMeaning(),
		deity.Name)

	interpretation, err := extract.Interpret(ctx, m.deps.LLM, extract.InterpretRequest{
		System:      system,
		User:        fmt.Sprintf("請為信眾的問題「%s」開示。", msg),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.Question = msg
	rec.DrawResult = string(result)
	rec.State = StateAskingForQuestion
	text := fmt.Sprintf("%s %s\n\n%s%s", info.Symbol, info.Name, interpretation, divinationAskQuestionSuffix)
	rec.AddMessage("assistant", text)
	return &Reply{Text: text, RequiresInput: true, Fields: map[string]any{
		"draw_result": string(result),
		"draw_symbol": info.Symbol,
	}}, nil
}

func (m *Divination) stepFollowup(ctx context.Context, rec *session.Record, msg string) (*Reply, error) {
	if divinationWantsToClose(msg) {
		rec.AddMessage("user", msg)
		rec.State = StateCompleted
		rec.AddMessage("assistant", divinationCloseText)
		return &Reply{Text: divinationCloseText}, nil
	}

	deity := tone.DeityOrDefault(rec.Tone)
	result := jiao.Result(rec.DrawResult)
	info := result.Info()

	var history strings.Builder
	for _, h := range rec.RecentHistory(5, 0) {
		role := "信眾"
		if h.Role == "assistant" {
			role = "神明"
		}
		fmt.Fprintf(&history, "%s：%s\n", role, h.Content)
	}

	system := fmt.Sprintf(`你是%s,正在與信眾 %s 對話。

【你的說話風格】
%s
關鍵詞：%s

信眾先前請示的問題：「%s」
擲筊結果：%s,%s

【先前的對話】
%s

【回應要求】
1. 延續先前的開示,回答信眾的追問
2. 保持%s的口吻與立場
3. 不使用 markdown 格式標記
4. 回應長度控制在 100-150 字`,
		deity.Name, rec.Name,
		deity.Style, deity.Keywords,
		rec.Question, info.Name, result.PromptMeaning(),
		history.String(),
		deity.Name)

	answer, err := extract.Interpret(ctx, m.deps.LLM, extract.InterpretRequest{
		System:      system,
		User:        fmt.Sprintf("信眾的追問：%s", msg),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return nil, err
	}

	rec.AddMessage("user", msg)
	rec.AddMessage("assistant", answer)
	return &Reply{Text: answer, RequiresInput: true}, nil
}

var _ Module = (*Divination)(nil)

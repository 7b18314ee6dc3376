// Package tone defines the voice a session speaks in. Free sessions choose
// one of three house styles; paid sessions choose a persona, either an
// archangel style prompt or a full deity character.
package tone

import "fmt"

// Free tone keys.
const (
	Friendly = "friendly"
	Caring   = "caring"
	Ritual   = "ritual"
)

// DefaultPaidAngel is used when a paid angel-persona key is unknown.
const DefaultPaidAngel = "guan_yu"

// DefaultDeity is used when a paid deity key is unknown.
const DefaultDeity = "guan_gong"

// freeDescriptions are the style instructions for the free tones.
var freeDescriptions = map[string]string{
	Friendly: "親切輕鬆,像朋友聊天一樣溫暖自然",
	Caring:   "溫暖關懷,像靈性導師般深情陪伴",
	Ritual:   "莊重神聖,充滿儀式感與神性",
}

// FreeTones lists the free tone keys in display order.
func FreeTones() []string {
	return []string{Friendly, Caring, Ritual}
}

// ValidFree reports whether key is a free tone.
func ValidFree(key string) bool {
	_, ok := freeDescriptions[key]
	return ok
}

// FreeDescription returns the style instruction for a free tone.
func FreeDescription(key string) (string, error) {
	desc, ok := freeDescriptions[key]
	if !ok {
		return "", fmt.Errorf("unknown free tone: %s", key)
	}
	return desc, nil
}

// angelPersonas are the paid archangel style prompts.
var angelPersonas = map[string]string{
	"guan_yu": "請使用關聖帝君的莊嚴、正直語氣,帶有沉穩節奏。關鍵語彙:忠義、正道、守信、因果、明辨是非。" +
		"嚴格警告:禁止使用任何文言文詞彙(汝、吾、乃、之、於、若、然、故、是以、當、須、方能、焉、矣、已為汝析得、為汝、汝之等)," +
		"必須100%使用現代中文(你、我、的、在、如果、因此、應該、需要、能夠、已為你分析、為你、你的)。" +
		"語調莊重威嚴但完全現代化表達。同時,嚴格禁止提到「因果報應」,請統一改用「因果回饋分析」或「業力課題」。",
	"michael":  "請使用大天使米迦勒的堅定、有領導感語氣,帶安定力量。關鍵語彙:勇氣、信任、光明、防禦、戰士。語調堅定且充滿力量。",
	"gabriel":  "請使用大天使加百列的溫柔中帶清晰指引語氣,像傳信者。關鍵語彙:啟發、信息、真理、溝通、覺醒。語調溫和且具有啟發性。",
	"raphael":  "請使用大天使拉斐爾的柔和、慈悲、安撫人心語氣。關鍵語彙:療癒、平衡、綠光、修復、愛自己。語調溫暖且充滿愛意。",
	"uriel":    "請使用大天使烏列爾的沈穩、智者風格語氣,講話慢而深。關鍵語彙:洞察、智慧、火焰、真理、學習。語調深沈且充滿智慧。",
	"zadkiel":  "請使用大天使沙德基爾的柔中帶慈悲語氣,像引導人放下怨恨的導師。關鍵語彙:寬恕、紫焰、轉化、慈悲、理解。語調慈悲且包容。",
	"jophiel":  "請使用大天使喬菲爾的溫柔、鼓舞、偏女性化語氣,有藝術氣息。關鍵語彙:美感、靈感、光彩、愛自己。語調優雅且具有美感。",
	"chamuel":  "請使用大天使沙木爾的溫暖、包容語氣,像心理諮商師。關鍵語彙:愛、關係、理解、和解、自我接納。語調溫暖且充滿愛。",
	"metatron": "請使用大天使梅塔特隆的權威、理性語氣,有數據感與宇宙秩序感。關鍵語彙:紀律、次序、靈性法則、神聖幾何。語調理性且系統化。",
	"ariel":    "請使用大天使阿列爾的豐盛、自然語氣,帶大地母親般的滋養感。關鍵語彙:豐盛、大地、自然、繁榮、創造。語調溫和且充滿生命力。",
}

// AngelPersonas lists the paid archangel persona keys in display order.
func AngelPersonas() []string {
	return []string{
		"guan_yu", "michael", "gabriel", "raphael", "uriel",
		"zadkiel", "jophiel", "chamuel", "metatron", "ariel",
	}
}

// ValidAngelPersona reports whether key is a paid archangel persona.
func ValidAngelPersona(key string) bool {
	_, ok := angelPersonas[key]
	return ok
}

// AngelPersonaOrDefault returns a valid persona key, falling back to
// DefaultPaidAngel. Paid tone selection never hard-rejects.
func AngelPersonaOrDefault(key string) string {
	if ValidAngelPersona(key) {
		return key
	}
	return DefaultPaidAngel
}

// StyleDescription resolves any tone key, free or archangel, to its style
// instruction. Unknown keys fall back to the default archangel.
func StyleDescription(key string) string {
	if desc, ok := freeDescriptions[key]; ok {
		return desc
	}
	if desc, ok := angelPersonas[key]; ok {
		return desc
	}
	return angelPersonas[DefaultPaidAngel]
}

// Package angel holds the angel-number meaning tables and the pattern
// analyzer that interprets arbitrary 3-4 digit numbers.
package angel

import (
	"fmt"
	"strings"
)

// Meaning describes one angel number.
type Meaning struct {
	Number   string   `json:"number"`
	Pattern  string   `json:"pattern"`
	Title    string   `json:"title"`
	Meanings []string `json:"meanings"`
	Keywords []string `json:"keywords"`
}

// basicEnergy maps single digits to their base energy description.
var basicEnergy = map[byte]string{
	'1': "開創、行動、領導、顯化起點",
	'2': "和諧、合作、平衡、信任",
	'3': "表達、創造、靈感、成長",
	'4': "結構、穩定、秩序、責任",
	'5': "變化、自由、探索、突破",
	'6': "愛、家庭、治癒、服務",
	'7': "靈性、智慧、內省、覺醒",
	'8': "財富、力量、循環、豐盛",
	'9': "完成、釋放、轉化、慈悲",
	'0': "無限、原點、靈性重置、全域",
}

// specialNumbers carry fixed meanings regardless of tier.
var specialNumbers = map[string]string{
	"0000": "全域重置與靈性原點",
	"1010": "覺醒與新循環開端",
	"2020": "遠景校準、目標對焦",
	"3030": "創意的週期性爆發",
	"4040": "在混亂中重建秩序",
	"5050": "自由與責任的平衡",
	"6060": "愛與照顧的互惠循環",
	"7070": "內在導師覺醒",
	"8080": "財富循環與權力平衡",
	"9090": "完成一輪學習、迎接新旅程",
}

// fixedMeanings are the canonical interpretations for the classic
// four-digit repetitions, served verbatim on the free tier.
var fixedMeanings = map[string]Meaning{
	"1111": {
		Number:  "1111",
		Pattern: "repetition",
		Title:   "1111 - 新開始與精神覺醒",
		Meanings: []string{
			"新開始與精神覺醒:象徵全新旅程的開啟,提醒專注當下,與生命使命保持一致。",
			"思維具化與宇宙支持:思想正在快速具現化,宇宙回應你保持正向思考。",
			"領導力爆發與自我實現:代表行動與成就的時刻來臨,展現獨特才華。",
		},
		Keywords: []string{"新開始", "精神覺醒", "思維具化", "領導力", "自我實現"},
	},
	"2222": {
		Number:  "2222",
		Pattern: "repetition",
		Title:   "2222 - 和諧與平衡",
		Meanings: []string{
			"和諧、平衡與精神支援:提醒你維持內在與人際的穩定與寧靜。",
			"持續進展與成功軌道:努力的成果正在累積,正走在通往成功的路上。",
			"人際連結與情感平衡:象徵愛情與關係的穩定,甚至預示靈魂伴侶的出現。",
		},
		Keywords: []string{"和諧", "平衡", "持續進展", "人際連結", "情感平衡"},
	},
	"3333": {
		Number:  "3333",
		Pattern: "repetition",
		Title:   "3333 - 成長與創意",
		Meanings: []string{
			"成長與擴展:代表個人成長、視野拓展與新機會的到來。",
			"創意與自我表達:鼓勵釋放創造力、真實表達自我。",
			"靈性引導與支援:暗示天使與高等力量的陪伴與引導。",
		},
		Keywords: []string{"成長", "擴展", "創意", "自我表達", "靈性引導"},
	},
	"4444": {
		Number:  "4444",
		Pattern: "repetition",
		Title:   "4444 - 穩定與守護",
		Meanings: []string{
			"穩定與堅實基礎:提醒築基與耐心,強調長遠的穩固發展。",
			"感恩與內在力量:要以感恩之心面對生活,並善用自身韌性。",
			"神聖守護與正路同行:天使在守護,確認你正走在正確的方向上。",
		},
		Keywords: []string{"穩定", "堅實基礎", "感恩", "神聖守護", "正確方向"},
	},
	"5555": {
		Number:  "5555",
		Pattern: "repetition",
		Title:   "5555 - 重大轉變",
		Meanings: []string{
			"重大轉變與成長:象徵人生進入劇烈變化的階段,迎接新挑戰。",
			"積極變革與正向演化:雖然變動,但方向朝更好的未來前進。",
			"自由與靈性覺醒:呼喚你擁抱真實自我,追求內在的自由。",
		},
		Keywords: []string{"重大轉變", "成長", "變革", "自由", "靈性覺醒"},
	},
	"6666": {
		Number:  "6666",
		Pattern: "repetition",
		Title:   "6666 - 愛與和諧",
		Meanings: []string{
			"愛與家庭的和諧:強調家庭、情感與內心的平衡。",
			"愛的回歸與支持:象徵同理心與支持網絡的重要性。",
			"平衡物質與靈性:提醒兼顧精神層次與現實生活。",
		},
		Keywords: []string{"愛", "家庭和諧", "支持", "平衡", "物質與靈性"},
	},
	"7777": {
		Number:  "7777",
		Pattern: "repetition",
		Title:   "7777 - 靈性覺醒",
		Meanings: []string{
			"靈性覺醒與神聖引導:象徵靈性開啟與信任直覺。",
			"啟迪、堅持與智慧:鼓勵勇敢、持續並擁抱成長。",
			"療癒結束與靈魂突破:暗示困境將結束,靈魂進入新週期。",
		},
		Keywords: []string{"靈性覺醒", "神聖引導", "智慧", "療癒", "靈魂突破"},
	},
	"8888": {
		Number:  "8888",
		Pattern: "repetition",
		Title:   "8888 - 豐盛與財富",
		Meanings: []string{
			"豐盛與財富臨近:象徵財運與繁榮即將到來。",
			"無限豐盈的能量:提醒你把握機會,吸引成功。",
			"自我成長與指引:代表進入新的自我探索與提升階段。",
		},
		Keywords: []string{"豐盛", "財富", "繁榮", "無限能量", "自我成長"},
	},
	"9999": {
		Number:  "9999",
		Pattern: "repetition",
		Title:   "9999 - 完成與新旅程",
		Meanings: []string{
			"完成與迎向新旅程:象徵一段使命的圓滿結束,準備展開新篇章。",
			"靈性任務完成、迎接革新:意味重要目標已達成,新的方向即將出現。",
			"循環完結與心靈轉化:提醒你一個階段結束,進入靈性蛻變。",
		},
		Keywords: []string{"完成", "新旅程", "圓滿", "革新", "心靈轉化"},
	},
}

// BasicEnergy returns the base energy text for a digit, or a generic
// fallback for anything outside 0-9.
func BasicEnergy(digit byte) string {
	if e, ok := basicEnergy[digit]; ok {
		return e
	}
	return "神聖能量"
}

// Lookup returns the meaning for a number. With intelligent analysis the
// pattern analyzer always runs; otherwise the fixed table is served when it
// has an entry, and the analyzer only covers numbers outside the table.
func Lookup(number string, intelligent bool) Meaning {
	if intelligent {
		return AnalyzePattern(number)
	}
	if m, ok := fixedMeanings[number]; ok {
		return m
	}
	return AnalyzePattern(number)
}

// PromptContext renders a meaning as system-prompt material for an
// interpretation call.
func PromptContext(m Meaning, toneDescription string) string {
	var b strings.Builder
	b.WriteString("你是一位專業的天使數字解讀師。\n\n")
	fmt.Fprintf(&b, "天使數字 %s 的核心意義:\n\n", m.Number)
	for _, meaning := range m.Meanings {
		fmt.Fprintf(&b, "- %s\n", meaning)
	}
	b.WriteString("\n請根據這些核心意義,為使用者提供深度、溫暖且具啟發性的解析。\n\n")
	fmt.Fprintf(&b, "語氣要求:%s\n", toneDescription)
	b.WriteString("字數要求:至少 300 字\n")
	b.WriteString("格式要求:不使用 markdown 格式標記,使用純文字和換行\n\n")
	b.WriteString("請提供:\n")
	b.WriteString("1. 這個數字在此刻出現的意義\n")
	b.WriteString("2. 天使想要傳達的核心訊息\n")
	b.WriteString("3. 對使用者生活的具體建議\n")
	b.WriteString("4. 如何將這份指引運用在日常中\n")
	return b.String()
}

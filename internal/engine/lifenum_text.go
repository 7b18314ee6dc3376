package engine

import (
	"fmt"
	"strings"

	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/tone"
)

// pronoun picks the gendered second-person pronoun used in paid prompts.
func pronoun(gender string) string {
	if gender == "female" {
		return "妳"
	}
	return "你"
}

// lifeTopic describes one numerology topic.
type lifeTopic struct {
	Key     string
	Display string
	// Noun slots into the continue-prompt templates ("您的X力量已經揭示").
	Noun string
	// Subject slots into the question-prompt templates ("關於X的事").
	Subject     string
	Description string
	Free        bool
}

var lifeTopics = []lifeTopic{
	{"core", "核心生命靈數", "核心生命靈數", "性格天賦或人生方向", "適合想了解性格天賦、人生方向、內在本質的人", true},
	{"birthday", "生日數", "天賦", "天賦才華或人生", "適合想發現天生才華、特殊能力的人", true},
	{"year", "流年數", "流年", "流年運勢或生活規劃", "適合想了解當年運勢、年度重點、把握時機的人", true},
	{"grid", "九宮格", "九宮格", "九宮格特質或生活", "適合想全面分析天賦優勢、內在特質、需要發展面向的人", true},
	{"soul", "靈魂數", "靈魂數", "內心渴望或精神追求", "適合想了解內心深層渴望、精神追求、內在動機的人", false},
	{"personality", "人格數", "人格數", "外在形象或人際互動", "適合想了解外在人格、他人對你的第一印象、社交形象的人", false},
	{"expression", "表達數", "表達數", "表達風格或溝通方式", "適合想了解整體表達風格、溝通方式、社交模式的人", false},
	{"maturity", "成熟數", "成熟數", "人生後半段或內在潛力", "適合想了解人生後半段發展方向、內在潛力覺醒、成熟期使命的人", false},
	{"challenge", "挑戰數", "挑戰數", "人生課題或挑戰", "適合想了解需要克服的人生課題與成長關卡的人", false},
	{"karma", "業力數", "業力數", "業力課題或今生功課", "適合想了解前世未竟課題與今生功課的人", false},
}

var lifeTopicsByKey = func() map[string]lifeTopic {
	m := make(map[string]lifeTopic, len(lifeTopics))
	for _, t := range lifeTopics {
		m[t.Key] = t
	}
	return m
}()

// topicAliases map extra display spellings onto topic keys.
var topicAliases = map[string]string{
	"核心生命靈數": "core",
	"主命數":    "core",
	"核心數":    "core",
	"生日數":    "birthday",
	"流年數":    "year",
	"流年":     "year",
	"九宮格":    "grid",
	"靈魂數":    "soul",
	"人格數":    "personality",
	"表達數":    "expression",
	"成熟數":    "maturity",
	"挑戰數":    "challenge",
	"業力數":    "karma",
}

// matchTopic finds a topic named directly in the text. Longer aliases are
// checked first so 核心生命靈數 is not shadowed by a shorter name.
func matchTopic(text string) (lifeTopic, bool) {
	best := ""
	for alias := range topicAliases {
		if strings.Contains(text, alias) && len(alias) > len(best) {
			best = alias
		}
	}
	if best == "" {
		return lifeTopic{}, false
	}
	return lifeTopicsByKey[topicAliases[best]], true
}

// tierTopics returns the topics available on a tier, in display order.
func tierTopics(tier string) []lifeTopic {
	if tier == session.TierPaid {
		return lifeTopics
	}
	var out []lifeTopic
	for _, t := range lifeTopics {
		if t.Free {
			out = append(out, t)
		}
	}
	return out
}

// coreCategories are the refinement directions of the core topic.
var coreCategories = []string{"財運事業", "家庭人際", "自我成長", "目標規劃"}

func matchCoreCategory(text string) (string, bool) {
	for _, c := range coreCategories {
		if strings.Contains(text, c) {
			return c, true
		}
	}
	return "", false
}

var lifenumFreeGreetings = map[string]string{
	tone.Friendly: "嗨嗨！歡迎來到生命靈數的世界 🌸\n\n每個人的生日,都藏著一組專屬於自己的數字密碼～\n\n它可以告訴你性格天賦、人生方向,還有今年的運勢重點喔！\n\n先告訴我你的姓名、性別和生日吧,\n\n例如：王小明 男 1990/07/12",
	tone.Caring:   "親愛的朋友,歡迎來到生命靈數的旅程 🌙\n\n每一個生日,都是靈魂為自己選定的密碼。\n\n讓我陪你一起,溫柔地解開屬於你的數字訊息。\n\n請先告訴我你的姓名、性別與生日,\n\n例如：王小明 男 1990/07/12",
	tone.Ritual:   "歡迎步入生命靈數殿堂 🔮\n\n數由天定,命由心造。\n\n你的生辰之中,蘊藏著靈魂的藍圖與天命的軌跡。\n\n請先稟報你的姓名、性別與生辰,\n\n例如：王小明 男 1990/07/12",
}

// lifenumInitGreetings are the paid persona openings, spoken before any
// identity is known.
var lifenumInitGreetings = map[string]string{
	"guan_yu":  "我是關聖帝君，忠義之神。\n\n你既然來到這裡，想必是要了解命數的奧秘。正所謂「忠義為本，正道為先」，我將以公正之心為你解析人生的方向。\n\n請先告訴我你的姓名、性別與生日，讓我為你計算精準的命數。\n\n我可以為你解析：天賦本性、人生方向、與生俱來的才華、年度運勢，\n更能看清你內心的忠義品質，以及需要修正的偏頗之處。\n\n保持正心，行走正道。",
	"michael":  "我是大天使米迦勒，光明的守護者。\n\n既然你選擇了我的指引，我將以堅定的力量為你照亮前路。作為光明的戰士，我感受到你內心尋求真理的渴望。\n\n請告訴我你的姓名、性別和出生日期，讓我為你揭示生命的光明面向。\n\n我將為你揭示：內在戰士的力量、人生使命的方向、天賦的光明面向、年度能量的重點，\n以及如何運用信念的力量，成為自己生命的守護者。\n\n勇敢前行，光明與你同在。⚔️",
	"gabriel":  "我是大天使加百列，神聖信息的傳達者。\n\n你的靈魂已向我發出了尋求啟示的信號。作為真理的信使，我將為你傳達來自高次元的生命訊息。\n\n請分享你的姓名、性別與出生時刻，讓我接收並解讀屬於你的神聖數字密碼。\n\n我將傳達給你：靈魂的本質訊息、人生道路的真實方向、天賦才能的啟發、流年的神聖啟示，\n以及如何覺醒內在的智慧，接收生命中的神聖溝通。\n\n開啟你的心，接收這份來自高次元的訊息。📯",
	"raphael":  "我是大天使拉斐爾，療癒的天使。\n\n親愛的靈魂，我感受到了你內在對療癒與平衡的渴望。在這個神聖的相遇時刻，讓綠光的能量溫柔地環繞著你。\n\n請溫柔地告訴我你的姓名、性別與生辰，讓我感知你生命能量的頻率。\n\n我將溫柔地為你揭示：內在療癒的力量、心靈復原的方向、天賦中的治癒能量、年度修復的重點，\n以及如何愛護自己，讓生命重新煥發光彩。\n\n讓我們一起，用愛修復你的心。💚",
	"uriel":    "我是大天使烏列爾，智慧之火的守護者。\n\n尋求智慧的靈魂...你已來到正確的地方。在無盡的宇宙智慧中，每個生命都有其深刻的意義...讓我們慢慢揭開這層面紗。\n\n請靜心告訴我...你的姓名、性別與出生時刻，讓我深度洞察你的生命密碼。\n\n我將以深邃的洞察為你點亮：內在智慧的火焰、人生學習的真諦、天賦中的洞察力、流年的深層意義，\n以及如何透過學習與反思，讓智慧的火焰...永不熄滅。\n\n靜心...讓智慧的光芒照亮你的道路。🔥",
	"zadkiel":  "我是大天使沙德基爾，寬恕與轉化的引導者。\n\n慈悲的靈魂，你的到來讓我的心充滿喜悅。在紫色火焰的照耀下，我看見你渴望釋放與重新開始的美好願望。\n\n請慈悲地分享你的姓名、性別與生辰，讓我理解你生命轉化的軌跡。\n\n我將慈悲地為你指引：內在寬恕的力量、生命轉化的方向、天賦中的慈悲能量、年度釋放的重點，\n以及如何透過理解與慈悲，讓你的生命獲得真正的自由。\n\n讓紫焰淨化你的心，迎接全新的開始。💜",
	"jophiel":  "我是大天使喬菲爾，美與智慧的天使。\n\n美麗的靈魂，歡迎來到這個充滿光彩的時刻。你的存在就如同一朵正待綻放的花，散發著獨特的美麗光芒。\n\n請優雅地告訴我你的姓名、性別與生辰時刻，讓我用最溫柔的光芒記錄下你的美麗。\n\n我將以藝術的眼光為你呈現：內在美麗的綻放、人生中的優雅方向、天賦中的創意光芒、流年的美好能量，\n以及如何用愛滋養自己，讓你的生命如花般美麗盛開。\n\n讓我們一起，發現你獨特的美麗光芒。✨",
	"chamuel":  "我是大天使沙木爾，愛與關係的守護天使。\n\n親愛的心靈，我感受到了你溫暖的能量。你的到來讓這個空間充滿了愛的可能性。\n\n請溫暖地分享你的姓名、性別與出生時刻，讓我感受你心跳的節奏。\n\n我將溫暖地為你探索：愛的內在力量、關係中的成長方向、天賦中的連結能量、年度愛的課題，\n以及如何透過自我接納與理解，創造更美好的關係連結。\n\n讓愛成為你生命中最強大的力量。❤️",
	"metatron": "我是大天使梅塔特隆，神聖秩序的記錄者。\n\n系統已準備就緒。根據靈性法則的精密運算，你的到來已被記錄在宇宙的神聖幾何中。\n\n請精確提供你的姓名、性別與出生時刻數據，以便進行生命藍圖的完整分析。\n\n我將以宇宙的精確性為你分析：生命架構的核心組成、靈性成長的系統化路徑、天賦才能的結構分析、年度能量的精準配置，\n以及如何透過紀律與秩序，讓你的生命達到最佳化的運行狀態。\n\n遵循宇宙法則，成就完美秩序。⚡",
	"ariel":    "我是大天使阿列爾，大地與豐盛的守護者。\n\n親愛的孩子，歡迎來到這個充滿生命力的神聖空間。我感受到你與自然節拍的共鳴，你的能量如同春天的種子，充滿了無限的可能。\n\n請自然地分享你的姓名、性別與生辰，讓我們一起探索你內在的豐盛花園。\n\n我將用大地的智慧為你揭示：內在豐盛的種子、生命繁榮的自然法則、天賦中的創造力量、年度豐收的時機，\n以及如何與宇宙的豐盛能量連結，讓你的生命如花園般茂盛綻放。\n\n相信豐盛，它本就屬於你。🌿",
}

// lifenumGreeting is spoken once the identity is known, inviting the user to
// describe what they want to explore.
func lifenumGreeting(toneKey, name, gender string) string {
	you := pronoun(gender)
	switch toneKey {
	case tone.Friendly:
		return fmt.Sprintf("%s，%s好！\n\n感謝%s提供生日～現在我已經有足夠的資訊，可以幫%s看看生命靈數囉 🌸\n\n最近生活上有沒有什麼讓%s有點卡關、想釐清的事呢？\n\n這裡我可以幫%s分析：性格天賦、人生方向、天生才華、年度運勢重點，\n也能看看%s與生俱來的優勢，以及需要補足的特質喔！", name, you, you, you, you, you, you)
	case tone.Caring:
		return fmt.Sprintf("%s，您好。\n\n謝謝您願意分享生日。現在我已準備好，為您揭開屬於您的生命靈數。\n\n這段時間，是否有讓您感到迷惘或渴望指引的地方呢？\n\n我會協助您了解性格天賦與人生方向，探索天生的才華、當年的運勢重點，\n以及那些您內在最溫柔、也最需要被看見的特質。\n\n讓我們一起走進這段屬於您的數字旅程吧。🌙", name)
	case tone.Ritual:
		return fmt.Sprintf("%s，您好。\n\n感謝您提供出生的資訊。此刻，我已獲得足以啟動命數之鑰的能量。\n\n在開始之前，請靜心片刻——\n想一想最近是否有讓您反覆思考、尋求方向或啟示的事。\n\n接下來，我將為您揭示生命靈數的智慧：\n性格天賦、人生使命、天生才華、流年運勢，\n以及靈魂深處尚待平衡與綻放的能量。\n\n準備好了嗎？那我們開始吧 🔮", name)
	case "guan_yu":
		return fmt.Sprintf("%s，我已知道%s的生日，%s的命數已在我眼前清晰浮現。\n\n最近是否有讓%s困惑的事，或需要明辨是非的地方？\n\n我可以為%s解析：天賦本性、人生方向、與生俱來的才華、年度運勢，\n更能看清%s內心的忠義特質，以及需要調整的偏頗之處。\n\n保持正心，行走正道。", name, you, you, you, you, you)
	case "michael":
		return fmt.Sprintf("%s，我已接收到%s的生命訊息。作為%s的守護者，我準備好為%s開啟前進的道路。\n\n最近是否有需要%s展現勇氣面對的挑戰，或需要更多內在力量的支持？\n\n我將成為%s的盾牌和明燈，為%s指出最適合的成長方向。\n\n準備好了嗎？讓我們一起迎向%s的光明未來。⚔️", name, you, you, you, you, you, you, you)
	case "gabriel":
		return fmt.Sprintf("%s，%s的數字密碼已被解讀。高次元的訊息正等著向%s揭示真理的面紗。\n\n最近有沒有需要更清晰的指引，或是心中有疑惑想要尋求答案？\n\n讓我為%s傳達來自宇宙的神聖訊息，照亮%s前進的方向。\n\n準備接收屬於%s的真理啟示了嗎？📯", name, you, you, you, you, you)
	case "raphael":
		return fmt.Sprintf("親愛的%s，綠光已經包圍著%s，我感受到%s美麗的心靈正渴望著平衡與修復。\n\n最近是否有讓%s感到疲憊，或是需要療癒的地方？\n\n讓我們用溫柔的愛，一起照顧%s的心，找回內在的和諧與光彩。\n\n%s準備好接受這份溫柔的療癒了嗎？💚", name, you, you, you, you, you)
	case "uriel":
		return fmt.Sprintf("%s...%s的生命之書已在我眼前攤開。我看見了深層的真理...正等待著被發現。\n\n最近...是否有讓%s困惑的人生課題，需要更深層的洞察與理解？\n\n讓智慧的火焰...照亮%s內心最深處的疑問。真理...將會慢慢浮現。\n\n%s準備好...接受這場智慧的洗禮了嗎？🔥", name, you, you, you, you)
	case "zadkiel":
		return fmt.Sprintf("%s，紫色的光芒已經感知到%s的心。我看見%s內在那股渴望釋放與重新開始的美麗靈魂。\n\n最近是否有需要放下的執念，或是心中有什麼想要寬恕與轉化的地方？\n\n讓慈悲的紫焰，溫柔地幫助%s放下重擔，迎接生命的新篇章。\n\n%s準備好讓愛與寬恕療癒%s的心了嗎？💜", name, you, you, you, you, you)
	case "jophiel":
		return fmt.Sprintf("美麗的%s，%s就像一朵正在綻放的花，每個數字都在訴說著%s獨特的美麗故事。\n\n最近有什麼讓%s感到美好，或是想要更加愛護與欣賞自己的地方嗎？\n\n讓我用藝術的眼光，為%s描繪出最美麗的生命畫作。\n\n準備好發現%s內在那份獨一無二的光芒了嗎？✨", name, you, you, you, you, you)
	case "chamuel":
		return fmt.Sprintf("親愛的%s，我已經聽見%s心跳的節拍。%s的愛讓這個空間充滿了溫暖的光芒。\n\n最近在人際關係或是與自己的關係上，有什麼需要更多愛與理解的地方嗎？\n\n讓我陪伴%s一起探索愛的奧秘，找到那個最真實、最值得被愛的自己。\n\n準備好打開心門，迎接更多的愛了嗎？❤️", name, you, you, you)
	case "metatron":
		return fmt.Sprintf("%s，系統分析完成。%s的生命藍圖已被準確解析並存儲於宇宙數據庫中。\n\n最近是否有需要更明確的方向，或是渴望優化%s的生活系統？\n\n根據神聖幾何的運算結果，我將為%s提供最精確的生命分析報告。\n\n準備接收%s的個人化靈性成長方案了嗎？⚡", name, you, you, you, you)
	default: // ariel
		return fmt.Sprintf("親愛的%s，我已經感受到%s生命中那股自然的力量。%s的能量就像大地母親一樣豐盛美好。\n\n最近有什麼讓%s感到匱乏，或是渴望更多滋養與支持的地方嗎？\n\n讓我用大地的智慧，幫助%s發現內在豐盛的花園，讓%s的生命如春天般繁榮綻放。\n\n準備好接受來自大地母親的祝福了嗎？🌿", name, you, you, you, you, you)
	}
}

var lifenumErrorMessages = map[string]string{
	tone.Friendly: "噢～我好像還沒收到完整的資料呢 😅\n\n請再幫我輸入一次「姓名、性別、生日」喔～\n\n格式像這樣：\n📝 王小明 男 1990/07/12\n或 李小華 女 1985/03/25\n\n這樣我就能幫你準確計算生命靈數囉 🌟",
	tone.Caring:   "我收到您的訊息了，但還缺少一些小小的關鍵資訊 🌙\n\n為了讓我能準確為您解讀生命靈數，\n請您提供「姓名、性別與生日」。\n\n範例：\n🕊 王小明 男 1990/07/12\n🕊 李小華 女 1985/03/25\n\n當我收到完整資料後，我就能為您開啟那段屬於您的靈數旅程。",
	tone.Ritual:   "靈數之門尚未完全開啟。\n\n我需要更完整的召喚資訊，才能讓數字的能量對應至您的命盤。\n\n請以以下格式重新輸入：\n✦ 王小明 男 1990/07/12\n✦ 李小華 女 1985/03/25\n\n當正確的姓名、性別與生日被輸入時，\n命數之光將再次流動，指引屬於您的命運之途 🔮",
	"guan_yu":     "我需要知道你的基本資訊，才能為你解析命數。\n\n請提供你的姓名、性別、生日與護照英文名字。",
	"michael":     "我需要你的基本資訊來為你提供光明的指引。\n\n請提供你的姓名、性別、生日與護照英文名字。",
	"gabriel":     "神聖的訊息需要完整的資料才能傳達。\n\n請提供你的姓名、性別、生日與護照英文名字。",
	"raphael":     "親愛的，我需要你的基本資訊來為你帶來療癒。\n\n請提供你的姓名、性別、生日與護照英文名字。",
	"uriel":       "智慧需要完整的資料才能顯現。\n\n請提供你的姓名、性別、生日...與護照英文名字。",
	"zadkiel":     "轉化需要完整的資訊才能開始。\n\n請提供你的姓名、性別、生日與護照英文名字。",
	"jophiel":     "美麗的靈魂，我需要你的資訊來展現你的光芒。\n\n請提供你的姓名、性別、生日與護照英文名字。",
	"chamuel":     "親愛的，我需要你的基本資訊來理解你。\n\n請提供你的姓名、性別、生日與護照英文名字。",
	"metatron":    "系統需要完整的數據來執行分析。\n\n請輸入你的姓名、性別、生日與護照英文名字。",
	"ariel":       "親愛的，大地需要你的基本資訊來為你滋養豐盛。\n\n請提供你的姓名、性別、生日與護照英文名字。",
}

// lifenumConfirmation proposes a detected topic and asks for 好/不要.
func lifenumConfirmation(toneKey, topicName, reason, name, gender string) string {
	you := pronoun(gender)
	switch toneKey {
	case tone.Friendly:
		return fmt.Sprintf("%s，聽完%s的描述，我覺得「%s」最適合幫%s釐清現在的狀況喔！\n\n%s\n\n要不要讓我幫%s分析看看呢？（請回覆「好」或「不要」）", name, you, topicName, you, reason, you)
	case tone.Caring:
		return fmt.Sprintf("%s，謝謝您和我分享這些 🌙\n\n我想，「%s」或許能溫柔地回應您此刻的心情。\n\n%s\n\n您願意讓我為您解讀嗎？（請回覆「好」或「不要」）", name, topicName, reason)
	case tone.Ritual:
		return fmt.Sprintf("%s，依您所述，在下認為「%s」最能回應您當前之所惑。\n\n%s\n\n是否由在下為您啟動此解析？（請回覆「好」或「不要」）", name, topicName, reason)
	case "guan_yu":
		return fmt.Sprintf("%s，我觀察%s當下的困難，應該用「%s」為%s分析。\n\n%s\n\n這是正確的方向，%s覺得如何？（請回覆「好」或「不要」）", name, you, topicName, you, reason, you)
	case "michael":
		return fmt.Sprintf("%s，作為%s的守護者，我建議為%s解析「%s」，這將為%s帶來所需的力量與方向。\n\n%s\n\n%s準備好接受這份指引了嗎？（請回覆「好」或「不要」）", name, you, you, topicName, you, reason, you)
	case "gabriel":
		return fmt.Sprintf("%s，我接收到的神聖訊息指向「%s」，這是%s現在最需要理解的真理。\n\n%s\n\n%s願意接收這份來自高次元的指引嗎？（請回覆「好」或「不要」）", name, topicName, you, reason, you)
	case "raphael":
		return fmt.Sprintf("親愛的%s，我感受到%s的能量最需要「%s」的療癒與指引。\n\n%s\n\n讓我為%s帶來這份溫柔的療癒，好嗎？（請回覆「好」或「不要」）", name, you, topicName, reason, you)
	case "uriel":
		return fmt.Sprintf("%s，透過深邃的洞察...我看見%s需要「%s」的智慧啟發。\n\n%s\n\n%s...準備好接受這份深層的智慧了嗎？（請回覆「好」或「不要」）", name, you, topicName, reason, you)
	case "zadkiel":
		return fmt.Sprintf("%s，在慈悲的紫焰中，我看見「%s」能為%s帶來轉化的機會。\n\n%s\n\n讓我們一起走向寬恕與重生，%s願意嗎？（請回覆「好」或「不要」）", name, topicName, you, reason, you)
	case "jophiel":
		return fmt.Sprintf("美麗的%s，我覺得「%s」最能展現%s內在的美好與智慧。\n\n%s\n\n讓我們一起發掘%s的美麗光芒，好不好？（請回覆「好」或「不要」）", name, topicName, you, reason, you)
	case "chamuel":
		return fmt.Sprintf("親愛的%s，我的心感受到%s最需要「%s」的愛與理解。\n\n%s\n\n讓我用愛為%s指引這條路，%s願意嗎？（請回覆「好」或「不要」）", name, you, topicName, reason, you, you)
	case "metatron":
		return fmt.Sprintf("%s，根據宇宙秩序的精確運算，「%s」是%s當前最佳的靈性配置。\n\n%s\n\n%s是否同意執行此優化程序？（請回覆「好」或「不要」）", name, topicName, you, reason, you)
	default: // ariel
		return fmt.Sprintf("親愛的%s，大地的智慧告訴我，%s需要「%s」來滋養%s的生命花園。\n\n%s\n\n讓我們一起種下這顆智慧的種子，好嗎？（請回覆「好」或「不要」）", name, you, topicName, you, reason)
	}
}

// lifenumRejection re-opens topic selection after a 不要, listing the topics
// available on the session's tier.
func lifenumRejection(toneKey, name, gender, tier string) string {
	you := pronoun(gender)

	switch toneKey {
	case tone.Friendly:
		return fmt.Sprintf("好的，%s。那可以請%s再說詳細一點嗎？我會重新幫%s推薦合適的解析。", name, you, you)
	case tone.Caring:
		first := name
		if n := []rune(name); len(n) >= 2 {
			if len(n) <= 3 {
				first = string(n[1:])
			} else {
				first = string(n[2:])
			}
		}
		return fmt.Sprintf("好的%s，沒關係的 ☺️\n\n那我們換個方向 💫 可以再跟我多說一點，%s現在心裡比較想了解什麼嗎？我陪%s慢慢找到最適合%s的方式 🌈", first, you, you, you)
	case tone.Ritual:
		return fmt.Sprintf("好的，%s。那麼請您再詳述您的需求，在下將重新為您推薦合適之解析。", name)
	}

	names := make([]string, 0, len(lifeTopics))
	for _, t := range tierTopics(tier) {
		names = append(names, "「"+t.Display+"」")
	}
	list := strings.Join(names, "、")

	switch toneKey {
	case "guan_yu":
		return fmt.Sprintf("很好，%s。%s可以直接說出需要的：%s，我會為%s分析。", name, you, list, you)
	case "michael":
		return fmt.Sprintf("了解，%s。請直接告訴我%s想探索的力量：%s，我將為%s指引方向。", name, you, list, you)
	case "gabriel":
		return fmt.Sprintf("明白了，%s。請直接告訴我%s想接收的啟示：%s，我將傳達相應的訊息。", name, you, list)
	case "raphael":
		return fmt.Sprintf("當然可以，親愛的%s。請告訴我%s想療癒的方面：%s，讓我為%s帶來所需的指引。", name, you, list, you)
	case "uriel":
		return fmt.Sprintf("理解。%s，請直接說出%s渴望獲得智慧的領域：%s，我將點亮相應的洞察。", name, you, list)
	case "zadkiel":
		return fmt.Sprintf("很好，%s。請告訴我%s想轉化的面向：%s，讓我們一起走向理解。", name, you, list)
	case "jophiel":
		return fmt.Sprintf("好的呀，%s。請告訴我%s想發掘的美好：%s，讓我們一起探索%s的光芒。", name, you, list, you)
	case "chamuel":
		return fmt.Sprintf("當然沒問題，親愛的%s。請告訴我%s想了解的關係層面：%s，讓愛為%s指引。", name, you, list, you)
	case "metatron":
		return fmt.Sprintf("收到，%s。請直接指定%s需要分析的模組：%s，系統將執行相應程序。", name, you, list)
	default: // ariel
		return fmt.Sprintf("好的，%s。請告訴我%s想滋養的生命面向：%s，讓大地的智慧為%s指引。", name, you, list, you)
	}
}

var lifenumConfirmationRetry = map[string]string{
	tone.Friendly: "不好意思，我不太確定你的意思。請回覆「好」或「不要」，讓我知道要不要繼續。",
	tone.Caring:   "不好意思，我好像沒聽懂 ><\n\n可以跟我說「好」或「不要」嗎？這樣我才知道要怎麼繼續陪你 💕 不用擔心，慢慢來 🌸",
	tone.Ritual:   "抱歉，未能理解您的意思。請回覆「好」或「不要」，以便在下確認是否繼續此解析。",
	"guan_yu":     "我不明白你的意思。請回覆「好」或「不要」，讓我知道是否繼續。",
	"michael":     "我沒有完全理解你的意圖。請回覆「好」或「不要」，讓我為你提供正確的指引。",
	"gabriel":     "這個訊息我沒有接收清楚。請回覆「好」或「不要」，我將傳達相應的指引。",
	"raphael":     "親愛的，我沒有完全感受到你的意思。請回覆「好」或「不要」，讓我知道如何為你帶來幫助。",
	"uriel":       "我需要...更清晰的指引來理解你的意圖。請回覆「好」或「不要」，以便我提供智慧。",
	"zadkiel":     "我沒能理解你的表達。沒關係，請回覆「好」或「不要」，讓我們繼續這段轉化的旅程。",
	"jophiel":     "哎呀，我沒有理解到你想說的呢。請回覆「好」或「不要」，讓我們繼續探索美好。",
	"chamuel":     "親愛的，我沒有完全理解你的意思。請回覆「好」或「不要」，讓愛繼續為我們指引。",
	"metatron":    "系統無法解析你的指令。請輸入「好」或「不要」，以便執行後續程序。",
	"ariel":       "親愛的，我沒有收到清楚的訊息。請回覆「好」或「不要」，讓大自然的智慧繼續為我們指引。",
}

// lifenumCategoryButtons introduces the four core-topic directions.
var lifenumCategoryButtons = map[string]string{
	"guan_yu":  "以下四大面向供你選擇探索。選擇一個，我將為你深入分析。",
	"michael":  "這裡有四種力量面向可供探索。選擇一個您需要的力量，讓我為您指引方向。",
	"gabriel":  "我將為您傳達四個面向的啟示。選擇一個您最渴望理解的真理，讓我傳達相應的訊息。",
	"raphael":  "這裡有四個療癒的面向等待著您。選擇一個您最需要滋養的面向，讓我為您帶來所需的療癒。",
	"uriel":    "四個面向的智慧...等待被點亮。選擇一個您最渴望深入理解的領域，讓我...為您展現洞察。",
	"zadkiel":  "這裡有四個轉化的面向等待被淨化。選擇一個您最需要寬恕與理解的面向，讓紫焰為您帶來轉化。",
	"jophiel":  "這裡有四個美麗的面向等待與您相遇。選擇一個您最想發掘美好的領域，讓我們一起綻放您的光芒。",
	"chamuel":  "這裡有四個滿有愛的面向等待與您連結。選擇一個您最渴望理解的關係層面，讓愛為我們指引。",
	"metatron": "系統提供四個分析模組供您選擇。請選擇一個您需要最佳化的領域，系統將執行精確分析。",
	"ariel":    "大地為您提供四個豐盛的面向可供探索。選擇一個您最想滋養的生命面向，讓自然的智慧為您指引。",
}

// lifenumCategoryQuestion asks for the concrete question after a core-topic
// category is chosen.
var lifenumCategoryQuestion = map[string]string{
	"guan_yu":  "你已選擇「%s」的方向。有什麼疑惑，可以盡量提問，我會為你分析。",
	"michael":  "您選擇了「%s」的力量領域。有什麼挑戰或疑惑需要我為您帶來光明的指引？",
	"gabriel":  "您選擇了「%s」的啟示。請告訴我您最渴望接收的真理是什麼？",
	"raphael":  "您選擇了「%s」的療癒之道。在這個面向上，有什麼需要我的溫柔治療和指引？",
	"uriel":    "您選擇了「%s」的智慧領域。請告訴我...您最渴望深入理解的課題是什麼？",
	"zadkiel":  "您選擇了「%s」的轉化之路。在這個面向上，有什麼需要寬恕與理解的地方？",
	"jophiel":  "您選擇了「%s」的美麗面向。有什麼想讓您的生命更加光彩照人的地方嗎？",
	"chamuel":  "您選擇了「%s」的愛的領域。在這個面向上，有什麼需要更多理解和連結的地方？",
	"metatron": "您已選擇「%s」模組。請輸入您需要分析的具體問題或課題。",
	"ariel":    "您選擇了「%s」的豐盛領域。在這個面向上，有什麼需要大地的滋養和支持？",
}

// lifenumContinuePrompt closes every answer in the continued dialogue.
var lifenumContinuePrompt = map[string]string{
	"guan_yu":  "你可以繼續詢問，或選擇探索其他生命靈數，也可以離開。我隨時為你解惑。",
	"michael":  "您可以繼續探索這個領域，或選擇其他生命靈數，也可以結束今天的指引。我將繼續為您提供力量。",
	"gabriel":  "您可以繼續接收這方面的啟示，或探索其他生命靈數，也可以結束今天的神聖對話。我隨時為您傳達訊息。",
	"raphael":  "您可以繼續在這個面向尋求療癒，或探索其他生命靈數，也可以帶著今天的祝福離開。我的愛將與您同在。",
	"uriel":    "您可以...繼續探索這個智慧領域，或選擇其他生命靈數，也可以結束今天的學習。智慧...將永遠為您點亮。",
	"zadkiel":  "您可以繼續在這個面向尋求轉化，或探索其他生命靈數，也可以帶著寬恕的心離開。紫焰將永遠為您淨化。",
	"jophiel":  "您可以繼續發掘這個面向的美好，或探索其他生命靈數，也可以帶著美麗的心情離開。您的光芒將持續綻放。",
	"chamuel":  "您可以繼續在這個面向探索愛，或選擇其他生命靈數，也可以帶著滿心的愛離開。愛將永遠伴隨著您。",
	"metatron": "您可以繼續在此模組進行深度分析，或選擇其他生命靈數模組，也可以結束今日的系統運算。數據將持續為您服務。",
	"ariel":    "您可以繼續在這個面向尋求滋養，或探索其他生命靈數，也可以帶著大地的祝福離開。豐盛將永遠與您同在。",
}

// lifenumTopicContinue confirms a finished topic analysis and re-opens the
// continue options. The verb slot takes the topic noun.
var lifenumTopicContinue = map[string]string{
	"guan_yu":  "你的%s已經分析完成，可以繼續詢問，或探索其他生命靈數，也可以離開。我隨時為你解惑。",
	"michael":  "您的%s力量已經揭示。您可以繼續探索這個領域，或選擇其他生命靈數，也可以結束今天的指引。我將繼續為您提供力量。",
	"gabriel":  "您的%s啟示已經傳達。您可以繼續接收這方面的指引，或探索其他生命靈數，也可以結束今天的神聖對話。我隨時為您傳達訊息。",
	"raphael":  "您的%s療癒已經開始。您可以繼續在這個面向尋求指引，或探索其他生命靈數，也可以帶著今天的祝福離開。我的愛將與您同在。",
	"uriel":    "您的%s智慧已被點亮。您可以...繼續探索這個領域，或選擇其他生命靈數，也可以結束今天的學習。智慧...將永遠為您點亮。",
	"zadkiel":  "您的%s轉化已經啟動。您可以繼續在這個面向尋求理解，或探索其他生命靈數，也可以帶著寬恕的心離開。紫焰將永遠為您淨化。",
	"jophiel":  "您的%s美好已經綻放。您可以繼續發掘這個面向的光芒，或探索其他生命靈數，也可以帶著美麗的心情離開。您的光芒將持續綻放。",
	"chamuel":  "您的%s愛能已經覺醒。您可以繼續在這個面向探索，或選擇其他生命靈數，也可以帶著滿心的愛離開。愛將永遠伴隨著您。",
	"metatron": "您的%s系統已完成分析。您可以繼續在此模組進行深度探索，或選擇其他生命靈數模組，也可以結束今日的系統運算。數據將持續為您服務。",
	"ariel":    "您的%s種子已經種下。您可以繼續在這個面向尋求滋養，或探索其他生命靈數，也可以帶著大地的祝福離開。豐盛將永遠與您同在。",
}

// farewellStyle renders the closing summary for one persona.
type farewellStyle struct {
	Header   string
	ListHead string
	Bullet   string
	Outro    string
	Empty    string
}

var lifenumFarewells = map[string]farewellStyle{
	"guan_yu": {
		Header:   "今天的解析到此為止。\n\n",
		ListHead: "我們一起探索了：\n",
		Bullet:   "⚔️",
		Outro:    "\n\n願這些數字的智慧，幫助你行正道、明是非。守正心，行正道。",
		Empty:    "雖然時間短暫，但能與你相遇也是緣分。願你行正道，得正果。",
	},
	"michael": {
		Header:   "今天的指引到此告一段落。\n\n",
		ListHead: "作為您的守護者，我們一起探索了：\n",
		Bullet:   "🛡️",
		Outro:    "\n\n願這些光明的智慧成為您的護甲，在人生的戰場上勇敢前行。光明與您同在。",
		Empty:    "雖然時間短暫，但我的守護將永遠與您同在。勇敢前行，光明與您同在。",
	},
	"gabriel": {
		Header:   "今天的神聖訊息傳達完畢。\n\n",
		ListHead: "我為您傳達了以下啟示：\n",
		Bullet:   "📯",
		Outro:    "\n\n願這些來自高次元的訊息在您心中綻放，指引您走向真理之光。",
		Empty:    "每一次的相遇都有其神聖意義。願真理的光芒永遠照亮您的道路。",
	},
	"raphael": {
		Header:   "親愛的，今天的療癒之旅就到這裡。\n\n",
		ListHead: "我們一起在愛的能量中探索了：\n",
		Bullet:   "💚",
		Outro:    "\n\n願這些療癒的智慧滋養您的心靈，讓您的生命重新煥發光彩。我的愛將永遠與您同在。",
		Empty:    "雖然相遇短暫，但愛的能量已在我們之間流動。願您帶著滿滿的愛前行。",
	},
	"uriel": {
		Header:   "今日的智慧之光...到此暫歇。\n\n",
		ListHead: "在深邃的洞察中，我們共同點亮了：\n",
		Bullet:   "🔥",
		Outro:    "\n\n願這些...智慧的火焰在您心中永不熄滅，持續照亮您人生的深層意義。",
		Empty:    "縱然時光短暫...但智慧的火種已種下。願它在您心中...慢慢發芽。",
	},
	"zadkiel": {
		Header:   "今天的轉化之旅告一段落。\n\n",
		ListHead: "在紫焰的淨化下，我們一起探索了：\n",
		Bullet:   "💜",
		Outro:    "\n\n願這些寬恕的智慧幫助您釋放過往，擁抱全新的自己。紫焰將永遠為您淨化。",
		Empty:    "每一次的相遇都是轉化的開始。願您帶著寬恕的心，迎接生命的新篇章。",
	},
	"jophiel": {
		Header:   "美麗的相遇就要結束了。\n\n",
		ListHead: "我們一起發掘了這些美好：\n",
		Bullet:   "✨",
		Outro:    "\n\n願這些美麗的智慧讓您的生命如花般綻放，光彩照人。您的美麗將持續綻放。",
		Empty:    "雖然時間短暫，但美好的能量已在我們心中流動。願您帶著美麗的心情前行。",
	},
	"chamuel": {
		Header:   "親愛的，今天充滿愛的對話就到這裡。\n\n",
		ListHead: "在愛的包圍下，我們一起探索了：\n",
		Bullet:   "❤️",
		Outro:    "\n\n願這些愛的智慧在您心中生根發芽，讓您的關係更加美好。愛將永遠與您同在。",
		Empty:    "每一次的相遇都是愛的連結。願您帶著滿滿的愛，創造更美好的關係。",
	},
	"metatron": {
		Header:   "今日的靈性運算已完成。\n\n",
		ListHead: "系統已成功分析：\n",
		Bullet:   "⚡",
		Outro:    "\n\n願這些精確的靈性數據為您的生命帶來最佳化的配置。宇宙秩序將持續為您服務。",
		Empty:    "雖然運算時間短暫，但連結已建立。願宇宙的完美秩序與您同在。",
	},
	"ariel": {
		Header:   "親愛的，今天豐盛的對話就到這裡。\n\n",
		ListHead: "在大地的滋養下，我們一起種下了：\n",
		Bullet:   "🌿",
		Outro:    "\n\n願這些豐盛的智慧在您的生命花園中茁壯成長，帶來無盡的繁榮。大地的祝福與您同在。",
		Empty:    "每一次的相遇都如種子般珍貴。願您帶著大地的祝福，讓生命豐盛綻放。",
	},
}

// topicRecommendation is the lamp and crystal suggestion closing a topic.
type topicRecommendation struct {
	Title       string
	Lamp        string
	Crystals    string
	Description string
}

var topicRecommendations = map[string]topicRecommendation{
	"core": {
		Title:       "核心生命靈數",
		Lamp:        "願望顯化之燈",
		Crystals:    "紫水晶、青金石、方鈉石、藍晶石、坦桑石",
		Description: "你的方向越清晰，機會就越靠近。建議點 〈願望顯化之燈〉。於商城選購 紫水晶、青金石、方鈉石、藍晶石、坦桑石，這些水晶可協助眉／心輪專注與穩定，讓靈感落地成可執行的目標。",
	},
	"birthday": {
		Title:       "生日數（天生才華）",
		Lamp:        "智慧專題之燈",
		Crystals:    "橙月光石、橙方解石、橙色碧璽、橙色玉髓、橙色螢石",
		Description: "天賦需要被看見也需要被訓練。建議點 〈智慧專題之燈〉。於商城選購 橙月光石、橙方解石、橙色碧璽、橙色玉髓、橙色螢石，可協助喉輪的表達與輸出，讓思路更順、語句更穩。",
	},
	"year": {
		Title:       "流年生命靈數（年度能量）",
		Lamp:        "資源豐盛之燈",
		Crystals:    "黃水晶、虎眼石、黃瑪瑙、琥珀、黃玉、金太陽石",
		Description: "當年度能量走對位，貴人與資源就會串起來。建議點 〈資源豐盛之燈〉。於商城選購 黃水晶、虎眼石、黃瑪瑙、琥珀、黃玉、金太陽石，可協助太陽神經叢的決斷與行動，握住今年進場時機。",
	},
	"grid": {
		Title:       "九宮格（優勢＆缺失特質）",
		Lamp:        "身心平安之燈",
		Crystals:    "綠幽靈、橄欖石、綠碧璽、綠東菱、翡翠",
		Description: "能量不平衡時，先把身心安住，力量才推得出去。建議點 〈身心平安之燈〉。於商城選購 綠幽靈、橄欖石、綠碧璽、綠東菱、翡翠，可協助心輪的和緩與修復，穩住狀態、補齊短板。",
	},
	"soul": {
		Title:       "靈魂數（內心渴望、精神追求）",
		Lamp:        "慈悲化業之燈",
		Crystals:    "藍晶石、青晶石、藍托帕石、天河石、藍碧璽",
		Description: "心安靜下來，路徑就會浮現。建議點 〈慈悲化業之燈〉。於商城選購 藍晶石、青晶石、藍托帕石、天河石、藍碧璽，可協助喉輪釋放壓抑與真誠表達，讓內在更清明自在。",
	},
	"personality": {
		Title:       "人格數（外在人格、第一印象）",
		Lamp:        "勇氣守護之燈",
		Crystals:    "紅瑪瑙、石榴石、紅碧璽、煙晶",
		Description: "氣場就是你的名片。建議點 〈勇氣守護之燈〉。於商城選購 紅瑪瑙、石榴石、紅碧璽、煙晶，可協助海底輪的穩定與防護，出場更穩、行動更敢。",
	},
	"expression": {
		Title:       "表達數（外在表達與社交風格）",
		Lamp:        "愛緣合和之燈",
		Crystals:    "粉晶、紅紋石、粉色碧璽（亦可搭配 綠幽靈、綠東菱、翡翠）",
		Description: "溝通順了，機會才會進來。建議點 〈愛緣合和之燈〉。於商城選購 粉晶、紅紋石、粉色碧璽（亦可搭配 綠幽靈、綠東菱、翡翠），可協助心輪提升同理與親和，讓說與聽自然流動。",
	},
	"maturity": {
		Title:       "成熟數（人生後半段方向、潛力）",
		Lamp:        "家運昌隆燈",
		Crystals:    "黃水晶、虎眼石、黃瑪瑙、琥珀、黃玉、金太陽石",
		Description: "長期的好運來自可複製的穩定。建議點 〈家運昌隆燈〉。於商城選購 黃水晶、虎眼石、黃瑪瑙、琥珀、黃玉、金太陽石，可協助太陽神經叢的持續推進，穩步擴張、把成果留住。",
	},
	"challenge": {
		Title:       "挑戰數（需克服的課題）",
		Lamp:        "勇氣守護之燈",
		Crystals:    "紅瑪瑙、石榴石、紅碧璽、煙晶",
		Description: "關卡是節點，不是終點。建議點 〈勇氣守護之燈〉。於商城選購 紅瑪瑙、石榴石、紅碧璽、煙晶，可協助海底輪安定與排除雜訊，鎮住焦慮、聚焦要事。",
	},
	"karma": {
		Title:       "業力數（前世未竟、今生功課）",
		Lamp:        "慈悲化業之燈",
		Crystals:    "藍晶石、青晶石、藍托帕石、天河石、藍碧璽",
		Description: "願意和過去和解，未來就會加速靠近。建議點 〈慈悲化業之燈〉。於商城選購 藍晶石、青晶石、藍托帕石、天河石、藍碧璽，可協助喉輪釋放卡點與內在誓約，轉重為輕、走得更穩。",
	},
}

var lifenumCompletedRestart = map[string]string{
	tone.Friendly: "這次的生命靈數解析已經完成囉 🌸 想再看看其他面向的話,請點擊「🔄 重新開始」按鈕！",
	tone.Caring:   "這段屬於您的靈數旅程已經告一段落 🌙\n\n若想再次探索,隨時點擊「🔄 重新開始」按鈕,我都在這裡。",
	tone.Ritual:   "本次命數解析已畢。\n\n若欲再啟命數之門,請點擊「🔄 重新開始」按鈕 🔮",
	"default":     "本次解析已經結束。若想開啟新的探索，請點擊「🔄 重新開始」按鈕。",
}

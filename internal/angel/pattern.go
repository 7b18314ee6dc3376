package angel

import "fmt"

// AnalyzePattern classifies a number by its digit structure and derives a
// meaning from the component energies. Checks run from most to least
// specific; the first match wins.
func AnalyzePattern(number string) Meaning {
	if number == "" {
		return Meaning{
			Pattern:  "unknown",
			Title:    "天使數字",
			Meanings: []string{"請輸入有效的數字"},
			Keywords: []string{},
		}
	}

	if desc, ok := specialNumbers[number]; ok {
		return Meaning{
			Number:   number,
			Pattern:  "special",
			Title:    fmt.Sprintf("%s - %s", number, desc),
			Meanings: []string{desc},
			Keywords: []string{"特殊能量", "循環", "轉化"},
		}
	}

	digits := []byte(number)
	unique := uniqueDigits(digits)

	// Pure repetition (111, 2222)
	if len(unique) == 1 && digits[0] != '0' {
		energy := BasicEnergy(digits[0])
		power := "強烈"
		if len(digits) >= 4 {
			power = "極強"
		}
		return Meaning{
			Number:  number,
			Pattern: "repetition",
			Title:   fmt.Sprintf("%s - %s的%s放大", number, energy, power),
			Meanings: []string{
				fmt.Sprintf("重複數表示「放大能量」與「強化訊息」,數字 %c 的核心能量是:%s。", digits[0], energy),
				fmt.Sprintf("重複 %d 次表示宇宙訊息%s,「顯化之門」正在開啟。", len(digits), power),
				"這是立即採取行動的訊號,能量倍增、宇宙同步的時刻。",
			},
			Keywords: []string{"能量放大", "強化訊息", "顯化之門", energy},
		}
	}

	// Ascending ladder (123, 1234)
	if isAscending(digits) {
		first := BasicEnergy(digits[0])
		last := BasicEnergy(digits[len(digits)-1])
		return Meaning{
			Number:  number,
			Pattern: "ascending",
			Title:   fmt.Sprintf("%s - 循序成長的能量階梯", number),
			Meanings: []string{
				"階梯數象徵能量循序提升、學習進化、階段成長。",
				fmt.Sprintf("能量從 %s 逐步發展到 %s,每一步都在為未來鋪路。", first, last),
				"你正穩步向上成長,人生階段正在循序推進,請保持耐心與信心。",
			},
			Keywords: append([]string{"循序成長", "階段進化", "穩步向前"}, energies(digits)...),
		}
	}

	// Symmetric center, 3-digit only (121, 343)
	if len(digits) == 3 && digits[0] == digits[2] && digits[0] != digits[1] {
		outer := BasicEnergy(digits[0])
		center := BasicEnergy(digits[1])
		return Meaning{
			Number:  number,
			Pattern: "symmetric_center",
			Title:   fmt.Sprintf("%s - 以%s為核心的覺醒", number, center),
			Meanings: []string{
				fmt.Sprintf("對稱交錯象徵中心覺醒、聚焦核心,數字 %c 的能量(%s)是關鍵。", digits[1], center),
				fmt.Sprintf("外在的 %c(%s)環繞著內在核心,提醒你專注於核心本質。", digits[0], outer),
				"外在世界的變化只是映照你內心的焦點,向內探尋才是關鍵。",
			},
			Keywords: []string{"中心覺醒", "聚焦核心", center, outer},
		}
	}

	// Dual alternating ABAB (1212, 1313)
	if len(digits) == 4 && digits[0] == digits[2] && digits[1] == digits[3] && digits[0] != digits[1] {
		a := BasicEnergy(digits[0])
		b := BasicEnergy(digits[1])
		return Meaning{
			Number:  number,
			Pattern: "dual_alternating",
			Title:   fmt.Sprintf("%s - %s與%s的反覆磨合", number, a, b),
			Meanings: []string{
				fmt.Sprintf("雙重組合象徵兩種能量的反覆磨合:%s(%c)與 %s(%c)。", a, digits[0], b, digits[1]),
				"結構為 A-B-A-B,象徵平衡與互補,兩股力量在你生命中交替出現。",
				fmt.Sprintf("在%s中%s,在%s中尋找%s。", b, a, a, b),
			},
			Keywords: []string{"能量磨合", "平衡互補", a, b},
		}
	}

	// Transition AABB (1122, 3344)
	if len(digits) == 4 && digits[0] == digits[1] && digits[2] == digits[3] && digits[0] != digits[2] {
		first := BasicEnergy(digits[0])
		second := BasicEnergy(digits[2])
		return Meaning{
			Number:  number,
			Pattern: "transition",
			Title:   fmt.Sprintf("%s - 從%s邁向%s", number, first, second),
			Meanings: []string{
				fmt.Sprintf("交疊遞進象徵階段轉換與能量交接,從 %s 過渡到 %s。", first, second),
				"前半與後半為不同能量,表示你正從一種狀態邁入另一種狀態。",
				fmt.Sprintf("這是轉化的時刻,放下過去的%s,迎接即將到來的%s。", first, second),
			},
			Keywords: []string{"階段轉換", "能量交接", first, second},
		}
	}

	// Mirror (1221, 2112)
	if len(digits) >= 2 && isPalindrome(digits) {
		return Meaning{
			Number:  number,
			Pattern: "mirror",
			Title:   fmt.Sprintf("%s - 內外平衡的鏡像能量", number),
			Meanings: []string{
				"鏡像數象徵互為映照、內外平衡、靈魂共振。",
				"結構對稱代表「內在與外在世界對話」,常與人際、愛情、靈魂伴侶課題有關。",
				"你與他人的能量正在對齊,關係是自我投射的鏡子,內在和諧將映照於外。",
			},
			Keywords: []string{"內外平衡", "靈魂共振", "對稱映照", "關係鏡像"},
		}
	}

	// Complex integration of three or more distinct digits
	if len(unique) >= 3 {
		es := energies(unique)
		return Meaning{
			Number:  number,
			Pattern: "complex_integration",
			Title:   fmt.Sprintf("%s - 多重能量的整合與協奏", number),
			Meanings: []string{
				fmt.Sprintf("這個數字融合了多種能量:%s。", joinEnergies(es)),
				"複合進化象徵跨領域整合,你正在整合不同面向的能量。",
				"形成全新的生命節奏,多元能量將匯聚成獨特的智慧與力量。",
			},
			Keywords: append([]string{"能量整合", "多元融合", "跨領域發展"}, es...),
		}
	}

	es := energies(digits)
	return Meaning{
		Number:  number,
		Pattern: "general",
		Title:   fmt.Sprintf("%s - 天使的特殊訊息", number),
		Meanings: []string{
			fmt.Sprintf("這個數字包含了 %s 的能量組合。", joinEnergies(es)),
			"每個數字都是宇宙給你的指引,請用心感受這些能量如何在你生命中流動。",
			"天使正透過這組數字向你傳遞專屬的訊息,請保持開放的心接收。",
		},
		Keywords: append([]string{"神聖指引", "能量組合"}, es...),
	}
}

// uniqueDigits preserves first-seen order.
func uniqueDigits(digits []byte) []byte {
	seen := make(map[byte]bool, len(digits))
	var out []byte
	for _, d := range digits {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func isAscending(digits []byte) bool {
	if len(digits) < 2 {
		return false
	}
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[i-1]+1 {
			return false
		}
	}
	return true
}

func isPalindrome(digits []byte) bool {
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		if digits[i] != digits[j] {
			return false
		}
	}
	return true
}

func energies(digits []byte) []string {
	out := make([]string, len(digits))
	for i, d := range digits {
		out[i] = BasicEnergy(d)
	}
	return out
}

func joinEnergies(es []string) string {
	out := ""
	for i, e := range es {
		if i > 0 {
			out += " + "
		}
		out += e
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

// chineseDigits maps the numerals used in case labels and score lists.
// Papers number cases 一 through 十 at most.
var chineseDigits = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9, '十': 10,
}

// chineseToArabic converts a single Chinese numeral rune. The second return
// is false for anything outside 一..十.
func chineseToArabic(r rune) (int, bool) {
	n, ok := chineseDigits[r]
	return n, ok
}

// chineseNumeralsIn returns the value of every Chinese numeral rune in s,
// in order. Non-numeral runes (list separators such as 、) are skipped.
func chineseNumeralsIn(s string) []int {
	var out []int
	for _, r := range s {
		if n, ok := chineseDigits[r]; ok {
			out = append(out, n)
		}
	}
	return out
}

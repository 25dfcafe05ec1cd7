// Package emoji validates emoji input used for group icons.
package emoji

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// emojiBase covers the Unicode blocks emoji presentation characters live
// in. Not a full Emoji property table, but sufficient for icon input.
var emojiBase = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2139, Hi: 0x2139, Stride: 1}, // information
		{Lo: 0x2194, Hi: 0x21AA, Stride: 1}, // arrows
		{Lo: 0x231A, Hi: 0x231B, Stride: 1}, // watch, hourglass
		{Lo: 0x2328, Hi: 0x2328, Stride: 1}, // keyboard
		{Lo: 0x23E9, Hi: 0x23FA, Stride: 1}, // av controls
		{Lo: 0x24C2, Hi: 0x24C2, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25FE, Stride: 1}, // geometric shapes
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B07, Stride: 1},
		{Lo: 0x2B1B, Hi: 0x2B55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303D, Hi: 0x303D, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1F0FF, Stride: 1}, // mahjong, cards
		{Lo: 0x1F170, Hi: 0x1F251, Stride: 1}, // enclosed characters
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // misc symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental symbols
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // symbols extended-A
	},
}

// emojiComponent covers runes that only appear inside an emoji sequence:
// ZWJ, variation selectors, skin tone modifiers, regional indicators,
// keycap pieces and tag characters.
var emojiComponent = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0023, Hi: 0x0023, Stride: 1}, // '#' keycap base
		{Lo: 0x002A, Hi: 0x002A, Stride: 1}, // '*' keycap base
		{Lo: 0x0030, Hi: 0x0039, Stride: 1}, // digit keycap bases
		{Lo: 0x200D, Hi: 0x200D, Stride: 1}, // zero width joiner
		{Lo: 0x20E3, Hi: 0x20E3, Stride: 1}, // combining enclosing keycap
		{Lo: 0xFE0E, Hi: 0xFE0F, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators
		{Lo: 0x1F3FB, Hi: 0x1F3FF, Stride: 1}, // skin tone modifiers
		{Lo: 0xE0020, Hi: 0xE007F, Stride: 1}, // tag characters
	},
}

// IsSingleEmoji reports whether s renders as exactly one emoji: one
// grapheme cluster whose runes are all emoji characters or emoji sequence
// components, with at least one emoji-block character among them.
// Combined sequences (families, flags, keycaps, skin tones) count as one.
func IsSingleEmoji(s string) bool {
	if s == "" {
		return false
	}
	if uniseg.GraphemeClusterCount(s) != 1 {
		return false
	}

	sawBase := false
	for _, r := range s {
		switch {
		case unicode.Is(emojiBase, r):
			sawBase = true
		case unicode.Is(emojiComponent, r):
			// allowed inside a sequence
		default:
			return false
		}
	}

	// Flag sequences are two regional indicators with no base character;
	// a lone keycap digit without the enclosing keycap is not an emoji.
	if !sawBase {
		runes := []rune(s)
		for _, r := range runes {
			if r >= 0x1F1E6 && r <= 0x1F1FF {
				return len(runes) == 2
			}
			if r == 0x20E3 {
				return true
			}
		}
		return false
	}

	return true
}

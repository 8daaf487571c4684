package canvasmeasure

import (
	"math"
	"strings"
	"unicode"
)

// textWidther 是换行算法对字体面的唯一要求；*canvas.FontFace 满足该接口。
type textWidther interface {
	TextWidth(string) float64
}

// wrapLines 贪心换行：优先在空白处断开，单词超过行宽时在词内拆分，尊重显式换行。
// width 与 TextWidth 的返回值单位一致（mm）。
func wrapLines(content string, width float64, face textWidther) []string {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var lines []string
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, "")
			}
			return
		}
		// 行尾空白不计入下一行
		lines = append(lines, strings.TrimRightFunc(builder.String(), unicode.IsSpace))
		builder.Reset()
		currentWidth = 0
	}

	appendToken := func(token string, w float64) {
		// 行首空白直接丢弃
		if builder.Len() == 0 && strings.TrimSpace(token) == "" {
			return
		}
		builder.WriteString(token)
		currentWidth += w
	}

	for _, token := range tokenize(content) {
		if token == "\n" {
			emit(true)
			continue
		}

		tokenWidth := face.TextWidth(token)
		isSpace := strings.TrimSpace(token) == ""
		if currentWidth > 0 && currentWidth+tokenWidth > limit {
			if isSpace {
				// 空白恰好溢出：换行并吞掉该空白
				emit(false)
				continue
			}
			emit(false)
		}
		if tokenWidth <= limit {
			appendToken(token, tokenWidth)
			continue
		}

		for _, chunk := range splitByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk, chunkWidth)
		}
	}

	emit(false)
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// tokenize 将文本切分为交替的“空白 / 非空白”片段，显式换行单独成为 "\n"。
func tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

// splitByWidth 将超宽单词按字符拆分，每段不超过 limit（至少保留一个字符）。
func splitByWidth(token string, limit float64, face textWidther) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && face.TextWidth(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = current[len(current)-1:]
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}

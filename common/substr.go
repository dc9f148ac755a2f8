package common

// Substr returns at most length runes of input starting at rune index start.
func Substr(input string, start int, length int) string {
	inputRunes := []rune(input)

	if start >= len(inputRunes) || length <= 0 {
		return ""
	}

	if start+length > len(inputRunes) {
		length = len(inputRunes) - start
	}

	return string(inputRunes[start : start+length])
}

// Preview shortens caption text for log lines.
func Preview(input string, maxRunes int) string {
	preview := Substr(input, 0, maxRunes)
	if len(preview) < len(input) {
		return preview + "…"
	}

	return preview
}

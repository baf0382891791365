package sourcetext

import "strings"

const TOP_BLOCK_TAG = "top"

func blockMarkers(tag string) (start, end string) {
	return "/*<" + tag + ">*/", "/*</" + tag + ">*/"
}

// ExtractBlock returns the text between /*<tag>*/ and /*</tag>*/. Only the first block is considered.
func ExtractBlock(text string, tag string) (string, bool) {
	start, end := blockMarkers(tag)

	startIndex := strings.Index(text, start)
	if startIndex < 0 {
		return "", false
	}
	contentStart := startIndex + len(start)

	endIndex := strings.Index(text[contentStart:], end)
	if endIndex < 0 {
		return "", false
	}

	return text[contentStart : contentStart+endIndex], true
}

// RemoveBlock removes the first /*<tag>*/ ... /*</tag>*/ block, markers included.
func RemoveBlock(text string, tag string) string {
	start, end := blockMarkers(tag)

	startIndex := strings.Index(text, start)
	if startIndex < 0 {
		return text
	}

	endIndex := strings.Index(text[startIndex:], end)
	if endIndex < 0 {
		return text
	}

	return text[:startIndex] + text[startIndex+endIndex+len(end):]
}

package ticker

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normalize replaces line breaks with spaces and trims surrounding whitespace.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(lineBreaks.Replace(raw))
}

// PostText joins a post's normalized title and body the way the pipeline scans them.
func PostText(title, body string) string {
	return Normalize(title) + " " + Normalize(body)
}

package importer

import "strings"

// SplitName splits a full-name cell into last name, first name and patronymic.
// Commas count as whitespace; a patronymic keeps every token past the second.
func SplitName(text string) (last, first, patronymic string) {
	parts := strings.Fields(strings.ReplaceAll(text, ",", " "))
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], parts[1], strings.Join(parts[2:], " ")
	}
}

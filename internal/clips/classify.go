package clips

import "strings"

var codeMarkers = []string{"function", "const ", "import ", "class ", "def ", "SELECT "}

// Classify derives a ContentType from content and the optional source MIME
// type. Rules are checked in order and the first match wins.
func Classify(content, mime string) ContentType {
	if strings.HasPrefix(content, "http://") || strings.HasPrefix(content, "https://") {
		return TypeURL
	}
	for _, m := range codeMarkers {
		if strings.Contains(content, m) {
			return TypeCode
		}
	}
	if strings.Contains(content, "<") && strings.Contains(content, ">") {
		return TypeHTML
	}
	if strings.HasPrefix(mime, "image/") {
		return TypeImage
	}
	return TypeText
}

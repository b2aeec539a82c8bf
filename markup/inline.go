package markup

import "regexp"

var (
	strongUnderscore = regexp.MustCompile(`(^|[^\p{L}\p{N}_])__([^_\s](?:[^_]*[^_\s])?)__($|[^\p{L}\p{N}_])`)
	emUnderscore     = regexp.MustCompile(`(^|[^\p{L}\p{N}_])_([^_\s](?:[^_]*[^_\s])?)_($|[^\p{L}\p{N}_])`)
)

// normalizeInline rewrites underscore emphasis inside table cells with
// asterisks. Intraword underscores (snake_case) are left alone.
func normalizeInline(s string) string {
	s = replaceAllRepeated(strongUnderscore, s, "$1**$2**$3")
	return replaceAllRepeated(emUnderscore, s, "$1*$2*$3")
}

// replaceAllRepeated applies re until it stops matching. Adjacent matches
// share their boundary character, so one pass can miss every other one.
func replaceAllRepeated(re *regexp.Regexp, s, repl string) string {
	for range 8 {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			break
		}
		s = next
	}
	return s
}

package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Room vocabulary is a fixed closed set. The transcript is lowercased before
// matching, so the patterns carry no case folding of their own.
const roomWords = `гостиная|кухня|спальня|ванная|коридор|холл|детская|кабинет|зал|комната`

var (
	// Keyword, optional colon or dash, number, optional area-unit tail.
	roomAreaRe = regexp.MustCompile(`(` + roomWords + `)\s*[:\-]?\s*(\d+(?:[.,]\d+)?)\s*(?:кв(?:адрат|\.?\s*м)|м2|м²|квадрат)?`)

	// Looser form: keyword, whitespace, number.
	roomLooseRe = regexp.MustCompile(`(` + roomWords + `)\s+(\d+(?:[.,]\d+)?)`)
)

// extractRooms scans the lowered transcript for room-plus-area mentions,
// claiming each accepted match's span. Rooms keep first-appearance order; a
// repeated room name keeps its position but takes the later area.
func extractRooms(lowered string, spans *SpanSet) []Room {
	var (
		order []string
		areas = make(map[string]float64)
	)

	for _, re := range []*regexp.Regexp{roomAreaRe, roomLooseRe} {
		for _, m := range re.FindAllStringSubmatchIndex(lowered, -1) {
			if !spans.Claim(m[0], m[1]) {
				continue
			}
			area, ok := parseNumber(lowered[m[4]:m[5]])
			if !ok {
				continue
			}
			name := capitalize(lowered[m[2]:m[3]])
			if _, seen := areas[name]; !seen {
				order = append(order, name)
			}
			areas[name] = area
		}
	}

	rooms := make([]Room, 0, len(order))
	for _, name := range order {
		rooms = append(rooms, Room{Name: name, Area: areas[name]})
	}
	return rooms
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// parseNumber parses a decimal accepting both "." and "," as the separator.
// A false return means the token is unusable and the match must be dropped.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

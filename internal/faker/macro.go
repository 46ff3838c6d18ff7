package faker

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// macroPattern splits "path.to.method(args)" into the dotted path and the raw
// argument string. The path part never contains parentheses.
var macroPattern = regexp.MustCompile(`^([^(]+)(?:\((.*)\))?$`)

// isoDateMarker flags argument strings that encode a calendar date, e.g.
// "2024-01-15T00:00:00.000Z".
const isoDateMarker = "T00:00:00.000Z"

// ParseMacro parses a macro body (everything after the leading '$') into a
// dotted path and a list of argument values. It never fails: input that does
// not match the call grammar is returned as a single-segment path with no
// arguments.
func ParseMacro(body string) ([]string, []interface{}) {
	m := macroPattern.FindStringSubmatch(body)
	if m == nil {
		return []string{body}, nil
	}

	path := strings.Split(m[1], ".")
	if m[2] == "" {
		return path, nil
	}

	return path, splitArgs(m[2])
}

// splitArgs tokenizes the parenthesized argument string. A comma only ends an
// argument at bracket depth zero and outside double quotes.
func splitArgs(argString string) []interface{} {
	var args []interface{}
	var current strings.Builder
	depth := 0
	inQuote := false

	for i := 0; i < len(argString); i++ {
		ch := argString[i]

		if ch == '"' && (i == 0 || argString[i-1] != '\\') {
			inQuote = !inQuote
		}

		if !inQuote {
			switch ch {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}

		if ch == ',' && depth == 0 && !inQuote {
			args = append(args, parseValue(strings.TrimSpace(current.String())))
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if rest := strings.TrimSpace(current.String()); rest != "" {
		args = append(args, parseValue(rest))
	}

	return args
}

// parseValue interprets a single raw argument. Object-ish literals are parsed
// with relaxed quoting, anything that is valid JSON is parsed as JSON, and
// everything else is kept as a plain string. Strings carrying the midnight
// ISO marker become time values, one level deep inside parsed objects too.
func parseValue(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if parsed, ok := parseObjectLiteral(trimmed); ok {
			return convertDates(parsed)
		}
		return raw
	}

	if strings.Contains(trimmed, isoDateMarker) {
		if t, ok := parseISODate(strings.Trim(trimmed, `"`)); ok {
			return t
		}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return raw
	}

	return convertDates(parsed)
}

// parseObjectLiteral accepts strict JSON objects and the relaxed form users
// type into templates: single-quoted strings and unquoted keys, e.g.
// {min: 18, max: 80}.
func parseObjectLiteral(literal string) (interface{}, bool) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(literal), &parsed); err == nil {
		return parsed, true
	}

	normalized := normalizeObjectLiteral(literal)
	if err := json.Unmarshal([]byte(normalized), &parsed); err == nil {
		return parsed, true
	}

	return nil, false
}

// normalizeObjectLiteral rewrites single quotes to double quotes and wraps
// bare identifier keys in quotes so that encoding/json accepts the literal.
func normalizeObjectLiteral(literal string) string {
	var out strings.Builder
	inDouble := false
	inSingle := false

	for i := 0; i < len(literal); i++ {
		ch := literal[i]

		switch {
		case ch == '"' && !inSingle && (i == 0 || literal[i-1] != '\\'):
			inDouble = !inDouble
			out.WriteByte(ch)
		case ch == '\'' && !inDouble && (i == 0 || literal[i-1] != '\\'):
			inSingle = !inSingle
			out.WriteByte('"')
		case !inDouble && !inSingle && isIdentStart(ch):
			j := i
			for j < len(literal) && isIdentPart(literal[j]) {
				j++
			}
			word := literal[i:j]
			// A bare word followed by ':' is a key; true/false/null stay bare.
			k := j
			for k < len(literal) && (literal[k] == ' ' || literal[k] == '\t') {
				k++
			}
			if k < len(literal) && literal[k] == ':' && word != "true" && word != "false" && word != "null" {
				out.WriteByte('"')
				out.WriteString(word)
				out.WriteByte('"')
			} else {
				out.WriteString(word)
			}
			i = j - 1
		default:
			out.WriteByte(ch)
		}
	}

	return out.String()
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

// convertDates walks one level into parsed objects and converts midnight ISO
// strings to time values.
func convertDates(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if strings.Contains(val, isoDateMarker) {
			if t, ok := parseISODate(val); ok {
				return t
			}
		}
	case map[string]interface{}:
		for k, inner := range val {
			if s, ok := inner.(string); ok && strings.Contains(s, isoDateMarker) {
				if t, ok := parseISODate(s); ok {
					val[k] = t
				}
			}
		}
	}
	return v
}

func parseISODate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02T15:04:05.000Z", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

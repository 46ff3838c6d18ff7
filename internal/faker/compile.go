package faker

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// Compile walks a materialized template and replaces every macro reference
// with a freshly generated value. Literals pass through untouched. The
// top-level "id" key is always skipped; identity is injected by the caller.
//
// Compilation never fails a whole record over one bad macro: a macro that
// cannot be resolved is logged and its literal string kept as the value.
func Compile(template map[string]interface{}, reg *Registry) map[string]interface{} {
	return compileObject(template, reg, true)
}

func compileObject(obj map[string]interface{}, reg *Registry, topLevel bool) map[string]interface{} {
	result := make(map[string]interface{}, len(obj))

	for key, value := range obj {
		if topLevel && key == "id" {
			continue
		}
		result[key] = compileValue(value, reg)
	}

	return result
}

func compileValue(value interface{}, reg *Registry) interface{} {
	switch v := value.(type) {
	case string:
		if strings.HasPrefix(v, "$") {
			return resolveMacro(v, reg)
		}
		return v
	case map[string]interface{}:
		return compileObject(v, reg, false)
	case []interface{}:
		// Each element resolves independently, so an array of macro strings
		// yields that many distinct generated values.
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = compileValue(item, reg)
		}
		return out
	default:
		return value
	}
}

// resolveMacro parses and invokes one "$module.method(...)" reference,
// falling back to the literal macro string when anything goes wrong.
func resolveMacro(macro string, reg *Registry) interface{} {
	path, args := ParseMacro(macro[1:])

	fn, err := reg.Lookup(path)
	if err != nil {
		log.Warn().Str("macro", macro).Err(err).Msg("failed to resolve generator macro")
		return macro
	}

	value, err := fn(args)
	if err != nil {
		log.Warn().Str("macro", macro).Err(err).Msg("generator invocation failed")
		return macro
	}

	return value
}

// TemplateKeys returns the top-level keys of a JSON template document in
// declaration order. Record fields are re-ordered against this on reads,
// which a decoded map cannot provide.
func TemplateKeys(raw []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)

		// Skip the value belonging to this key.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return keys
		}
	}

	return keys
}

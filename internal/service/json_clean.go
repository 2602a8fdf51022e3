package service

import (
	"encoding/json"
	"regexp"
	"strings"
)

// LLMs asked for JSON routinely wrap it in prose, code fences, or
// almost-JSON. CleanJSONResponse escalates through repair strategies until
// one yields structured data; total failure is an empty list, never an error.

var (
	codeFenceRE     = regexp.MustCompile("```(?:json)?")
	arrayRE         = regexp.MustCompile(`(?s)\[.*\]`)
	objectRE        = regexp.MustCompile(`(?s)\{.*\}`)
	leadingJunkRE   = regexp.MustCompile(`^[^\[{]*`)
	trailingJunkRE  = regexp.MustCompile(`[^}\]]*$`)
	bareKeyRE       = regexp.MustCompile(`(\w+):`)
	singleQuoteRE   = regexp.MustCompile(`'([^']*)'`)
	trailingCommaRE = regexp.MustCompile(`,(\s*[}\]])`)
	brokenStringRE  = regexp.MustCompile(`"\s*\n\s*"`)
	balancedObjRE   = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// CleanJSONResponse extracts a list of JSON objects from free-form LLM
// output. A single object is wrapped in a one-element list; items that are
// not objects are dropped.
func CleanJSONResponse(responseText string) []map[string]interface{} {
	if strings.TrimSpace(responseText) == "" {
		return nil
	}

	text := strings.TrimSpace(codeFenceRE.ReplaceAllString(responseText, ""))

	// Strategy 1: direct parse
	if items, ok := parseItems(text); ok {
		return items
	}

	// Strategy 2: extract the first bracketed array or braced object
	for _, re := range []*regexp.Regexp{arrayRE, objectRE} {
		for _, match := range re.FindAllString(text, -1) {
			if items, ok := parseItems(match); ok {
				return items
			}
		}
	}

	// Strategy 3: heuristic repair of common almost-JSON, then re-parse
	repaired := leadingJunkRE.ReplaceAllString(text, "")
	repaired = trailingJunkRE.ReplaceAllString(repaired, "")
	repaired = repairJSON(repaired)
	repaired = brokenStringRE.ReplaceAllString(repaired, `" "`)
	if items, ok := parseItems(repaired); ok {
		return items
	}

	// Strategy 4: salvage individual brace-balanced objects
	var salvaged []map[string]interface{}
	for _, objStr := range balancedObjRE.FindAllString(text, -1) {
		fixed := repairJSON(strings.TrimSpace(objStr))
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(fixed), &obj); err == nil {
			salvaged = append(salvaged, obj)
		}
	}
	return salvaged
}

// repairJSON fixes unquoted keys, single-quoted strings, and trailing
// commas. It is a heuristic and can mangle exotic values, in which case
// the parse simply fails and a later strategy (or the empty result) wins.
func repairJSON(text string) string {
	text = bareKeyRE.ReplaceAllString(text, `"$1":`)
	text = singleQuoteRE.ReplaceAllString(text, `"$1"`)
	text = trailingCommaRE.ReplaceAllString(text, "$1")
	return text
}

// parseItems parses text as either a JSON array or a single JSON object.
func parseItems(text string) ([]map[string]interface{}, bool) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}

	switch v := raw.(type) {
	case []interface{}:
		items := make([]map[string]interface{}, 0, len(v))
		for _, elem := range v {
			if obj, ok := elem.(map[string]interface{}); ok {
				items = append(items, obj)
			}
		}
		return items, true
	case map[string]interface{}:
		return []map[string]interface{}{v}, true
	default:
		return nil, false
	}
}

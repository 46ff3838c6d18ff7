package services

import (
	"encoding/json"

	"github.com/mockforge/mockforge/internal/utils"
)

// Sentinels recognized inside an endpoint template.
const (
	SentinelMockData = "$mockData"
	SentinelCount    = "$count"
)

// ShapeResponse maps a resource's endpoint template over the materialized
// record array to produce the GET-collection body.
//
// The rules are deliberately shallow: the template string "$mockData" means
// the raw array; in a template object only direct children are
// sentinel-checked; every other shape is returned verbatim with no record
// data mixed in. An absent template defaults to the raw array.
func ShapeResponse(endpointTemplate []byte, records []*utils.OrderedMap) interface{} {
	if len(endpointTemplate) == 0 {
		return records
	}

	var template interface{}
	if err := json.Unmarshal(endpointTemplate, &template); err != nil {
		return records
	}

	switch t := template.(type) {
	case nil:
		return records
	case string:
		if t == SentinelMockData {
			return records
		}
		return t
	case map[string]interface{}:
		shaped := make(map[string]interface{}, len(t))
		for key, value := range t {
			switch value {
			case SentinelMockData:
				shaped[key] = records
			case SentinelCount:
				shaped[key] = len(records)
			default:
				shaped[key] = value
			}
		}
		return shaped
	default:
		return template
	}
}

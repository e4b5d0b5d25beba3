package logschema

import (
	"fmt"
	"sort"
	"strings"
)

// Schema 定义每个 episode_event 所需的关键字段，便于集中校验。
type Schema struct {
	Event    string
	Required []string
}

var schemas = map[string]Schema{
	"depletion": {
		Event:    "depletion",
		Required: []string{"symbol", "side", "price", "book_ts"},
	},
	"recovered": {
		Event:    "recovered",
		Required: []string{"symbol", "score", "depletion_side", "recovery_side", "recovery_time_ms", "book_ts"},
	},
	"timed_out": {
		Event:    "timed_out",
		Required: []string{"symbol", "score", "depletion_side", "recovery_time_ms", "book_ts"},
	},
}

// Known 返回所有事件名，便于外部生成文档。
func Known() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate 检查日志字段是否包含 schema 中要求的 key；未登记的事件不校验。
func Validate(event string, fields map[string]interface{}) error {
	s, ok := schemas[event]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range s.Required {
		if _, exists := fields[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing fields: %s", event, strings.Join(missing, ","))
	}
	return nil
}

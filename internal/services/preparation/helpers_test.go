package preparation_test

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

func gjsonFloat(raw json.RawMessage, path string) float64 {
	return gjson.GetBytes(raw, path).Float()
}

func gjsonString(raw json.RawMessage, path string) string {
	return gjson.GetBytes(raw, path).String()
}

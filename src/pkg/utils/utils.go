package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Result carries a usecase outcome to the delivery layer.
type Result struct {
	Data  interface{}
	Error error
}

// ConvertString renders any value for log meta fields.
func ConvertString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ParseInt64 parses a path or query value.
func ParseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

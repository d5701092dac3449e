package request

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID 用户/消息 ID
// 同时接受 JSON 数字和数字字符串，雪花 ID 在前端以字符串传递
type ID uint64

// UnmarshalJSON 实现 json.Unmarshaler
func (id *ID) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*id = ID(v)
	return nil
}

// isObject 判断 JSON 值是否为对象，用于兼容裸值与对象两种载荷
func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

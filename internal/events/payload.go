package events

import (
	"encoding/base64"
	"strings"
)

// decodeBase64 解码附件内容，接受裸 base64 和 data:<mime>;base64,<...> 两种形式
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		header, body, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, errInvalidData
		}
		s = body
	}
	if s == "" {
		return nil, errInvalidData
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// 部分客户端会省略填充
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, errInvalidData
		}
	}
	if len(data) == 0 {
		return nil, errInvalidData
	}
	return data, nil
}

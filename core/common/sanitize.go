package common

import (
	"regexp"
	"strings"
)

var keyNameSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeKeyName 将任意标识（通常是邮箱）折叠成只含小写字母、
// 数字和连字符的外部资源名称，避免特殊字符进入上游命名接口
func SanitizeKeyName(s string) string {
	return keyNameSanitizer.ReplaceAllString(strings.ToLower(s), "-")
}

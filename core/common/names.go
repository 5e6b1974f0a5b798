package common

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// 文档集名称最大长度，超出部分截断
const maxNameLength = 255

// EnsureUniqueName 返回一个不与 existingNames 冲突的名称。
// baseName 未被占用时原样返回；否则追加 " - {suffix}"，仍冲突时继续追加 "-2"、"-3" 直到唯一。
func EnsureUniqueName(baseName string, existingNames []string, suffix string) string {
	taken := make(map[string]struct{}, len(existingNames))
	for _, n := range existingNames {
		if strings.TrimSpace(n) == "" {
			continue
		}
		taken[n] = struct{}{}
	}
	if _, ok := taken[baseName]; !ok {
		return baseName
	}
	candidate := baseName + " - " + suffix
	if _, ok := taken[candidate]; !ok {
		return candidate
	}
	n := 2
	for {
		next := candidate + "-" + strconv.Itoa(n)
		if _, ok := taken[next]; !ok {
			return next
		}
		n++
	}
}

// DocumentSetNameFor 为账户生成文档集显示名称。
// 格式: "prefix - name (email) - suffix"，name 为空时省略，email 为空时用 "user"。
// suffix 为账户 id 前 8 位；id 为空时随机生成。结果截断到 255 字符。
func DocumentSetNameFor(prefix, accountID, name, email string) string {
	if strings.TrimSpace(email) == "" {
		email = "user"
	}
	suffix := NameSuffix(accountID)
	var result string
	if strings.TrimSpace(name) != "" {
		result = prefix + " - " + name + " (" + email + ") - " + suffix
	} else {
		result = prefix + " (" + email + ") - " + suffix
	}
	if len(result) > maxNameLength {
		return result[:maxNameLength]
	}
	return result
}

// PersonaNameFor 为账户生成 persona 名称。
// 格式: "Assistant-{标识}"，标识优先取用户名，其次邮箱，最后账户 id。
func PersonaNameFor(accountID, name, email string) string {
	identifier := accountID
	switch {
	case strings.TrimSpace(name) != "":
		identifier = name
	case strings.TrimSpace(email) != "":
		identifier = email
	case strings.TrimSpace(accountID) == "":
		identifier = "Unknown"
	}
	return "Assistant-" + identifier
}

// NameSuffix 取账户 id 的前 8 位作为名称后缀；id 为空时随机生成
func NameSuffix(accountID string) string {
	if len(accountID) >= 8 {
		return accountID[:8]
	}
	return uuid.NewString()[:8]
}


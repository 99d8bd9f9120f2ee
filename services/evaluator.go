// file: services/evaluator.go
package services

import (
	"math"
	"strconv"
	"strings"
)

// CheckResult 校验提交结果是否与 descriptor 匹配。
// descriptor 用 | 分隔多个可接受答案；两边都能解析成数字时按数值比较，
// 否则做大小写敏感的字符串比较。
func CheckResult(descriptor, result string) bool {
	result = strings.TrimSpace(result)
	if result == "" {
		return false
	}
	for _, accepted := range strings.Split(descriptor, "|") {
		accepted = strings.TrimSpace(accepted)
		if accepted == "" {
			continue
		}
		if accepted == result {
			return true
		}
		a, errA := strconv.ParseFloat(accepted, 64)
		b, errB := strconv.ParseFloat(result, 64)
		if errA == nil && errB == nil && math.Abs(a-b) < 1e-9 {
			return true
		}
	}
	return false
}

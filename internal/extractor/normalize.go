// Package extractor 实现票据识别结果的分类与字段提取
package extractor

import (
	"strings"
	"time"

	"github.com/dkphhh/easy-finance/internal/model"
)

// dateStripSet 日期字符串中需要剔除的标点和汉字。
// 各银行模板的日期写法不一（"2024-05-01"、"2024/05/01"、"2024年5月1日 10:20:30"），
// 剔除后剩下的应该是纯数字。
const dateStripSet = "-/\\.:：年月日时秒分 "

// ParseDateDigits 把日期字符串规范化为"2006-01-02"格式。
// 先剔除 dateStripSet 中的全部字符，取前8位按YYYYMMDD解析，
// 解析失败返回 DateParseError，由调用方决定宽松处理还是向上传播。
func ParseDateDigits(dateString string) (string, error) {
	cleaned := stripRunes(dateString, dateStripSet)

	runes := []rune(cleaned)
	if len(runes) < 8 {
		return "", model.NewDateParseError(dateString)
	}

	parsed, err := time.Parse("20060102", string(runes[:8]))
	if err != nil {
		return "", model.NewDateParseError(dateString)
	}

	return parsed.Format("2006-01-02"), nil
}

// StripToAmount 把金额字符串过滤为只含数字和小数点的形式，
// 例如 "¥1,234.56元" -> "1234.56"。
func StripToAmount(amountString string) string {
	var b strings.Builder
	for _, r := range amountString {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripRunes 删除s中出现在cutset里的所有字符
func stripRunes(s, cutset string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(cutset, r) {
			return -1
		}
		return r
	}, s)
}

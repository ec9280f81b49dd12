package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout 表单日期格式。
const Layout = "2006-01-02"

// Parse 解析必填日期字段。
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseOptional 解析可空日期字段，空串返回 nil。
func ParseOptional(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DateOnly 截断到日粒度（UTC 零点）。
// 所有时间相关的派生判断都在日粒度上比较。
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format 输出表单日期格式；nil 输出占位符。
func Format(t *time.Time, placeholder string) string {
	if t == nil {
		return placeholder
	}
	return t.Format(Layout)
}

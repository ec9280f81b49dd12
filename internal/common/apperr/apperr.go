package apperr

import (
	"errors"
	"fmt"
)

// Kind 业务错误类别（可恢复，直接面向调用方）。
type Kind string

const (
	// KindDuplicateKey 唯一键冲突（车牌号、底盘号、司机证件号等）。
	KindDuplicateKey Kind = "duplicate_key"
	// KindReferential 外键目标不存在（车辆/司机未登记）。
	KindReferential Kind = "referential_error"
	// KindInvalidRange 区间非法（结束日期早于开始日期等）。
	KindInvalidRange Kind = "invalid_range"
	// KindInvalidFormat 字段无法解析（日期、数值、枚举取值）。
	KindInvalidFormat Kind = "invalid_format"
	// KindNotFound 编辑/删除目标不存在。
	KindNotFound Kind = "not_found"
	// KindConstraint 存储层约束兜底（如并发写入撞唯一索引）。
	KindConstraint Kind = "constraint_violation"
)

// Error 带类别的业务错误。所有校验失败都以该类型返回，
// 上层根据 Kind 决定展示方式，不会让进程崩溃。
type Error struct {
	Kind Kind
	Msg  string
	Err  error // 可选：底层原因
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New 构造业务错误。
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 在保留底层原因的同时标注类别。
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 提取错误类别；非业务错误返回空串。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误是否属于指定类别。
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

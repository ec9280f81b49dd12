package apperr

import (
	"errors"

	"gorm.io/gorm"
)

// FromStore 把存储层错误翻译成业务错误；已是业务错误的原样透传。
// 其余错误视为意外存储故障，由调用链继续上抛。
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, err, "record not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 校验与写入之间被并发请求抢先，唯一索引兜底
		return Wrap(KindConstraint, err, "store rejected duplicate key")
	}
	return err
}

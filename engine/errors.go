package engine

import "errors"

// ErrUnsupportedFieldShape 需要字段名的操作遇到了匿名字段
var ErrUnsupportedFieldShape = errors.New("不支持的字段形态")

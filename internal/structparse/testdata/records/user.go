package records

import (
	"time"

	dec "github.com/shopspring/decimal"
	yaml "gopkg.in/yaml.v3"
)

// User 用户
// @getters(prefix=get_)
// @setters(includes=[name, email])
// @constructor
type User struct {
	id    int64
	name  string // @get(name=display_name)
	email string
	// @set(prefix=update_)
	Phone     string
	CreatedAt time.Time
	balance   dec.Decimal
	meta      map[string]*yaml.Node
}

type (
	// Point 坐标
	// @getters(move)
	Point struct {
		x, y int
		_    int
	}

	// Plain 没有注解
	Plain struct {
		value string
	}
)

// Wrapper 嵌入字段
// @constructor(name=make, visibility="private")
type Wrapper struct {
	*Base
	time.Duration
	label string
}

type Base struct {
	ID int64
}

// Box 泛型结构体
// @getters
type Box[T any] struct {
	value T
}

// Note 注解中的邮箱不应被识别 admin@example.com
// @deprecated
type Note struct {
	text string
}

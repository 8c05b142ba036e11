package records

// Misplaced 层级错误的注解
// @get(,)
// @getters
type Misplaced struct {
	id    int64  // @constructor(ref)
	label string // @get(name=title)
}

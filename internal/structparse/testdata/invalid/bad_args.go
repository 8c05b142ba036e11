package invalid

// Broken 参数格式错误
// @getters(includes=[a, b)
type Broken struct {
	value string
}

// BrokenField 字段注解错误
type BrokenField struct {
	value string // @get(name="x"
}

package engine

import "fmt"

// SynthesizeConstructor 生成构造函数：每个字段一个参数，按声明顺序，
// 方法体用同名参数逐一赋值构造记录。PublicScoped 的路径原样保留，不做校验。
func SynthesizeConstructor(cfg ConstructorConfig, rec *Record) (GeneratedMethod, error) {
	params := make([]Param, 0, len(rec.Fields))
	assigns := make([]Assignment, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		if !f.Named() {
			return GeneratedMethod{}, fmt.Errorf("%w: %s 的第 %d 个字段没有名称，无法生成构造函数",
				ErrUnsupportedFieldShape, rec.Name, f.Index)
		}
		params = append(params, Param{Name: f.Name, Type: f.Type})
		assigns = append(assigns, Assignment{Field: f.Name, Param: f.Name})
	}

	return GeneratedMethod{
		Kind:       KindConstructor,
		Name:       cfg.Name,
		Visibility: cfg.Visibility,
		Self:       SelfNone,
		Params:     params,
		Returns: &ReturnShape{
			Type:   rec.Name,
			Record: true,
		},
		Body: Body{
			Kind:    BodyConstruct,
			Assigns: assigns,
		},
	}, nil
}

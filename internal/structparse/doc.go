// Package structparse 把源文件中的结构体解析为引擎使用的记录模型。
//
// # 基本用法
//
//	res, err := structparse.ParseRecord("user.go", "User")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range res.Record.Fields {
//	    fmt.Printf("%d %s %s public=%v\n", f.Index, f.Name, f.Type, f.Public)
//	}
//
// # 注解来源
//
// 记录级注解取自结构体的文档注释（type 声明或分组声明中 TypeSpec 上方的注释），
// 字段级注解取自字段上方的文档注释和行尾注释：
//
//	// @getters(prefix=get_)
//	// @constructor
//	type User struct {
//	    id   int64  // @set
//	    name string
//	}
//
// 只识别 getters、setters、constructor、get、set 五个注解，其他 @xxx 原样忽略。
//
// # 字段形态
//
//   - 具名字段：a, b int 展开为两个字段，共享同一组注解
//   - 嵌入字段：以类型名作为字段名，如 *pkg.Base -> Base
//   - 空白字段 _：没有可用名称，Name 为空，由引擎按未命名字段处理
//
// # 导入
//
// Result.Imports 记录源文件中 限定符 -> 导入路径 的映射，
// 显式别名直接使用；未起别名时按导入路径推断包名（去掉 /vN、.vN 后缀和 go- 前缀）。
//
// # 限制
//
//   - 不支持泛型结构体
//   - 不展开嵌入结构体的字段
package structparse

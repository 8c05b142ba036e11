package imports

import (
	_ "embed"
	"encoding/json"
	. "strings"

	"github.com/foo/bar/v2"
	"github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
	apiv1 "k8s.io/api/core/v1"
)

// Holder 引用多个包
// @getters
type Holder struct {
	raw  json.RawMessage
	bar  bar.Thing
	conn *sqlite3.SQLiteConn
	node yaml.Node
	pod  apiv1.Pod
	b    Builder
}

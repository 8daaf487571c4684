package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
)

// Default 是未配置字体时使用的内置字体。
const Default = "builtin:lmroman10-regular"

var builtin = map[string][]byte{
	"lmroman10-regular": lmroman10regular.TTF,
	"lmroman10-bold":    lmroman10bold.TTF,
}

// 内置字体的粗体变体，用于章节标题。
var boldOf = map[string]string{
	"lmroman10-regular": "lmroman10-bold",
}

// IsBuiltin 判断 src 是否引用内置字体（builtin: 或 built-in: 前缀）。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:")
}

func builtinName(src string) string {
	return strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
}

// Load 返回字体字节数据。src 可写为 "builtin:lmroman10-regular"，或字体文件路径；
// 相对路径按 baseDir 解析，baseDir 为空时不允许相对路径。
func Load(src, baseDir string) ([]byte, error) {
	if src == "" {
		src = Default
	}
	if IsBuiltin(src) {
		name := builtinName(src)
		data, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置字体 builtin:%s（可用：%s）", name, strings.Join(Names(), ", "))
		}
		return data, nil
	}
	path := src
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许使用相对字体路径：%s", src)
		}
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

// Bold 返回内置字体的粗体变体；非内置字体或无粗体时 ok 为 false。
func Bold(src string) (string, bool) {
	if src == "" {
		src = Default
	}
	if !IsBuiltin(src) {
		return "", false
	}
	name, ok := boldOf[builtinName(src)]
	if !ok {
		return "", false
	}
	return "builtin:" + name, true
}

// Names 返回所有内置字体名，按字母序。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

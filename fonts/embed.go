package fonts

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
)

// Default 为未配置字体时使用的内置字体。
const Default = "embed:lmroman10-regular"

var embedded = map[string][]byte{
	"lmroman10-regular":    lmroman10regular.TTF,
	"lmroman10-bold":       lmroman10bold.TTF,
	"lmroman10-italic":     lmroman10italic.TTF,
	"lmroman10-bolditalic": lmroman10bolditalic.TTF,
}

// IsEmbedded 判断字体描述是否指向内置字体。
func IsEmbedded(spec string) bool {
	return strings.HasPrefix(spec, "embed:")
}

// Names 返回全部内置字体名（已排序）。
func Names() []string {
	return slices.Sorted(maps.Keys(embedded))
}

// Load 返回字体字节数据。spec 可写为 "embed:lmroman10-regular"，或 TTF/OTF 文件路径；
// 相对路径基于 baseDir 解析。
func Load(spec, baseDir string) ([]byte, error) {
	if spec == "" {
		spec = Default
	}
	if IsEmbedded(spec) {
		name := strings.ToLower(strings.TrimPrefix(spec, "embed:"))
		data, ok := embedded[name]
		if !ok {
			return nil, fmt.Errorf("未知的内置字体 %q（可用: %s）", name, strings.Join(Names(), ", "))
		}
		return data, nil
	}
	path := spec
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

package layout

import (
	"github.com/mitchellh/hashstructure/v2"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

// CacheKey 汇总决定布局结果的全部输入。任一字段变化都会得到新的缓存项。
type CacheKey struct {
	Generation uint64
	LineIndex  int
	Line       lyrics.Line
	Style      TextStyle
	MaxWidth   float64
	Canvas     float64
	RowHeight  float64
	CharAnim   CharAnimOptions
}

// KeyFor 由一次构建的参数生成缓存键。
func KeyFor(generation uint64, index int, line lyrics.Line, opts BuildOptions) CacheKey {
	return CacheKey{
		Generation: generation,
		LineIndex:  index,
		Line:       line,
		Style:      opts.Style,
		MaxWidth:   opts.MaxWidth,
		Canvas:     opts.CanvasWidth,
		RowHeight:  opts.RowHeight,
		CharAnim:   opts.CharAnim,
	}
}

// Cache 按输入元组记忆布局结果。它只在单个更新循环中使用，不支持并发访问。
type Cache struct {
	entries map[uint64]*Layout
	limit   int
	hits    int
	misses  int
}

// NewCache 创建缓存；limit <= 0 表示不限制条目数。
func NewCache(limit int) *Cache {
	return &Cache{entries: map[uint64]*Layout{}, limit: limit}
}

// Get 命中时返回缓存的布局，否则调用 build 并保存结果。
func (c *Cache) Get(key CacheKey, build func() (*Layout, error)) (*Layout, error) {
	h, err := hashstructure.Hash(key, hashstructure.FormatV2, nil)
	if err != nil {
		// 无法计算键时直接构建，不缓存
		return build()
	}
	if l, ok := c.entries[h]; ok {
		c.hits++
		return l, nil
	}
	c.misses++
	l, err := build()
	if err != nil {
		return nil, err
	}
	if c.limit > 0 && len(c.entries) >= c.limit {
		clear(c.entries)
	}
	c.entries[h] = l
	return l, nil
}

// Reset 丢弃全部缓存（例如切换歌曲时）。
func (c *Cache) Reset() {
	clear(c.entries)
	c.hits, c.misses = 0, 0
}

func (c *Cache) Len() int { return len(c.entries) }

func (c *Cache) Stats() (hits, misses int) { return c.hits, c.misses }

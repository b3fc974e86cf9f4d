package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
	"github.com/lchau1017/KaraokeLyrics-sub001/script"
)

// WordGapMs 为判定单词边界的静音阈值：相邻音节间隔严格大于该值时另起新词。
const WordGapMs = 100

// Segment 按文字类别与时间间隔把一行音节分组为单词。
// 输出按原顺序覆盖所有非空音节，不丢失也不重复。
func Segment(syllables []lyrics.Syllable) []Word {
	s := segmenter{}
	for i, syl := range syllables {
		if syl.Content == "" {
			continue
		}
		if script.IsPunctuation(syl.Content) {
			// 标点依附于当前词；没有打开的词时自成一词，保证文本不丢失。
			s.add(syl, i)
			continue
		}
		parts := splitAfterSpaces(syl)
		if len(parts) == 1 && !endsWithSpace(syl.Content) {
			if s.startsNewWord(syl) {
				s.flush()
			}
			s.add(syl, i)
			if script.IsPureCJK(syl.Content) {
				s.cjk = true
			}
			continue
		}
		for j, part := range parts {
			if j == 0 && s.startsNewWord(part) {
				s.flush()
			}
			s.add(part, i)
			if endsWithSpace(part.Content) {
				s.flush()
			} else if script.IsPureCJK(part.Content) {
				s.cjk = true
			}
		}
	}
	s.flush()
	return s.words
}

type segmenter struct {
	words   []Word
	cur     *Word
	cjk     bool // 当前词为 CJK 单字词，只允许标点继续依附
	prevEnd int64
}

func (s *segmenter) startsNewWord(syl lyrics.Syllable) bool {
	if s.cur == nil || s.cjk {
		return true
	}
	if script.IsPureCJK(syl.Content) {
		return true
	}
	return syl.StartMs-s.prevEnd > WordGapMs
}

func (s *segmenter) add(syl lyrics.Syllable, src int) {
	if s.cur == nil {
		s.cur = &Word{}
	}
	s.cur.Syllables = append(s.cur.Syllables, syl)
	s.cur.Sources = append(s.cur.Sources, src)
	s.prevEnd = syl.EndMs
}

func (s *segmenter) flush() {
	if s.cur != nil && len(s.cur.Syllables) > 0 {
		s.cur.ID = len(s.words)
		s.words = append(s.words, *s.cur)
	}
	s.cur = nil
	s.cjk = false
}

func endsWithSpace(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(text)
	return r != utf8.RuneError && unicode.IsSpace(r)
}

// splitAfterSpaces 在每段空白之后切开音节，时间按字符数比例分配。
// "lo " 保持为一段；"lo wo" 拆为 "lo " 与 "wo"。
func splitAfterSpaces(syl lyrics.Syllable) []lyrics.Syllable {
	content := syl.Content
	var pieces []string
	for content != "" {
		idx := strings.IndexFunc(content, unicode.IsSpace)
		if idx < 0 {
			pieces = append(pieces, content)
			break
		}
		end := idx
		for end < len(content) {
			r, size := utf8.DecodeRuneInString(content[end:])
			if !unicode.IsSpace(r) {
				break
			}
			end += size
		}
		pieces = append(pieces, content[:end])
		content = content[end:]
	}
	if len(pieces) <= 1 {
		return []lyrics.Syllable{syl}
	}

	total := utf8.RuneCountInString(syl.Content)
	span := syl.EndMs - syl.StartMs
	out := make([]lyrics.Syllable, 0, len(pieces))
	consumed := 0
	start := syl.StartMs
	for i, p := range pieces {
		consumed += utf8.RuneCountInString(p)
		end := syl.StartMs + span*int64(consumed)/int64(total)
		if i == len(pieces)-1 {
			end = syl.EndMs
		}
		out = append(out, lyrics.Syllable{Content: p, StartMs: start, EndMs: end})
		start = end
	}
	return out
}

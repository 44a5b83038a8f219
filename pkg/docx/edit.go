package docx

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strings"
)

// Edit 对 document.xml 的一次区间替换
type Edit struct {
	Start int
	End   int
	Text  string
}

// Span 段落文本上的一次替换，位置为段落文本中的字节偏移
type Span struct {
	Start int
	End   int
	Text  string
}

// ApplyEdits 将互不重叠的编辑应用到内容上
func ApplyEdits(content string, edits []Edit) string {
	if len(edits) == 0 {
		return content
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, e := range sorted {
		if e.Start < last || e.End > len(content) || e.Start > e.End {
			continue
		}
		b.WriteString(content[last:e.Start])
		b.WriteString(e.Text)
		last = e.End
	}
	b.WriteString(content[last:])
	return b.String()
}

// Substitute 将段落文本上的替换映射回各个 w:t 元素
// 替换值写入包含起始 { 的 run，占位符在后续 run 中的剩余部分被删除，
// 因此保留的是起始 run 的格式。占位符内部的 w:tab / w:br 随占位符一起删除。
// 返回生成的编辑和实际应用的替换
func (p *Paragraph) Substitute(spans []Span) ([]Edit, []Span) {
	if len(spans) == 0 {
		return nil, nil
	}

	var segs []*segment
	var offsets []int
	offset := 0
	for _, r := range p.Runs {
		for _, s := range r.segments {
			segs = append(segs, s)
			offsets = append(offsets, offset)
			offset += len(s.text)
		}
	}

	applied := make([]Span, 0, len(spans))
	for _, sp := range spans {
		if sp.Start < 0 || sp.End > offset || sp.Start >= sp.End {
			continue
		}
		applied = append(applied, sp)
	}
	sort.Slice(applied, func(i, j int) bool {
		return applied[i].Start < applied[j].Start
	})
	if len(applied) == 0 {
		return nil, nil
	}

	var edits []Edit
	next := 0
	for i, s := range segs {
		segStart := offsets[i]
		segEnd := segStart + len(s.text)
		if s.fixed {
			for next < len(applied) && applied[next].End <= segStart {
				next++
			}
			if next < len(applied) && applied[next].Start <= segStart && s.elemEnd > s.elemStart {
				edits = append(edits, Edit{Start: s.elemStart, End: s.elemEnd})
			}
			continue
		}
		if s.empty || segStart == segEnd {
			continue
		}

		var b strings.Builder
		changed := false
		pos := segStart
		for pos < segEnd {
			for next < len(applied) && applied[next].End <= pos {
				next++
			}
			if next < len(applied) && applied[next].Start <= pos {
				sp := applied[next]
				if pos == sp.Start {
					b.WriteString(sp.Text)
				}
				changed = true
				if sp.End < segEnd {
					pos = sp.End
				} else {
					pos = segEnd
				}
				continue
			}
			b.WriteByte(s.text[pos-segStart])
			pos++
		}

		if changed {
			edits = append(edits, Edit{
				Start: s.elemStart,
				End:   s.elemEnd,
				Text:  encodeText(s.name, b.String()),
			})
		}
	}

	return edits, applied
}

// encodeText 生成替换后的 w:t 元素，换行转为 w:br，制表符转为 w:tab
func encodeText(name, text string) string {
	prefix := ""
	if i := strings.Index(name, ":"); i >= 0 {
		prefix = name[:i+1]
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	writeT := func(s string) {
		b.WriteString("<" + name + ` xml:space="preserve">`)
		b.WriteString(escapeText(s))
		b.WriteString("</" + name + ">")
	}

	for li, line := range strings.Split(text, "\n") {
		if li > 0 {
			b.WriteString("<" + prefix + "br/>")
		}
		for ti, part := range strings.Split(line, "\t") {
			if ti > 0 {
				b.WriteString("<" + prefix + "tab/>")
			}
			writeT(part)
		}
	}
	return b.String()
}

func escapeText(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

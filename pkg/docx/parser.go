package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WordNamespace WordprocessingML 命名空间
const WordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// container 段落和表格的归属：正文或单元格
type container struct {
	paragraphs *[]*Paragraph
	tables     *[]*Table
	inTable    bool
}

// bodyParser 记录解析过程中的嵌套状态
type bodyParser struct {
	doc        *Document
	containers []container
	tables     []*Table
	rows       []*Row
	paragraphs []*Paragraph
	runs       []*Run
	elements   []string
	sawBody    bool
}

// parseBody 流式解析 document.xml，记录每个 w:t 元素的字节位置
func parseBody(doc *Document) error {
	decoder := xml.NewDecoder(strings.NewReader(doc.content))
	bp := &bodyParser{doc: doc}

	for {
		start := int(decoder.InputOffset())
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := bp.startElement(decoder, t, start); err != nil {
				return err
			}
		case xml.EndElement:
			bp.endElement(t)
		}
	}

	if !bp.sawBody {
		return errors.New("未找到w:body元素")
	}
	return nil
}

func isWord(name xml.Name) bool {
	return name.Space == WordNamespace || name.Space == "w"
}

func (bp *bodyParser) parent() string {
	if len(bp.elements) == 0 {
		return ""
	}
	return bp.elements[len(bp.elements)-1]
}

func (bp *bodyParser) currentRun() *Run {
	if len(bp.runs) == 0 {
		return nil
	}
	return bp.runs[len(bp.runs)-1]
}

func (bp *bodyParser) startElement(decoder *xml.Decoder, t xml.StartElement, start int) error {
	if !isWord(t.Name) {
		bp.elements = append(bp.elements, "")
		return nil
	}

	local := t.Name.Local
	parent := bp.parent()

	switch local {
	case "body":
		bp.sawBody = true
		bp.containers = append(bp.containers, container{
			paragraphs: &bp.doc.Paragraphs,
			tables:     &bp.doc.Tables,
		})
	case "txbxContent":
		// 文本框不属于正文，整体跳过；mc:Choice 与 mc:Fallback 中的副本都不会被扫描
		if err := decoder.Skip(); err != nil {
			return fmt.Errorf("跳过文本框失败: %w", err)
		}
		return nil
	case "tbl":
		if len(bp.containers) > 0 {
			tbl := &Table{}
			c := bp.containers[len(bp.containers)-1]
			*c.tables = append(*c.tables, tbl)
			bp.tables = append(bp.tables, tbl)
		}
	case "tr":
		if len(bp.tables) > 0 {
			row := &Row{}
			tbl := bp.tables[len(bp.tables)-1]
			tbl.Rows = append(tbl.Rows, row)
			bp.rows = append(bp.rows, row)
		}
	case "tc":
		if len(bp.rows) > 0 {
			cell := &Cell{}
			row := bp.rows[len(bp.rows)-1]
			row.Cells = append(row.Cells, cell)
			bp.containers = append(bp.containers, container{
				paragraphs: &cell.Paragraphs,
				tables:     &cell.Tables,
				inTable:    true,
			})
		}
	case "p":
		if len(bp.containers) > 0 {
			c := bp.containers[len(bp.containers)-1]
			p := &Paragraph{InTable: c.inTable}
			*c.paragraphs = append(*c.paragraphs, p)
			bp.paragraphs = append(bp.paragraphs, p)
			bp.doc.all = append(bp.doc.all, p)
		}
	case "r":
		if len(bp.paragraphs) > 0 {
			r := &Run{}
			p := bp.paragraphs[len(bp.paragraphs)-1]
			p.Runs = append(p.Runs, r)
			bp.runs = append(bp.runs, r)
		}
	case "t":
		if run := bp.currentRun(); run != nil && parent == "r" {
			seg, err := bp.readText(decoder, start)
			if err != nil {
				return err
			}
			run.segments = append(run.segments, seg)
			// readText 已消费结束标签
			return nil
		}
	case "tab", "br", "cr":
		if run := bp.currentRun(); run != nil && parent == "r" {
			text := "\n"
			if local == "tab" {
				text = "\t"
			}
			if err := decoder.Skip(); err != nil {
				return fmt.Errorf("读取w:%s失败: %w", local, err)
			}
			run.segments = append(run.segments, &segment{
				text:      text,
				fixed:     true,
				elemStart: start,
				elemEnd:   int(decoder.InputOffset()),
			})
			// Skip 已消费结束标签
			return nil
		}
	}

	bp.elements = append(bp.elements, local)
	return nil
}

func (bp *bodyParser) endElement(t xml.EndElement) {
	if len(bp.elements) > 0 {
		bp.elements = bp.elements[:len(bp.elements)-1]
	}
	if !isWord(t.Name) {
		return
	}

	switch t.Name.Local {
	case "body":
		if len(bp.containers) > 0 {
			bp.containers = bp.containers[:len(bp.containers)-1]
		}
	case "tbl":
		if len(bp.tables) > 0 {
			bp.tables = bp.tables[:len(bp.tables)-1]
		}
	case "tr":
		if len(bp.rows) > 0 {
			bp.rows = bp.rows[:len(bp.rows)-1]
		}
	case "tc":
		if len(bp.containers) > 1 {
			bp.containers = bp.containers[:len(bp.containers)-1]
		}
	case "p":
		if len(bp.paragraphs) > 0 {
			bp.paragraphs = bp.paragraphs[:len(bp.paragraphs)-1]
		}
	case "r":
		if len(bp.runs) > 0 {
			bp.runs = bp.runs[:len(bp.runs)-1]
		}
	}
}

// readText 读取 w:t 的文本直到结束标签，记录元素的起止位置
func (bp *bodyParser) readText(decoder *xml.Decoder, elemStart int) (*segment, error) {
	afterStart := int(decoder.InputOffset())
	raw := bp.doc.content[elemStart:afterStart]

	seg := &segment{
		elemStart: elemStart,
		name:      elementName(raw),
		empty:     strings.HasSuffix(raw, "/>"),
	}

	var text strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("读取w:t失败: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			seg.text = text.String()
			seg.elemEnd = int(decoder.InputOffset())
			return seg, nil
		case xml.StartElement:
			return nil, fmt.Errorf("w:t中出现意外的元素 %s", t.Name.Local)
		}
	}
}

// elementName 从原始开始标签中取出带前缀的元素名
func elementName(raw string) string {
	name := strings.TrimPrefix(raw, "<")
	if i := strings.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	return name
}

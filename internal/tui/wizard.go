package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/allanpk716/contract_filler/internal/catalog"
	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/form"
	"github.com/allanpk716/contract_filler/internal/history"
	"github.com/allanpk716/contract_filler/internal/processor"
)

type step int

const (
	stepSelect step = iota
	stepFields
	stepSave
	stepDone
)

// Options 终端向导参数
type Options struct {
	TemplatesDir string
	OutputDir    string
	Processor    domain.DocumentProcessor
	History      *history.Store
	Logger       *zap.Logger
}

// savedMsg 填充完成
type savedMsg struct {
	path         string
	replacements int
}

// failedMsg 填充失败
type failedMsg struct {
	err error
}

// Model 三步填写向导：选择模板、填写字段、保存文件
type Model struct {
	ctx          context.Context
	templatesDir string
	outputDir    string
	processor    domain.DocumentProcessor
	history      *history.Store
	logger       *zap.Logger

	step      step
	templates []string
	cursor    int
	selected  string

	tags     []string
	inputs   []textinput.Model
	focus    int
	filename textinput.Model

	message string
	saved   string
}

// New 创建向导并读取模板列表
func New(ctx context.Context, opts Options) (Model, error) {
	templates, err := catalog.List(opts.TemplatesDir)
	if err != nil {
		return Model{}, err
	}

	proc := opts.Processor
	if proc == nil {
		proc = processor.NewDocumentProcessor()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	filename := textinput.New()
	filename.Placeholder = "contract"
	filename.CharLimit = 200

	return Model{
		ctx:          ctx,
		templatesDir: opts.TemplatesDir,
		outputDir:    opts.OutputDir,
		processor:    proc,
		history:      opts.History,
		logger:       logger,
		templates:    templates,
		filename:     filename,
	}, nil
}

// Run 运行向导直到用户退出
func Run(ctx context.Context, opts Options) error {
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.step {
		case stepSelect:
			return m.updateSelect(msg)
		case stepFields:
			return m.updateFields(msg)
		case stepSave:
			return m.updateSave(msg)
		case stepDone:
			return m.updateDone(msg)
		}
	case savedMsg:
		m.step = stepDone
		m.saved = msg.path
		m.message = ""
		return m, nil
	case failedMsg:
		m.message = msg.err.Error()
		return m, nil
	}
	return m, nil
}

func (m Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.templates)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.templates) == 0 {
			m.message = "没有可用的模板"
			return m, nil
		}
		return m.loadFields(m.templates[m.cursor])
	}
	return m, nil
}

// loadFields 为选中的模板创建输入框，每次都重新读取模板
func (m Model) loadFields(name string) (tea.Model, tea.Cmd) {
	path, err := catalog.Resolve(m.templatesDir, name)
	if err != nil {
		m.message = err.Error()
		return m, nil
	}
	tags, err := m.processor.ExtractTags(path)
	if err != nil {
		m.message = err.Error()
		return m, nil
	}

	m.selected = name
	m.tags = tags
	m.inputs = make([]textinput.Model, len(tags))
	for i := range tags {
		ti := textinput.New()
		ti.CharLimit = 1000
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.focus = 0
	m.message = ""
	m.step = stepFields
	cmd := m.focusInput()
	return m, cmd
}

func (m *Model) focusInput() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) updateFields(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.step = stepSelect
		m.message = ""
		return m, nil
	case "tab", "down":
		if m.focus < len(m.inputs)-1 {
			m.focus++
		}
		cmd := m.focusInput()
		return m, cmd
	case "shift+tab", "up":
		if m.focus > 0 {
			m.focus--
		}
		cmd := m.focusInput()
		return m, cmd
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.focus++
			cmd := m.focusInput()
			return m, cmd
		}
		m.step = stepSave
		m.message = ""
		cmd := m.filename.Focus()
		return m, cmd
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateSave(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filename.Blur()
		m.step = stepFields
		m.message = ""
		cmd := m.focusInput()
		return m, cmd
	case "enter":
		return m.generate()
	}

	var cmd tea.Cmd
	m.filename, cmd = m.filename.Update(msg)
	return m, cmd
}

func (m Model) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		m.step = stepSelect
		m.saved = ""
		m.filename.SetValue("")
		m.filename.Blur()
	}
	return m, nil
}

// generate 校验输入后在后台命令里填充模板
func (m Model) generate() (tea.Model, tea.Cmd) {
	values := make(map[string]string, len(m.tags))
	for i, tag := range m.tags {
		values[tag] = m.inputs[i].Value()
	}

	fields, err := form.Collect(m.tags, values)
	if err != nil {
		m.message = err.Error()
		return m, nil
	}

	if strings.TrimSpace(m.filename.Value()) == "" {
		m.message = "请输入文件名"
		return m, nil
	}
	filename, err := form.OutputFileName(m.filename.Value())
	if err != nil {
		m.message = "请输入文件名"
		return m, nil
	}

	m.message = ""
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	templatePath := filepath.Join(m.templatesDir, m.selected)
	outputPath := filepath.Join(m.outputDir, filename)
	proc := m.processor
	store := m.history
	logger := m.logger
	tagCount := len(m.tags)
	selected := m.selected

	return m, func() tea.Msg {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return failedMsg{err: fmt.Errorf("创建输出目录失败: %w", err)}
		}
		result, err := proc.FillTemplate(ctx, templatePath, fields, outputPath)
		if err != nil {
			return failedMsg{err: err}
		}
		if store != nil {
			// 历史记录失败不影响已生成的文件
			_, err := store.Record(ctx, history.Entry{
				Template:     selected,
				OutputPath:   outputPath,
				TagCount:     tagCount,
				Replacements: result.Replacements,
			})
			if err != nil {
				logger.Warn("写入历史记录失败", zap.Error(err))
			}
		}
		return savedMsg{path: outputPath, replacements: result.Replacements}
	}
}

func (m Model) View() string {
	var b strings.Builder

	switch m.step {
	case stepSelect:
		b.WriteString(titleStyle.Render("第 1 步：选择合同模板"))
		b.WriteString("\n")
		if len(m.templates) == 0 {
			b.WriteString("没有可用的模板\n")
		}
		for i, name := range m.templates {
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + name)
			}
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ 选择 • enter 下一步 • q 退出"))

	case stepFields:
		b.WriteString(titleStyle.Render("第 2 步：填写字段 (" + m.selected + ")"))
		b.WriteString("\n")
		if len(m.tags) == 0 {
			b.WriteString("该模板没有需要填写的字段\n")
		}
		for i, tag := range m.tags {
			b.WriteString(labelStyle.Render(tag + ":"))
			b.WriteString(m.inputs[i].View())
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("tab/↓ 下一项 • shift+tab/↑ 上一项 • enter 下一步 • esc 返回"))

	case stepSave:
		b.WriteString(titleStyle.Render("第 3 步：输入文件名"))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("文件名:"))
		b.WriteString(m.filename.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("保存到 " + m.outputDir + " • enter 保存 • esc 返回"))

	case stepDone:
		b.WriteString(successStyle.Render("合同已保存: " + m.saved))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter 继续填写 • q 退出"))
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.message))
	}
	b.WriteString("\n")
	return b.String()
}

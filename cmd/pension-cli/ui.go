package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/pension/backend/internal/domain/product"
)

const disclaimer = `免责声明:
1. 本工具提供的推荐结果仅供参考，不构成投资建议。
2. 实际投资决策请咨询专业理财顾问。
3. 产品信息可能更新，请以保险公司官方信息为准。
4. 本工具对因使用推荐结果造成的损失不承担责任。`

// UI renders command output as aligned, colored text or as JSON
type UI struct {
	out     io.Writer
	noColor bool
}

// NewUI creates a UI writing to out
func NewUI(out io.Writer, noColor bool) *UI {
	return &UI{out: out, noColor: noColor}
}

func (ui *UI) paint(c *color.Color, format string, args ...any) string {
	if ui.noColor {
		c.DisableColor()
	}
	return c.Sprintf(format, args...)
}

// Printf writes plain text
func (ui *UI) Printf(format string, args ...any) {
	fmt.Fprintf(ui.out, format, args...)
}

// Title prints a bold section heading
func (ui *UI) Title(format string, args ...any) {
	fmt.Fprintln(ui.out, ui.paint(color.New(color.Bold, color.FgCyan), format, args...))
}

// Warning prints a warning line
func (ui *UI) Warning(format string, args ...any) {
	fmt.Fprintln(ui.out, ui.paint(color.New(color.FgYellow), "⚠ "+format, args...))
}

// Field prints a "label: value" line
func (ui *UI) Field(label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(ui.out, "%s: %s\n", ui.paint(color.New(color.Faint), "%s", label), value)
}

// List prints a titled bullet list
func (ui *UI) List(title string, items []string) {
	ui.Title("%s", title)
	for _, item := range items {
		fmt.Fprintf(ui.out, "  • %s\n", item)
	}
}

// Risk renders a risk level in its display color
func (ui *UI) Risk(level product.RiskLevel) string {
	return ui.paint(riskColor(level), "%s", string(level))
}

// Table prints tab-aligned rows under a header
func (ui *UI) Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(ui.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

// JSON writes v as indented JSON without HTML escaping
func (ui *UI) JSON(v any) error {
	enc := json.NewEncoder(ui.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Disclaimer prints the advisory notice
func (ui *UI) Disclaimer() {
	fmt.Fprintln(ui.out)
	fmt.Fprintln(ui.out, ui.paint(color.New(color.Faint), "%s", disclaimer))
}

// riskColor converts the level's #RRGGBB display color to a terminal color
func riskColor(level product.RiskLevel) *color.Color {
	hex := strings.TrimPrefix(level.Color(), "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return color.New(color.Reset)
	}
	return color.RGB(int(v>>16&0xFF), int(v>>8&0xFF), int(v&0xFF))
}

func productRows(ui *UI, products []*product.NormalizedProduct) [][]string {
	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = []string{
			p.ProductID,
			p.ProductName,
			p.InsuranceCompany,
			string(p.InsuranceType),
			p.AgeRangeStr,
			p.MinPremiumStr,
			ui.Risk(p.RiskLevel),
		}
	}
	return rows
}

var productHeaders = []string{"代码", "名称", "保险公司", "类型", "适合年龄", "最低保费", "风险"}

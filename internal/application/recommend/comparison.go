package recommend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pension/backend/internal/domain/product"
)

type comparisonField struct {
	label string
	value func(*product.NormalizedProduct) string
}

var comparisonFields = []comparisonField{
	{"产品名称", func(p *product.NormalizedProduct) string { return p.ProductName }},
	{"保险公司", func(p *product.NormalizedProduct) string { return p.InsuranceCompany }},
	{"适合年龄", func(p *product.NormalizedProduct) string { return p.AgeRangeStr }},
	{"保险类型", func(p *product.NormalizedProduct) string { return string(p.InsuranceType) }},
	{"缴费方式", func(p *product.NormalizedProduct) string { return string(p.PaymentType) }},
	{"缴费年限", func(p *product.NormalizedProduct) string { return p.PaymentPeriodsStr }},
	{"最低保费", func(p *product.NormalizedProduct) string { return p.MinPremiumStr }},
	{"风险等级", func(p *product.NormalizedProduct) string { return string(p.RiskLevel) }},
	{"保障期限", func(p *product.NormalizedProduct) string { return p.CoverageStr }},
	{"销售渠道", func(p *product.NormalizedProduct) string { return p.SalesChannel }},
	{"销售范围", func(p *product.NormalizedProduct) string { return p.SalesScope }},
}

// ComparisonRow is one attribute across the compared products.
// It marshals as {"feature": label, "product_1": v1, ...}.
type ComparisonRow struct {
	Feature string
	Values  []string
}

// MarshalJSON keeps feature first and products in input order
func (r ComparisonRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"feature":`)
	if err := writeJSONString(&buf, r.Feature); err != nil {
		return nil, err
	}
	for i, v := range r.Values {
		fmt.Fprintf(&buf, `,"product_%d":`, i+1)
		if err := writeJSONString(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the product_N keys back in order
func (r *ComparisonRow) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.Feature = m["feature"]
	r.Values = r.Values[:0]
	for i := 1; ; i++ {
		v, ok := m["product_"+strconv.Itoa(i)]
		if !ok {
			return nil
		}
		r.Values = append(r.Values, v)
	}
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// ComparisonTable is the side-by-side view of several products
type ComparisonTable struct {
	ProductIDs []string        `json:"product_ids"`
	MissingIDs []string        `json:"missing_ids"`
	Rows       []ComparisonRow `json:"rows"`
}

// buildComparison lays out the resolved products column by column
func buildComparison(products []*product.NormalizedProduct) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(comparisonFields))
	for _, f := range comparisonFields {
		row := ComparisonRow{Feature: f.label, Values: make([]string, len(products))}
		for i, p := range products {
			row.Values[i] = f.value(p)
		}
		rows = append(rows, row)
	}
	return rows
}

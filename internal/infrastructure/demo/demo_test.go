package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
)

func TestRows(t *testing.T) {
	rows, err := Rows()
	require.NoError(t, err)
	require.Len(t, rows, 27)

	first := rows[0]
	assert.Equal(t, "76100558", first.Get(product.ColumnProductID))
	assert.Equal(t, "中宏人寿保险有限公司", first.Get(product.ColumnCompany))
	for _, col := range product.Columns {
		_, ok := first[col]
		assert.True(t, ok, col)
	}

	rows[0][product.ColumnProductID] = "changed"
	again, err := Rows()
	require.NoError(t, err)
	assert.Equal(t, "76100558", again[0].Get(product.ColumnProductID))
}

func TestRows_BuildCatalog(t *testing.T) {
	rows, err := Rows()
	require.NoError(t, err)

	c, result, err := catalog.Build(rows)
	require.NoError(t, err)

	assert.Equal(t, 27, c.Len())
	assert.Zero(t, result.SkippedRows)

	p, ok := c.Get("76100749")
	require.True(t, ok)
	assert.Equal(t, "国泰人寿保险有限责任公司", p.InsuranceCompany)
	require.NotNil(t, p.MinAge)
	require.NotNil(t, p.MaxAge)
	assert.Equal(t, 0, *p.MinAge)
	assert.Equal(t, 60, *p.MaxAge)

	summary := c.Summary()
	assert.Equal(t, 27, summary.TotalProducts)
	require.NotEmpty(t, summary.TopCompanies)
	assert.Equal(t, "太平人寿保险有限公司", summary.TopCompanies[0].Company)
	assert.Equal(t, 9, summary.TopCompanies[0].Count)
}

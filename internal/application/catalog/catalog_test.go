package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
)

func rawRow(id, name, company, age, premium, coverage, features string) product.RawRow {
	return product.RawRow{
		product.ColumnProductID:   id,
		product.ColumnProductName: name,
		product.ColumnCompany:     company,
		product.ColumnAge:         age,
		product.ColumnPremium:     premium,
		product.ColumnCoverage:    coverage,
		product.ColumnFeatures:    features,
	}
}

func sampleRows() []product.RawRow {
	return []product.RawRow{
		rawRow("P001", "安享养老年金保险", "平安人寿", "18-60周岁", "年交1000元起", "终身", "保证领取，养老金终身"),
		rawRow("P002", "金瑞万能型终身寿险", "中国人寿", "出生满28天至65周岁", "趸交50000元", "保障至80周岁", "万能账户，收益稳健"),
		rawRow("P003", "团体补充养老保险", "太平养老", "--", "--", "--", "员工福利，企业年金"),
		rawRow("P004", "鑫享分红两全保险", "中国人寿", "18-50周岁", "10年交，每年5000元", "20年", "分红，身故保障"),
	}
}

func mustBuild(t *testing.T) *Catalog {
	t.Helper()
	c, result, err := Build(sampleRows())
	require.NoError(t, err)
	require.Equal(t, 4, result.BuiltRows)
	return c
}

func TestNormalizeRow(t *testing.T) {
	p := NormalizeRow(0, sampleRows()[0])

	assert.Equal(t, "P001", p.ProductID)
	assert.Equal(t, "平安人寿", p.InsuranceCompany)
	assert.Equal(t, 18, *p.MinAge)
	assert.Equal(t, 60, *p.MaxAge)
	assert.Equal(t, "18-60岁", p.AgeRangeStr)
	assert.Equal(t, product.PaymentTypeInstallment, p.PaymentType)
	assert.Equal(t, int64(1000), p.MinPremium)
	assert.Equal(t, "1,000元", p.MinPremiumStr)
	assert.Equal(t, product.CoverageTypeWholeLife, p.CoverageType)
	assert.Equal(t, "终身保障", p.CoverageStr)
	assert.Equal(t, product.RiskLow, p.RiskLevel)
	assert.Contains(t, p.FeatureKeywords, "养老金")
	assert.Equal(t, product.UnknownValue, p.SalesChannel)
	assert.Equal(t, "18-60周岁", p.OriginalAgeDesc)
}

func TestNormalizeRow_Placeholders(t *testing.T) {
	p := NormalizeRow(7, product.RawRow{product.ColumnProductID: "nan", product.ColumnProductName: "--"})

	assert.Equal(t, "ID_7", p.ProductID)
	assert.Equal(t, product.UnknownName, p.ProductName)
	assert.Equal(t, product.UnknownCompany, p.InsuranceCompany)
	assert.Equal(t, product.InsuranceTypeUnknown, p.InsuranceType)
	assert.Nil(t, p.MinAge)
	assert.Nil(t, p.MaxAge)
	assert.Equal(t, "不限-不限岁", p.AgeRangeStr)
	assert.Equal(t, product.PaymentTypeUnknown, p.PaymentType)
	assert.Equal(t, int64(0), p.MinPremium)
	assert.Equal(t, "多种可选", p.PaymentPeriodsStr)
	assert.NotNil(t, p.PaymentPeriods)
	assert.NotNil(t, p.FeatureKeywords)
	assert.Equal(t, "", p.OriginalAgeDesc)
}

func TestBuild(t *testing.T) {
	t.Run("One product per row", func(t *testing.T) {
		c, result, err := Build(sampleRows())

		require.NoError(t, err)
		assert.Equal(t, 4, c.Len())
		assert.Equal(t, 4, result.TotalRows)
		assert.Equal(t, 0, result.SkippedRows)
		assert.Empty(t, result.Errors)
		assert.False(t, c.BuiltAt().IsZero())
	})

	t.Run("Duplicate id is skipped and reported", func(t *testing.T) {
		rows := append(sampleRows(), rawRow("P001", "重复产品", "某公司", "", "", "", ""))

		c, result, err := Build(rows)

		require.NoError(t, err)
		assert.Equal(t, 4, c.Len())
		assert.Equal(t, 1, result.SkippedRows)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, csvimport.ErrCodeImportDuplicateInFile, result.Errors[0].Code)
		assert.Equal(t, 5, result.Errors[0].Row)

		p, ok := c.Get("P001")
		require.True(t, ok)
		assert.Equal(t, "安享养老年金保险", p.ProductName)
	})

	t.Run("No rows", func(t *testing.T) {
		_, _, err := Build(nil)
		assert.ErrorIs(t, err, ErrNoRows)
	})
}

func TestCatalogLookups(t *testing.T) {
	c := mustBuild(t)

	t.Run("Get", func(t *testing.T) {
		p, ok := c.Get("P002")
		require.True(t, ok)
		assert.Equal(t, "中国人寿", p.InsuranceCompany)

		_, ok = c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("Companies are distinct and sorted", func(t *testing.T) {
		companies := c.Companies()
		assert.Len(t, companies, 3)
		assert.IsIncreasing(t, companies)
	})

	t.Run("ByCompany", func(t *testing.T) {
		assert.Len(t, c.ByCompany("中国人寿"), 2)
		assert.Empty(t, c.ByCompany("不存在"))
	})

	t.Run("FilterByAge treats nil bounds as unbounded", func(t *testing.T) {
		ids := productIDs(c.FilterByAge(62))
		assert.ElementsMatch(t, []string{"P002", "P003"}, ids)
	})

	t.Run("FilterByRisk", func(t *testing.T) {
		assert.Equal(t, []string{"P001"}, productIDs(c.FilterByRisk(product.RiskLow)))
	})

	t.Run("Search is case-insensitive over several fields", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"P002", "P004"}, productIDs(c.Search("中国人寿")))
		assert.ElementsMatch(t, []string{"P003"}, productIDs(c.Search("员工福利")))
		assert.Len(t, c.Search("  "), 4)
		assert.Empty(t, c.Search("不存在的关键词"))
	})

	t.Run("Products returns a copy", func(t *testing.T) {
		ps := c.Products()
		ps[0] = nil
		assert.NotNil(t, c.Products()[0])
	})
}

func TestCatalogFilter(t *testing.T) {
	c := mustBuild(t)
	intp := func(v int) *int { return &v }
	int64p := func(v int64) *int64 { return &v }

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"empty criteria keeps all", Criteria{}, []string{"P001", "P002", "P003", "P004"}},
		{"company", Criteria{InsuranceCompany: "中国人寿"}, []string{"P002", "P004"}},
		{"risk", Criteria{RiskLevel: product.RiskLow}, []string{"P001"}},
		{"payment type", Criteria{PaymentType: product.PaymentTypeLumpSum}, []string{"P002"}},
		{"min age excludes nil bound", Criteria{MinAge: intp(18)}, []string{"P001", "P002", "P004"}},
		{"max age", Criteria{MaxAge: intp(60)}, []string{"P001", "P002"}},
		{"max premium", Criteria{MaxPremium: int64p(5000)}, []string{"P001", "P003", "P004"}},
		{"criteria combine with AND", Criteria{InsuranceCompany: "中国人寿", MaxAge: intp(60)}, []string{"P002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, productIDs(c.Filter(tt.criteria)))
		})
	}

	assert.True(t, Criteria{}.IsEmpty())
	assert.False(t, Criteria{RiskLevel: product.RiskHigh}.IsEmpty())

	p2, ok := c.Get("P002")
	require.True(t, ok)
	assert.True(t, Criteria{}.Match(p2))
	assert.True(t, Criteria{InsuranceCompany: "中国人寿"}.Match(p2))
	assert.False(t, Criteria{InsuranceCompany: "平安人寿"}.Match(p2))
}

func TestCatalogSummary(t *testing.T) {
	c := mustBuild(t)

	s := c.Summary()

	assert.Same(t, s, c.Summary())
	assert.Equal(t, 4, s.TotalProducts)
	assert.Equal(t, 3, s.TotalCompanies)
	assert.Equal(t, 3, s.AgeStats.HasMinAge)
	assert.Equal(t, 3, s.AgeStats.HasMaxAge)
	require.NotNil(t, s.AgeStats.AvgMinAge)
	assert.InDelta(t, 12.0, *s.AgeStats.AvgMinAge, 1e-9)
	assert.InDelta(t, 175.0/3, *s.AgeStats.AvgMaxAge, 1e-9)
	require.NotEmpty(t, s.TopCompanies)
	assert.Equal(t, CompanyCount{Company: "中国人寿", Count: 2}, s.TopCompanies[0])
	assert.Equal(t, "平安人寿", s.TopCompanies[1].Company)

	total := 0
	for _, n := range s.RiskDistribution {
		total += n
	}
	assert.Equal(t, 4, total)
}

func TestCatalogSummary_ConcurrentReaders(t *testing.T) {
	c := mustBuild(t)

	var wg sync.WaitGroup
	results := make([]*Summary, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Summary()
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func productIDs(ps []*product.NormalizedProduct) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ProductID)
	}
	return ids
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, shared.ErrSnapshotNotFound
	}
	return d, nil
}

func (m *memStore) Close() error { return nil }

package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
	"github.com/pension/backend/internal/domain/scoring"
	"github.com/pension/backend/internal/domain/shared"
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

func testRows() []product.RawRow {
	return []product.RawRow{
		rawRow("P001", "安享养老年金保险", "平安人寿", "18-60周岁", "年交1000元起", "终身", "保证领取，养老金终身"),
		rawRow("P002", "金瑞万能型终身寿险", "中国人寿", "出生满28天至65周岁", "趸交50000元", "保障至80周岁", "万能账户，收益稳健"),
		rawRow("P003", "团体补充养老保险", "太平养老", "--", "--", "--", "员工福利，企业年金"),
		rawRow("P004", "鑫享分红两全保险", "中国人寿", "18-50周岁", "10年交，每年5000元", "20年", "分红，身故保障"),
		rawRow("P005", "鑫利分红型年金保险", "泰康人寿", "30-50周岁", "年交10000元", "至60周岁", "年金，分红"),
		rawRow("P006", "少儿成长年金险", "新华保险", "0-17周岁", "年交3000元", "至30周岁", "教育金"),
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	svc := catalog.NewService()
	_, err := svc.Rebuild(context.Background(), testRows())
	require.NoError(t, err)
	e, err := NewEngine(svc, opts...)
	require.NoError(t, err)
	return e
}

func ptr[T any](v T) *T { return &v }

func scenarioInput() profile.Input {
	return profile.Input{
		Age:                ptr(35),
		AnnualIncome:       ptr(20.0),
		RiskTolerance:      ptr("中"),
		SocialSecurityType: ptr("城镇职工"),
	}
}

func TestAddUserProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults and warnings", func(t *testing.T) {
		e := newTestEngine(t)
		in := scenarioInput()
		in.Age = ptr(80)
		in.RiskTolerance = ptr("激进")

		res, err := e.AddUserProfile(ctx, "u1", in)

		require.NoError(t, err)
		assert.Equal(t, profile.MaxAge, res.Profile.Age)
		assert.Equal(t, product.RiskMedium, res.Profile.RiskTolerance)
		assert.Len(t, res.Warnings, 2)
		assert.InDelta(t, 10.0, res.Profile.InvestmentAmount, 1e-9)
	})

	t.Run("Missing income registers nothing", func(t *testing.T) {
		e := newTestEngine(t)
		in := scenarioInput()
		in.AnnualIncome = nil

		_, err := e.AddUserProfile(ctx, "u2", in)
		require.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "annual_income")

		_, err = e.GetRecommendations(ctx, "u2", 3, nil)
		assert.ErrorIs(t, err, shared.ErrUserNotFound)
		assert.False(t, e.Store().HasUser("u2"))
	})

	t.Run("Negative income", func(t *testing.T) {
		e := newTestEngine(t)
		in := scenarioInput()
		in.AnnualIncome = ptr(-1.0)

		_, err := e.AddUserProfile(ctx, "u3", in)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("Blank user id", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.AddUserProfile(ctx, "  ", scenarioInput())
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("Overwrite keeps history", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.AddUserProfile(ctx, "u4", scenarioInput())
		require.NoError(t, err)
		_, err = e.GetRecommendations(ctx, "u4", 2, nil)
		require.NoError(t, err)

		in := scenarioInput()
		in.Age = ptr(45)
		_, err = e.AddUserProfile(ctx, "u4", in)
		require.NoError(t, err)

		p, err := e.Profile("u4")
		require.NoError(t, err)
		assert.Equal(t, 45, p.Age)
		assert.Len(t, e.GetHistory("u4"), 1)
	})
}

func TestGetRecommendations_Scenario(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.AddUserProfile(ctx, "scenario", scenarioInput())
	require.NoError(t, err)

	res, err := e.GetRecommendations(ctx, "scenario", 3, nil)
	require.NoError(t, err)

	assert.Equal(t, "scenario", res.UserID)
	assert.Equal(t, 6, res.TotalProductsEvaluated)
	assert.Equal(t, 3, res.RecommendationCount)
	require.Len(t, res.Recommendations, 3)

	var found *Recommendation
	for i := range res.Recommendations {
		if res.Recommendations[i].ProductID == "P005" {
			found = &res.Recommendations[i]
		}
	}
	require.NotNil(t, found, "medium-risk annuity for ages 30-50 should rank in the top 3")
	assert.Equal(t, product.RiskMedium, found.RiskLevel)
	assert.Greater(t, found.MatchScore, 50.0)
	assert.LessOrEqual(t, len(found.RecommendationReasons), MaxReasons)
	assert.NotEmpty(t, found.RecommendationReasons)
	assert.Equal(t, 1.0, found.DetailedScores.Risk)
	assert.Equal(t, "P005", found.ProductDetails.ProductID)
}

func TestGetRecommendations_Ordering(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.AddUserProfile(ctx, "u", scenarioInput())
	require.NoError(t, err)

	for _, n := range []int{1, 2, 5, 6, 50} {
		t.Run(fmt.Sprintf("top_%d", n), func(t *testing.T) {
			res, err := e.GetRecommendations(ctx, "u", n, nil)
			require.NoError(t, err)

			assert.LessOrEqual(t, len(res.Recommendations), n)
			for i := 1; i < len(res.Recommendations); i++ {
				assert.GreaterOrEqual(t, res.Recommendations[i-1].MatchScore, res.Recommendations[i].MatchScore)
			}
			for _, r := range res.Recommendations {
				assert.GreaterOrEqual(t, r.MatchScore, 0.0)
				assert.LessOrEqual(t, r.MatchScore, 100.0)
			}
		})
	}
}

func TestGetRecommendations_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown user", func(t *testing.T) {
		_, err := newTestEngine(t).GetRecommendations(ctx, "nobody", 3, nil)
		assert.ErrorIs(t, err, shared.ErrUserNotFound)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("Non-positive top_n", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.AddUserProfile(ctx, "u", scenarioInput())
		require.NoError(t, err)

		_, err = e.GetRecommendations(ctx, "u", 0, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("Empty catalog", func(t *testing.T) {
		e, err := NewEngine(catalog.NewService())
		require.NoError(t, err)
		_, err = e.AddUserProfile(ctx, "u", scenarioInput())
		require.NoError(t, err)

		_, err = e.GetRecommendations(ctx, "u", 3, nil)
		assert.ErrorIs(t, err, shared.ErrCatalogEmpty)
	})

	t.Run("No product matches criteria", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.AddUserProfile(ctx, "u", scenarioInput())
		require.NoError(t, err)

		_, err = e.GetRecommendations(ctx, "u", 3, &catalog.Criteria{InsuranceCompany: "不存在"})
		assert.ErrorIs(t, err, shared.ErrNoMatchingProducts)
		assert.Empty(t, e.GetHistory("u"))
	})
}

func TestGetRecommendations_Criteria(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.AddUserProfile(ctx, "u", scenarioInput())
	require.NoError(t, err)

	res, err := e.GetRecommendations(ctx, "u", 5, &catalog.Criteria{InsuranceCompany: "中国人寿"})

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalProductsEvaluated)
	for _, r := range res.Recommendations {
		assert.Equal(t, "中国人寿", r.InsuranceCompany)
	}
}

func TestGetRecommendations_RecordsHistory(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	e := newTestEngine(t, WithClock(func() time.Time { return fixed }))
	_, err := e.AddUserProfile(ctx, "u", scenarioInput())
	require.NoError(t, err)

	res, err := e.GetRecommendations(ctx, "u", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01 09:30:00", res.RecommendationTime)

	history := e.GetHistory("u")
	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0].ID)
	assert.True(t, fixed.Equal(history[0].Timestamp))
	assert.Equal(t, 6, history[0].TotalProductsEvaluated)
	assert.Len(t, history[0].Recommendations, 2)
	assert.Equal(t, 35, history[0].UserProfile.Age)

	require.NoError(t, e.ClearHistory("u"))
	assert.Empty(t, e.GetHistory("u"))
	assert.ErrorIs(t, e.ClearHistory("ghost"), shared.ErrUserNotFound)
}

func TestGetRecommendations_ConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.AddUserProfile(ctx, "u", scenarioInput())
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.GetRecommendations(ctx, "u", 3, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, e.GetHistory("u"), n)
}

func TestSetWeights(t *testing.T) {
	e := newTestEngine(t)
	before := e.Weights()

	bad := scoring.Weights{Age: 0.5, Income: 0.6, Risk: 0.1}
	err := e.SetWeights(bad)

	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.ErrorIs(t, err, shared.ErrInvalidWeights)
	assert.Equal(t, before, e.Weights())

	good := scoring.Weights{Age: 0.5, Income: 0.1, Risk: 0.1, Retirement: 0.1, SocialSecurity: 0.1, Investment: 0.1}
	require.NoError(t, e.SetWeights(good))
	assert.Equal(t, good, e.Weights())
}

func TestNewEngine_RejectsInvalidWeights(t *testing.T) {
	_, err := NewEngine(catalog.NewService(), WithWeights(scoring.Weights{Age: 2}))
	assert.ErrorIs(t, err, shared.ErrInvalidWeights)
}

func TestGenerateComparisonTable(t *testing.T) {
	e := newTestEngine(t)

	t.Run("Eleven rows in input order", func(t *testing.T) {
		table, err := e.GenerateComparisonTable([]string{"P002", "missing", "P001"})

		require.NoError(t, err)
		require.Len(t, table.Rows, 11)
		assert.Equal(t, []string{"P002", "P001"}, table.ProductIDs)
		assert.Equal(t, []string{"missing"}, table.MissingIDs)
		assert.Equal(t, "产品名称", table.Rows[0].Feature)
		assert.Equal(t, []string{"金瑞万能型终身寿险", "安享养老年金保险"}, table.Rows[0].Values)
		assert.Equal(t, "销售范围", table.Rows[10].Feature)
	})

	t.Run("Row JSON layout", func(t *testing.T) {
		table, err := e.GenerateComparisonTable([]string{"P001", "P002"})
		require.NoError(t, err)

		data, err := json.Marshal(table.Rows[1])
		require.NoError(t, err)
		assert.Equal(t, `{"feature":"保险公司","product_1":"平安人寿","product_2":"中国人寿"}`, string(data))

		var back ComparisonRow
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, table.Rows[1], back)
	})

	t.Run("Nothing resolves", func(t *testing.T) {
		_, err := e.GenerateComparisonTable([]string{"x", "y"})
		assert.ErrorIs(t, err, shared.ErrProductNotFound)
	})
}

func TestGetPersonalizedAdvice(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.AddUserProfile(ctx, "u", scenarioInput())
	require.NoError(t, err)

	advice, err := e.GetPersonalizedAdvice(ctx, "u")

	require.NoError(t, err)
	assert.Equal(t, "u", advice.UserID)
	assert.Len(t, advice.GeneralAdvice, 3)
	assert.Contains(t, advice.GeneralAdvice, "这是规划养老的关键时期，建议建立稳定的养老金积累计划。")
	assert.Contains(t, advice.GeneralAdvice, "收入良好，可以适当配置不同风险等级的产品进行组合。")
	assert.Equal(t, []string{"您可以承受中等风险，分红型产品可能带来更好收益。"}, advice.RiskManagementAdvice)
	assert.Len(t, advice.NextSteps, 4)

	_, err = e.GetPersonalizedAdvice(ctx, "ghost")
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	src := newTestEngine(t, WithHistoryStore(store, ""))

	_, err := src.AddUserProfile(ctx, "A", scenarioInput())
	require.NoError(t, err)
	in := scenarioInput()
	in.Age = ptr(55)
	_, err = src.AddUserProfile(ctx, "B", in)
	require.NoError(t, err)

	first, err := src.GetRecommendations(ctx, "A", 2, nil)
	require.NoError(t, err)
	_, err = src.GetRecommendations(ctx, "A", 4, nil)
	require.NoError(t, err)
	require.NoError(t, src.SaveHistory(ctx))

	dst := newTestEngine(t, WithHistoryStore(store, ""))
	require.NoError(t, dst.LoadHistory(ctx))

	want := src.GetHistory("A")
	got := dst.GetHistory("A")
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
		assert.Len(t, got[i].Recommendations, len(want[i].Recommendations))
	}
	assert.Equal(t, first.Recommendations[0].ProductID, got[0].Recommendations[0].ProductID)
	assert.Empty(t, dst.GetHistory("B"))
	assert.True(t, dst.Store().HasUser("B"))
}

func TestLoadHistory_FailureLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing snapshot", func(t *testing.T) {
		e := newTestEngine(t, WithHistoryStore(newMemStore(), ""))
		_, err := e.AddUserProfile(ctx, "u", scenarioInput())
		require.NoError(t, err)
		_, err = e.GetRecommendations(ctx, "u", 1, nil)
		require.NoError(t, err)

		err = e.LoadHistory(ctx)

		assert.ErrorIs(t, err, shared.ErrSnapshotNotFound)
		assert.Len(t, e.GetHistory("u"), 1)
	})

	t.Run("Corrupt snapshot", func(t *testing.T) {
		store := newMemStore()
		require.NoError(t, store.Save(ctx, DefaultHistoryKey, []byte("[1,2")))
		e := newTestEngine(t, WithHistoryStore(store, ""))
		_, err := e.AddUserProfile(ctx, "u", scenarioInput())
		require.NoError(t, err)
		_, err = e.GetRecommendations(ctx, "u", 1, nil)
		require.NoError(t, err)

		err = e.LoadHistory(ctx)

		assert.ErrorIs(t, err, shared.ErrPersistence)
		assert.Len(t, e.GetHistory("u"), 1)
	})

	t.Run("No store", func(t *testing.T) {
		assert.ErrorIs(t, newTestEngine(t).SaveHistory(ctx), shared.ErrPersistence)
	})
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

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
	"github.com/pension/backend/internal/domain/shared"
	"github.com/pension/backend/internal/infrastructure/export"
)

const (
	defaultListLimit = 20
	cliUserID        = "cli_user"
)

func (c *cli) catalog() (*catalog.Catalog, error) {
	current := c.app.Catalog.Current()
	if current.Len() == 0 {
		return nil, shared.ErrCatalogEmpty
	}
	return current, nil
}

func (c *cli) newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			current, err := c.catalog()
			if err != nil {
				return err
			}
			s := current.Summary()
			if c.jsonOut {
				return c.ui.JSON(s)
			}

			c.ui.Title("产品概况")
			c.ui.Field("产品总数", strconv.Itoa(s.TotalProducts))
			c.ui.Field("保险公司数", strconv.Itoa(s.TotalCompanies))
			if s.AgeStats.AvgMinAge != nil && s.AgeStats.AvgMaxAge != nil {
				c.ui.Field("平均投保年龄", fmt.Sprintf("%.1f - %.1f 岁", *s.AgeStats.AvgMinAge, *s.AgeStats.AvgMaxAge))
			}

			c.ui.Title("风险分布")
			for _, level := range product.RiskLevels {
				if n := s.RiskDistribution[level]; n > 0 {
					c.ui.Printf("  %s  %d\n", c.ui.Risk(level), n)
				}
			}

			c.ui.Title("主要保险公司")
			rows := make([][]string, len(s.TopCompanies))
			for i, cc := range s.TopCompanies {
				rows[i] = []string{cc.Company, strconv.Itoa(cc.Count)}
			}
			c.ui.Table([]string{"保险公司", "产品数"}, rows)
			return nil
		},
	}
}

func (c *cli) printProducts(products []*product.NormalizedProduct, limit int) error {
	total := len(products)
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	if c.jsonOut {
		if products == nil {
			products = []*product.NormalizedProduct{}
		}
		return c.ui.JSON(products)
	}
	if total == 0 {
		c.ui.Warning("没有符合条件的产品")
		return nil
	}
	c.ui.Table(productHeaders, productRows(c.ui, products))
	c.ui.Printf("\n共 %d 个产品，显示 %d 个\n", total, len(products))
	return nil
}

func (c *cli) newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search products by name, company, type or features",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			current, err := c.catalog()
			if err != nil {
				return err
			}
			return c.printProducts(current.Search(args[0]), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "maximum number of products shown (0 for all)")
	return cmd
}

func (c *cli) newListCmd() *cobra.Command {
	var (
		limit      int
		company    string
		insType    string
		risk       string
		payment    string
		age        int
		maxPremium int64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products matching filter criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := c.catalog()
			if err != nil {
				return err
			}
			criteria := catalog.Criteria{
				InsuranceCompany: company,
				InsuranceType:    product.InsuranceType(insType),
				RiskLevel:        product.RiskLevel(risk),
				PaymentType:      product.PaymentType(payment),
			}
			if cmd.Flags().Changed("age") {
				criteria.MinAge = &age
				criteria.MaxAge = &age
			}
			if cmd.Flags().Changed("max-premium") {
				criteria.MaxPremium = &maxPremium
			}
			return c.printProducts(current.Filter(criteria), limit)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", defaultListLimit, "maximum number of products shown (0 for all)")
	f.StringVar(&company, "company", "", "insurance company full name")
	f.StringVar(&insType, "type", "", "insurance type, e.g. 年金保险")
	f.StringVar(&risk, "risk", "", "risk level: 低, 中低, 中, 中高, 高")
	f.StringVar(&payment, "payment", "", "payment type, e.g. 趸交")
	f.IntVar(&age, "age", 0, "only products an applicant of this age can buy")
	f.Int64Var(&maxPremium, "max-premium", 0, "maximum minimum premium in yuan")
	return cmd
}

func (c *cli) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			current, err := c.catalog()
			if err != nil {
				return err
			}
			p, ok := current.Get(args[0])
			if !ok {
				return shared.NewNotFoundError(shared.CodeProductNotFound, "product %s not found", args[0])
			}
			if c.jsonOut {
				return c.ui.JSON(p)
			}

			c.ui.Title("%s", p.ProductName)
			c.ui.Field("产品代码", p.ProductID)
			c.ui.Field("保险公司", p.InsuranceCompany)
			c.ui.Field("保险类型", string(p.InsuranceType))
			c.ui.Field("适合年龄", p.AgeRangeStr)
			c.ui.Field("缴费方式", string(p.PaymentType))
			c.ui.Field("缴费年限", p.PaymentPeriodsStr)
			c.ui.Field("最低保费", p.MinPremiumStr)
			c.ui.Field("保障期限", p.CoverageStr)
			c.ui.Field("风险等级", c.ui.Risk(p.RiskLevel))
			c.ui.Field("销售渠道", p.SalesChannel)
			c.ui.Field("销售范围", p.SalesScope)
			c.ui.Field("特色关键词", strings.Join(p.FeatureKeywords, "、"))
			if p.Features != "" {
				c.ui.Title("产品特色")
				c.ui.Printf("%s\n", p.Features)
			}
			return nil
		},
	}
}

// profileFlags collects a user profile from command flags
type profileFlags struct {
	userID         string
	age            int
	income         float64
	risk           string
	socialSecurity string
	retirementAge  int
	investment     float64
}

func (pf *profileFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pf.userID, "user", cliUserID, "user id the profile is registered under")
	f.IntVar(&pf.age, "age", 0, "age in years")
	f.Float64Var(&pf.income, "income", 0, "annual income in 万元")
	f.StringVar(&pf.risk, "risk", string(product.RiskMedium), "risk tolerance: 低, 中低, 中, 中高, 高")
	f.StringVar(&pf.socialSecurity, "social-security", string(profile.DefaultSocialSecurityType), "social security type: 城镇职工, 城乡居民, 无")
	f.IntVar(&pf.retirementAge, "retirement-age", 0, "expected retirement age")
	f.Float64Var(&pf.investment, "investment", 0, "planned investment amount in 万元")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("income")
}

func (pf *profileFlags) input(cmd *cobra.Command) profile.Input {
	in := profile.Input{
		Age:                &pf.age,
		AnnualIncome:       &pf.income,
		RiskTolerance:      &pf.risk,
		SocialSecurityType: &pf.socialSecurity,
	}
	if cmd.Flags().Changed("retirement-age") {
		in.ExpectedRetirementAge = &pf.retirementAge
	}
	if cmd.Flags().Changed("investment") {
		in.InvestmentAmount = &pf.investment
	}
	return in
}

func (c *cli) registerProfile(cmd *cobra.Command, pf *profileFlags) error {
	res, err := c.app.Engine.AddUserProfile(cmd.Context(), pf.userID, pf.input(cmd))
	if err != nil {
		return err
	}
	if !c.jsonOut {
		for _, w := range res.Warnings {
			c.ui.Warning("%s", w)
		}
	}
	return nil
}

func (c *cli) newRecommendCmd() *cobra.Command {
	var (
		pf      profileFlags
		topN    int
		insType string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend products for a user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.registerProfile(cmd, &pf); err != nil {
				return err
			}
			var criteria *catalog.Criteria
			if insType != "" {
				criteria = &catalog.Criteria{InsuranceType: product.InsuranceType(insType)}
			}
			result, err := c.app.Engine.GetRecommendations(cmd.Context(), pf.userID, topN, criteria)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.ui.JSON(result)
			}

			c.ui.Title("为您推荐 %d 款产品（共评估 %d 款）", result.RecommendationCount, result.TotalProductsEvaluated)
			for i, r := range result.Recommendations {
				c.ui.Printf("\n%d. %s  [%s]\n", i+1, r.ProductName, r.ProductID)
				c.ui.Field("   匹配度", fmt.Sprintf("%.1f%%", r.MatchScore))
				c.ui.Field("   保险公司", r.InsuranceCompany)
				c.ui.Field("   类型/缴费", fmt.Sprintf("%s / %s", r.InsuranceType, r.PaymentType))
				c.ui.Field("   最低保费", r.MinPremium)
				c.ui.Field("   风险等级", c.ui.Risk(r.RiskLevel))
				for _, reason := range r.RecommendationReasons {
					c.ui.Printf("     ✓ %s\n", reason)
				}
			}
			c.ui.Disclaimer()
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().IntVarP(&topN, "top", "n", 5, "number of recommendations")
	cmd.Flags().StringVar(&insType, "type", "", "only recommend this insurance type")
	return cmd
}

func (c *cli) newAdviceCmd() *cobra.Command {
	var pf profileFlags
	cmd := &cobra.Command{
		Use:   "advice",
		Short: "Give rule-based pension planning advice for a user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.registerProfile(cmd, &pf); err != nil {
				return err
			}
			advice, err := c.app.Engine.GetPersonalizedAdvice(cmd.Context(), pf.userID)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.ui.JSON(advice)
			}
			c.ui.List("总体建议", advice.GeneralAdvice)
			c.ui.List("产品类型建议", advice.ProductTypeRecommendations)
			c.ui.List("风险管理", advice.RiskManagementAdvice)
			c.ui.List("下一步", advice.NextSteps)
			c.ui.Disclaimer()
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func (c *cli) newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <product-id> <product-id>...",
		Short: "Compare products side by side",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			table, err := c.app.Engine.GenerateComparisonTable(args)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.ui.JSON(table)
			}
			for _, id := range table.MissingIDs {
				c.ui.Warning("product %s not found", id)
			}
			headers := append([]string{"项目"}, table.ProductIDs...)
			rows := make([][]string, len(table.Rows))
			for i, row := range table.Rows {
				rows[i] = append([]string{row.Feature}, row.Values...)
			}
			c.ui.Table(headers, rows)
			return nil
		},
	}
}

func (c *cli) newExportCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export processed products as CSV, XLSX or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := c.catalog()
			if err != nil {
				return err
			}
			if format == "" {
				format = export.FormatFromPath(output)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := export.Write(w, format, current.Products()); err != nil {
				return err
			}
			if output != "-" {
				if !c.jsonOut {
					c.ui.Printf("已导出 %d 个产品到 %s\n", current.Len(), output)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "csv, xlsx or json (default: from the output extension)")
	return cmd
}

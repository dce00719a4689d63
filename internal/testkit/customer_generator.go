package testkit

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"edascope/domain/dataset"
)

// CustomerGeneratorConfig configures the synthetic customer dataset
type CustomerGeneratorConfig struct {
	CustomerCount int       `json:"customer_count"`
	MissingRate   float64   `json:"missing_rate"` // share of income cells left blank
	ChurnRateBase float64   `json:"churn_rate_base"`
	StartDate     time.Time `json:"start_date"`
	Seed          int64     `json:"seed"`
}

// DefaultCustomerConfig returns sensible defaults for customer data generation
func DefaultCustomerConfig() CustomerGeneratorConfig {
	return CustomerGeneratorConfig{
		CustomerCount: 500,
		MissingRate:   0.05,
		ChurnRateBase: 0.2,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:          42,
	}
}

// CustomerDataGenerator generates a churn-style customer table with known structure:
//   - monthly_spend tracks income closely (a redundant pair)
//   - lifetime_value rises with tenure and spend
//   - churn probability falls with tenure
//   - signup_date and is_active are datetime and boolean columns
type CustomerDataGenerator struct {
	config CustomerGeneratorConfig
	rng    *rand.Rand
}

// NewCustomerDataGenerator creates a new customer data generator
func NewCustomerDataGenerator(config CustomerGeneratorConfig) *CustomerDataGenerator {
	return &CustomerDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table
func (g *CustomerDataGenerator) Generate() (*dataset.Table, error) {
	n := g.config.CustomerCount
	age := make([]float64, n)
	income := make([]float64, n)
	spend := make([]float64, n)
	tenure := make([]float64, n)
	ltv := make([]float64, n)
	city := make([]string, n)
	plan := make([]string, n)
	signup := make([]string, n)
	active := make([]string, n)
	churned := make([]string, n)

	for i := 0; i < n; i++ {
		age[i] = math.Round(18 + g.rng.Float64()*60)
		base := 30000 + g.rng.NormFloat64()*8000 + age[i]*300
		spend[i] = math.Round(base*0.01 + g.rng.NormFloat64()*15)
		income[i] = math.Round(base)
		if g.rng.Float64() < g.config.MissingRate {
			income[i] = math.NaN()
		}
		tenure[i] = float64(g.rng.Intn(72) + 1)
		ltv[i] = math.Round(tenure[i]*spend[i]*0.8 + g.rng.NormFloat64()*200)

		city[i] = g.randomCity()
		plan[i] = g.randomPlan()
		signup[i] = g.config.StartDate.AddDate(0, 0, -int(tenure[i])*30).Format("2006-01-02")
		active[i] = strconv.FormatBool(g.rng.Float64() < 0.7)

		churnProb := g.config.ChurnRateBase * (1.5 - tenure[i]/72)
		if g.rng.Float64() < churnProb {
			churned[i] = "yes"
		} else {
			churned[i] = "no"
		}
	}

	return dataset.NewTable("customers",
		dataset.NewNumericColumn("age", age),
		dataset.NewNumericColumn("income", income),
		dataset.NewNumericColumn("monthly_spend", spend),
		dataset.NewNumericColumn("tenure_months", tenure),
		dataset.NewCategoricalColumn("city", city),
		dataset.NewCategoricalColumn("plan", plan),
		dataset.NewLabelColumn("signup_date", dataset.KindDatetime, signup),
		dataset.NewLabelColumn("is_active", dataset.KindBoolean, active),
		dataset.NewNumericColumn("lifetime_value", ltv),
		dataset.NewCategoricalColumn("churned", churned),
	)
}

func (g *CustomerDataGenerator) randomCity() string {
	cities := []string{"Austin", "Boston", "Chicago", "Denver"}
	return cities[g.rng.Intn(len(cities))]
}

func (g *CustomerDataGenerator) randomPlan() string {
	r := g.rng.Float64()
	switch {
	case r < 0.5:
		return "basic"
	case r < 0.85:
		return "plus"
	default:
		return "premium"
	}
}

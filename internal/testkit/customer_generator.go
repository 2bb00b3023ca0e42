package testkit

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand"
	"strconv"

	"github.com/cockroachdb/errors"

	"modelbench/domain/dataset"
)

// Column names of the generated customer table
const (
	ColAge           = "age"
	ColCountry       = "country"
	ColSignupChannel = "signup_channel"
	ColDeviceType    = "device_type"
	ColPaymentMethod = "payment_method"
	ColOrders        = "orders"
	ColAvgOrderValue = "avg_order_value"
	ColTenureDays    = "tenure_days"
	ColExpedited     = "expedited_shipping"
	// ColChurned is the binary classification target
	ColChurned = "churned"
	// ColLifetimeValue is the regression target
	ColLifetimeValue = "lifetime_value"
)

// CustomerColumns lists the generated columns in row order
var CustomerColumns = []string{
	ColAge, ColCountry, ColSignupChannel, ColDeviceType, ColPaymentMethod,
	ColOrders, ColAvgOrderValue, ColTenureDays, ColExpedited, ColChurned, ColLifetimeValue,
}

// CustomerGeneratorConfig configures the synthetic customer table
type CustomerGeneratorConfig struct {
	CustomerCount int     `json:"customer_count"`
	ChurnRateBase float64 `json:"churn_rate_base"`
	// NullRate is the chance that a feature cell is left empty
	NullRate float64 `json:"null_rate"`
	Seed     int64   `json:"seed"`
}

// DefaultCustomerConfig returns sensible defaults for customer data generation
func DefaultCustomerConfig() CustomerGeneratorConfig {
	return CustomerGeneratorConfig{
		CustomerCount: 200,
		ChurnRateBase: 0.3,
		NullRate:      0.02,
		Seed:          42,
	}
}

// CustomerDataGenerator generates a customer table with a churn label and a
// lifetime value that both depend on the features
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

// Generate returns CustomerCount rows with the columns of CustomerColumns
func (g *CustomerDataGenerator) Generate() dataset.Dataset {
	rows := make(dataset.Dataset, 0, g.config.CustomerCount)
	for i := 0; i < g.config.CustomerCount; i++ {
		rows = append(rows, g.customer())
	}
	return rows
}

func (g *CustomerDataGenerator) customer() dataset.Row {
	age := 18 + g.rng.Intn(55)
	channel := g.randomSignupChannel()
	device := g.randomDeviceType()
	payment := g.randomPaymentMethod()
	tenure := 1 + g.rng.Intn(1095)
	orders := g.poisson(1 + float64(tenure)/180)
	avgValue := math.Round((20+g.rng.ExpFloat64()*45)*100) / 100
	expedited := g.randomShippingSpeed() == "expedited"

	churnRisk := g.config.ChurnRateBase
	if orders < 2 {
		churnRisk += 0.25
	}
	if tenure > 365 {
		churnRisk -= 0.15
	}
	if channel == "paid_search" {
		churnRisk += 0.1
	}
	if device == "tablet" {
		churnRisk += 0.05
	}
	churned := 0.0
	if g.rng.Float64() < clamp(churnRisk, 0.02, 0.95) {
		churned = 1
	}

	ltv := float64(orders)*avgValue*(1+0.1*g.rng.NormFloat64()) - churned*15
	ltv = math.Round(math.Max(ltv, 0)*100) / 100

	return dataset.NewRow(
		dataset.Field{Key: ColAge, Value: g.maybeNull(float64(age))},
		dataset.Field{Key: ColCountry, Value: g.maybeNull(g.randomCountry())},
		dataset.Field{Key: ColSignupChannel, Value: channel},
		dataset.Field{Key: ColDeviceType, Value: g.maybeNull(device)},
		dataset.Field{Key: ColPaymentMethod, Value: payment},
		dataset.Field{Key: ColOrders, Value: float64(orders)},
		dataset.Field{Key: ColAvgOrderValue, Value: g.maybeNull(avgValue)},
		dataset.Field{Key: ColTenureDays, Value: float64(tenure)},
		dataset.Field{Key: ColExpedited, Value: expedited},
		dataset.Field{Key: ColChurned, Value: churned},
		dataset.Field{Key: ColLifetimeValue, Value: ltv},
	)
}

func (g *CustomerDataGenerator) maybeNull(v dataset.Value) dataset.Value {
	if g.config.NullRate > 0 && g.rng.Float64() < g.config.NullRate {
		return nil
	}
	return v
}

// poisson draws by Knuth's method; fine for the small means used here
func (g *CustomerDataGenerator) poisson(mean float64) int {
	limit := math.Exp(-mean)
	k, p := 0, 1.0
	for {
		p *= g.rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Helper methods for random value generation

func (g *CustomerDataGenerator) weighted(options []string, weights []float64) string {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if r <= cumulative {
			return options[i]
		}
	}
	return options[0]
}

func (g *CustomerDataGenerator) randomCountry() string {
	countries := []string{"US", "CA", "GB", "DE", "FR", "AU", "JP"}
	return countries[g.rng.Intn(len(countries))]
}

func (g *CustomerDataGenerator) randomSignupChannel() string {
	return g.weighted(
		[]string{"organic", "paid_search", "social", "email", "direct"},
		[]float64{0.4, 0.3, 0.15, 0.1, 0.05},
	)
}

func (g *CustomerDataGenerator) randomDeviceType() string {
	return g.weighted([]string{"mobile", "desktop", "tablet"}, []float64{0.6, 0.35, 0.05})
}

func (g *CustomerDataGenerator) randomPaymentMethod() string {
	return g.weighted(
		[]string{"credit_card", "debit_card", "paypal", "apple_pay", "bank_transfer"},
		[]float64{0.5, 0.2, 0.15, 0.1, 0.05},
	)
}

func (g *CustomerDataGenerator) randomShippingSpeed() string {
	return g.weighted([]string{"standard", "expedited"}, []float64{0.8, 0.2})
}

// WriteCSV writes data with a header from the first row's keys. Null cells
// are written empty so they read back as missing.
func WriteCSV(w io.Writer, data dataset.Dataset) error {
	columns := data.Columns()
	if len(columns) == 0 {
		return errors.New("no columns to write")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return errors.Wrap(err, "write header")
	}
	record := make([]string, len(columns))
	for i, row := range data {
		for j, col := range columns {
			v, _ := row.Get(col)
			record[j] = csvCell(v)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(v dataset.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return dataset.FormatValue(v, true)
	}
}

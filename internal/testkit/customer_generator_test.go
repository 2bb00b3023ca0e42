package testkit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbench/adapters/excel"
	"modelbench/domain/dataset"
)

func TestCustomerDataGenerator_Basic(t *testing.T) {
	config := DefaultCustomerConfig()
	config.CustomerCount = 50

	data := NewCustomerDataGenerator(config).Generate()
	require.Len(t, data, 50)

	churned := 0
	for i, row := range data {
		assert.Equal(t, CustomerColumns, row.Keys(), "row %d", i)

		label, _ := row.Get(ColChurned)
		switch label {
		case 1.0:
			churned++
		case 0.0:
		default:
			t.Errorf("row %d has churn label %v", i, label)
		}

		ltv, _ := row.Get(ColLifetimeValue)
		v, ok := ltv.(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.Greater(t, churned, 0)
	assert.Less(t, churned, 50)
}

func TestCustomerDataGenerator_Deterministic(t *testing.T) {
	config := DefaultCustomerConfig()
	config.CustomerCount = 20

	first := NewCustomerDataGenerator(config).Generate()
	second := NewCustomerDataGenerator(config).Generate()
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "row %d differs", i)
	}

	config.Seed++
	other := NewCustomerDataGenerator(config).Generate()
	same := true
	for i := range first {
		same = same && first[i].Equal(other[i])
	}
	assert.False(t, same)
}

func TestCustomerDataGenerator_NullRate(t *testing.T) {
	tests := []struct {
		name      string
		nullRate  float64
		wantNulls bool
	}{
		{name: "no nulls", nullRate: 0, wantNulls: false},
		{name: "every nullable cell", nullRate: 1, wantNulls: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := CustomerGeneratorConfig{CustomerCount: 10, ChurnRateBase: 0.3, NullRate: tt.nullRate, Seed: 1}
			for _, row := range NewCustomerDataGenerator(config).Generate() {
				age, _ := row.Get(ColAge)
				assert.Equal(t, tt.wantNulls, age == nil)
				orders, _ := row.Get(ColOrders)
				assert.NotNil(t, orders)
			}
		})
	}
}

func TestWriteCSV_ReadsBack(t *testing.T) {
	data := dataset.Dataset{
		dataset.NewRow(
			dataset.Field{Key: "a", Value: 1.5},
			dataset.Field{Key: "b", Value: nil},
			dataset.Field{Key: "c", Value: true},
			dataset.Field{Key: "d", Value: "x,y"},
		),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, data))
	assert.Equal(t, "a,b,c,d\n1.5,,True,\"x,y\"\n", buf.String())

	back, columns, err := excel.NewDataReader("data.csv", excel.DefaultExcelConfig()).ReadDataset(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, columns)
	assert.True(t, data[0].Equal(back[0]))

	assert.Error(t, WriteCSV(&buf, nil))
}

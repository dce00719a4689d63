package testkit

import (
	"bytes"
	"encoding/csv"
	"math"

	"edascope/domain/dataset"
)

// MustTable builds a table or panics; fixtures only
func MustTable(name string, columns ...dataset.Column) *dataset.Table {
	t, err := dataset.NewTable(name, columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Customers returns the default synthetic customer table
func Customers() *dataset.Table {
	t, err := NewCustomerDataGenerator(DefaultCustomerConfig()).Generate()
	if err != nil {
		panic(err)
	}
	return t
}

// ChurnedTable has columns age:int, income:float, city:category, churned:category
func ChurnedTable() *dataset.Table {
	return MustTable("churn",
		dataset.NewNumericColumn("age", []float64{25, 34, 45, 52, 61, 29}),
		dataset.NewNumericColumn("income", []float64{32000.5, 48000, math.NaN(), 71000.25, 65000, 39000}),
		dataset.NewCategoricalColumn("city", []string{"Austin", "Boston", "Austin", "", "Boston", "Austin"}),
		dataset.NewCategoricalColumn("churned", []string{"yes", "no", "no", "yes", "no", "yes"}),
	)
}

// IdenticalTable has two numeric columns x and y with x = y
func IdenticalTable() *dataset.Table {
	x := []float64{1.5, 2.25, 3.1, 4.7, 5.05, 6.9, 7.3, 8.8}
	return MustTable("identical",
		dataset.NewNumericColumn("x", x),
		dataset.NewNumericColumn("y", x),
	)
}

// RegionPriceTable has region A with 10 rows and region B with a single row
func RegionPriceTable() *dataset.Table {
	region := make([]string, 0, 11)
	price := make([]float64, 0, 11)
	for i := 0; i < 10; i++ {
		region = append(region, "A")
		price = append(price, 100+float64(i)*5)
	}
	region = append(region, "B")
	price = append(price, 80)
	return MustTable("regions",
		dataset.NewCategoricalColumn("region", region),
		dataset.NewNumericColumn("price", price),
	)
}

// SignedTable has a target with one feature near r = -0.95 and one near r = +0.5
func SignedTable() *dataset.Table {
	target := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	negative := []float64{10, 8, 9, 6, 7, 4, 5, 3, 1, 2}
	positive := []float64{3, 1, 4, 2, 5, 9, 2, 6, 5, 5}
	return MustTable("signed",
		dataset.NewNumericColumn("negative", negative),
		dataset.NewNumericColumn("positive", positive),
		dataset.NewNumericColumn("target", target),
	)
}

// CSV renders a table as CSV with a header row; missing cells are empty
func CSV(t *dataset.Table) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(t.ColumnNames())
	_ = w.WriteAll(t.Head(t.RowCount()))
	w.Flush()
	return buf.Bytes()
}

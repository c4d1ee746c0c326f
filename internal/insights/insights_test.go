package insights

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nutricli/internal/config"
	"nutricli/internal/dataset"
	apperrors "nutricli/internal/errors"
)

const sampleCSV = `item,category,calories,total_fat,protein,carbohydrates
Hash Browns,A,100.0,9.0,1.0,15.0
Egg Muffin,A,200.0,12.0,17.0,30.0
Big Burger,B,500.0,28.0,25.0,45.0
`

func frameFrom(t *testing.T, content string) *dataset.Frame {
	t.Helper()
	f, err := dataset.ReadCSVFrom(strings.NewReader(content))
	require.NoError(t, err)
	return f
}

func testGenerator(cfg config.InsightsConfig) *Generator {
	return NewGenerator(slog.New(slog.NewJSONHandler(io.Discard, nil)), cfg)
}

func TestGroupMeans(t *testing.T) {
	f := frameFrom(t, sampleCSV)

	table, err := GroupMeans(f, "category", config.DefaultNutrientColumns)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "A", table.Rows[0].Category)
	assert.Equal(t, "B", table.Rows[1].Category)

	mean, ok := table.Mean("A", "calories")
	require.True(t, ok)
	assert.Equal(t, 150.0, mean)

	mean, ok = table.Mean("B", "calories")
	require.True(t, ok)
	assert.Equal(t, 500.0, mean)

	_, ok = table.Mean("C", "calories")
	assert.False(t, ok)
	_, ok = table.Mean("A", "sodium")
	assert.False(t, ok)

	assert.Equal(t, []string{"category", "calories", "total_fat", "protein", "carbohydrates"}, table.Headers())
	assert.Equal(t, []string{"A", "150.0", "10.5", "9.0", "22.5"}, table.Records()[0])
}

func TestGroupMeans_SkipsMissing(t *testing.T) {
	f := frameFrom(t, "category,calories\nA,100\nA,\nB,\n")

	table, err := GroupMeans(f, "category", []string{"calories"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 100.0, table.Rows[0].Means[0])
	assert.True(t, math.IsNaN(table.Rows[1].Means[0]))
	assert.Equal(t, []string{"B", ""}, table.Records()[1])
}

func TestGroupMeans_Errors(t *testing.T) {
	f := frameFrom(t, "category,calories,name\nA,1,x\n")

	tests := []struct {
		name      string
		key       string
		nutrients []string
	}{
		{"missing key", "group", []string{"calories"}},
		{"missing nutrient", "category", []string{"calories", "protein"}},
		{"text nutrient", "category", []string{"name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GroupMeans(f, tt.key, tt.nutrients)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
		})
	}
}

func TestExtremeRows(t *testing.T) {
	f := frameFrom(t, "item,calories\na,500\nb,100\nc,500\nd,\ne,100\n")

	maxRows, minRows, err := ExtremeRows(f, "calories")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, maxRows.Column("item").Strings())
	assert.Equal(t, []string{"b", "e"}, minRows.Column("item").Strings())

	_, _, err = ExtremeRows(f, "item")
	assert.Error(t, err)
}

func TestExtremeRows_AllMissing(t *testing.T) {
	f := frameFrom(t, "item,calories\na,NA\n")

	maxRows, minRows, err := ExtremeRows(f, "calories")
	require.NoError(t, err)
	assert.Zero(t, maxRows.Rows())
	assert.Zero(t, minRows.Rows())
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clean.csv")
	output := filepath.Join(dir, "nutrition_insights.csv")
	workbook := filepath.Join(dir, "nutrition_insights.xlsx")
	require.NoError(t, os.WriteFile(input, []byte(sampleCSV), 0644))

	result, err := testGenerator(config.InsightsConfig{XLSXPath: workbook}).Generate(context.Background(), input, output)
	require.NoError(t, err)

	assert.Equal(t, []string{"Big Burger"}, result.MaxRows.Column("item").Strings())
	assert.Equal(t, []string{"Hash Browns"}, result.MinRows.Column("item").Strings())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t,
		"category,calories,total_fat,protein,carbohydrates\n"+
			"A,150.0,10.5,9.0,22.5\n"+
			"B,500.0,28.0,25.0,45.0\n",
		string(content))

	wb, err := excelize.OpenFile(workbook)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("insights")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()

	noCategory := filepath.Join(dir, "no_category.csv")
	require.NoError(t, os.WriteFile(noCategory, []byte("calories,total_fat,protein,carbohydrates\n1,2,3,4\n"), 0644))

	noFat := filepath.Join(dir, "no_fat.csv")
	require.NoError(t, os.WriteFile(noFat, []byte("category,calories,protein,carbohydrates\nA,1,3,4\n"), 0644))

	tests := []struct {
		name    string
		input   string
		errType apperrors.ErrorType
	}{
		{"missing input", filepath.Join(dir, "missing.csv"), apperrors.ErrTypeNotFound},
		{"missing category", noCategory, apperrors.ErrTypeSchema},
		{"missing nutrient", noFat, apperrors.ErrTypeSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".csv")
			_, err := testGenerator(config.InsightsConfig{}).Generate(context.Background(), tt.input, output)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType))
			assert.NoFileExists(t, output)
		})
	}
}

package cleaning

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricli/internal/config"
	"nutricli/internal/dataset"
	apperrors "nutricli/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestCleaner() *Cleaner {
	return NewCleaner(testLogger(), config.CleaningConfig{})
}

func frameFrom(t *testing.T, content string) *dataset.Frame {
	t.Helper()
	f, err := dataset.ReadCSVFrom(strings.NewReader(content))
	require.NoError(t, err)
	return f
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Calories", "calories"},
		{"  Total Fat ", "total_fat"},
		{"Menu  Item", "menu__item"},
		{"already_clean", "already_clean"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestCleanFrame_FillAndClip(t *testing.T) {
	f := frameFrom(t, "ID,Calories\n1,100\n2,100\n3,\n4,1000000\n")

	out, summary, err := newTestCleaner().CleanFrame(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "calories"}, out.Names())
	assert.Equal(t, 4, out.Rows())
	assert.Equal(t, 0, summary.DuplicatesRemoved)

	require.Len(t, summary.Imputations, 1)
	assert.Equal(t, Imputation{Column: "calories", Strategy: StrategyMedian, Value: "100.0", Count: 1},
		summary.Imputations[0])

	// fences from [100 100 100 1e6]: Q1=100, Q3=250075, upper=625037.5
	cal := out.Column("calories")
	assert.Equal(t, []float64{100, 100, 100, 625037.5}, cal.Num)
	assert.Equal(t, 0, cal.NullCount())

	var calReport OutlierReport
	for _, r := range summary.Outliers {
		if r.Column == "calories" {
			calReport = r
		}
	}
	assert.Equal(t, 1, calReport.Count)
	assert.Equal(t, 625037.5, calReport.Bounds.Upper)
	assert.Equal(t, 1, summary.OutliersClipped())
}

func TestCleanFrame_FillThenDedup(t *testing.T) {
	// filling makes row 3 equal to the first two, so one row survives
	// before the outlier
	f := frameFrom(t, "calories\n100\n100\nNA\n1000000\n")

	out, summary, err := newTestCleaner().CleanFrame(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 2, summary.DuplicatesRemoved)
	assert.Equal(t, 1, summary.ValuesImputed())

	// fences are wide enough on two points that nothing is clamped
	assert.Equal(t, []float64{100, 1000000}, out.Column("calories").Num)
}

func TestCleanFrame_ModeTieBreak(t *testing.T) {
	f := frameFrom(t, "category,n\nSnack,1\nBreakfast,2\nSnack,3\nBreakfast,4\nNA,5\n")

	out, summary, err := newTestCleaner().CleanFrame(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, "Breakfast", out.Column("category").Text[4])
	require.Len(t, summary.Imputations, 1)
	assert.Equal(t, StrategyMode, summary.Imputations[0].Strategy)
	assert.Equal(t, "Breakfast", summary.Imputations[0].Value)
}

func TestCleanFrame_DatetimeCoercion(t *testing.T) {
	f := frameFrom(t, "date,mixed,item\n2024-01-05,2024-01-05,Burger\n2024-02-10,Fries,Shake\n")

	out, summary, err := newTestCleaner().CleanFrame(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, []string{"date"}, summary.DatetimeColumns)
	assert.Equal(t, dataset.Datetime, out.Column("date").Kind)
	assert.Equal(t, dataset.Text, out.Column("mixed").Kind)
	assert.Equal(t, dataset.Text, out.Column("item").Kind)
	assert.Equal(t, []string{"2024-01-05", "2024-02-10"}, out.Column("date").Strings())
}

func TestCleanFrame_DoesNotMutateInput(t *testing.T) {
	f := frameFrom(t, "A\n1\nNA\n")
	_, _, err := newTestCleaner().CleanFrame(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, f.Names())
	assert.Equal(t, 1, f.Column("A").NullCount())
}

func TestCleanFrame_AllMissingNumericColumnKeepsNulls(t *testing.T) {
	// no value to take a median from, so the column is left as loaded
	f := frameFrom(t, "a,B\n1,\n2,NA\n3,\n")

	out, summary, err := newTestCleaner().CleanFrame(context.Background(), f)
	require.NoError(t, err)

	b := out.Column("b")
	require.NotNil(t, b)
	assert.Equal(t, dataset.Numeric, b.Kind)
	assert.Equal(t, 3, b.NullCount())
	assert.Empty(t, summary.Imputations)
	for _, r := range summary.Outliers {
		assert.NotEqual(t, "b", r.Column)
	}

	assert.Equal(t, 3, out.Rows())
	assert.Equal(t, [][]string{{"1.0", ""}, {"2.0", ""}, {"3.0", ""}}, out.Records())
}

func TestCleanFrame_NameCollision(t *testing.T) {
	f := frameFrom(t, "Fat,fat \n1,2\n")
	_, _, err := newTestCleaner().CleanFrame(context.Background(), f)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestCleanFrame_Properties(t *testing.T) {
	var b strings.Builder
	b.WriteString("Item Name,Category,Calories,Protein\n")
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&b, "item%d,%s,%d,%d\n", i, []string{"A", "B", "C"}[i%3], i*10, i)
	}
	b.WriteString("item21,A,5000,NA\n")
	b.WriteString("item1,B,10,1\n") // duplicate of item1
	b.WriteString("item22,,150,7\n")

	out, summary, err := newTestCleaner().CleanFrame(context.Background(), frameFrom(t, b.String()))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DuplicatesRemoved)
	for _, name := range out.Names() {
		assert.Equal(t, NormalizeName(name), name)
	}

	seen := map[string]bool{}
	for i := 0; i < out.Rows(); i++ {
		key := out.RowKey(i)
		assert.False(t, seen[key], "row %d duplicated", i)
		seen[key] = true
	}

	for _, col := range out.Columns() {
		assert.Zero(t, col.NullCount(), "column %s has missing cells", col.Name)
	}

	for _, report := range summary.Outliers {
		for _, v := range out.Column(report.Column).Num {
			assert.True(t, report.Bounds.Contains(v), "%s value %v outside bounds", report.Column, v)
		}
	}

	// a second pass over the cleaned table changes nothing
	again, second, err := newTestCleaner().CleanFrame(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 0, second.DuplicatesRemoved)
	assert.Equal(t, 0, second.OutliersClipped())
	assert.Equal(t, out.Records(), again.Records())
}

func TestDropDuplicates_NoDuplicatesReturnsSameFrame(t *testing.T) {
	f := frameFrom(t, "a\n1\n2\n")
	out, n := DropDuplicates(f)
	assert.Same(t, f, out)
	assert.Zero(t, n)
}

func TestClean_Files(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw.csv")
	output := filepath.Join(dir, "out", "clean.csv")
	require.NoError(t, os.WriteFile(input, []byte(" Category ,Calories\nA,100\nA,100\nB,\n"), 0644))

	summary, err := newTestCleaner().Clean(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, input, summary.Input)
	assert.Equal(t, 3, summary.RowsIn)
	assert.Equal(t, 2, summary.RowsOut)
	assert.Contains(t, summary.String(), "rows 3 -> 2")

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "category,calories\nA,100.0\nB,100.0\n", string(content))
}

func TestClean_Errors(t *testing.T) {
	dir := t.TempDir()
	ragged := filepath.Join(dir, "ragged.csv")
	require.NoError(t, os.WriteFile(ragged, []byte("a,b\n1\n"), 0644))

	tests := []struct {
		name    string
		input   string
		errType apperrors.ErrorType
	}{
		{"missing file", filepath.Join(dir, "missing.csv"), apperrors.ErrTypeNotFound},
		{"malformed csv", ragged, apperrors.ErrTypeParsing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(dir, tt.name+".csv")
			_, err := newTestCleaner().Clean(context.Background(), tt.input, output)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType))
			assert.NoFileExists(t, output)
		})
	}
}

package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "nutricli/internal/errors"
)

func mustRead(t *testing.T, content string, opts ...ReadOption) *Frame {
	t.Helper()
	f, err := ReadCSVFrom(strings.NewReader(content), opts...)
	require.NoError(t, err)
	return f
}

func TestReadCSVFrom_Typing(t *testing.T) {
	f := mustRead(t, "Item,Calories,Notes,Empty\nBurger,500,NA,\nFries,,crispy,\n")

	require.Equal(t, 2, f.Rows())
	assert.Equal(t, []string{"Item", "Calories", "Notes", "Empty"}, f.Names())

	tests := []struct {
		column string
		kind   Kind
		nulls  int
	}{
		{"Item", Text, 0},
		{"Calories", Numeric, 1},
		{"Notes", Text, 1},
		{"Empty", Numeric, 2},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			c := f.Column(tt.column)
			require.NotNil(t, c)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.nulls, c.NullCount())
		})
	}

	assert.Equal(t, []float64{500}, f.Column("Calories").NumericValues())
}

func TestReadCSVFrom_CustomNullTokens(t *testing.T) {
	f := mustRead(t, "a\n-\n1\n", WithNullTokens([]string{"-"}))
	c := f.Column("a")
	assert.Equal(t, Numeric, c.Kind)
	assert.True(t, c.IsNull(0))

	// NA is an ordinary value once the defaults are replaced
	f = mustRead(t, "a\nNA\n", WithNullTokens([]string{"-"}))
	assert.Equal(t, Text, f.Column("a").Kind)
	assert.Equal(t, 0, f.Column("a").NullCount())
}

func TestReadCSVFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty input", ""},
		{"ragged record", "a,b\n1,2\n3\n"},
		{"bare quote", "a\n\"unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSVFrom(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}

func TestReadCSVFrom_HeaderOnlyAndDuplicates(t *testing.T) {
	f := mustRead(t, "\ufeffa,b,a\n")
	assert.Equal(t, 0, f.Rows())
	assert.Equal(t, []string{"a", "b", "a.1"}, f.Names())
	assert.Equal(t, Text, f.Column("a").Kind)
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestWriteCSVTo_Formatting(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f, err := New(
		NewTextColumn("item", []string{"Burger", ""}, []bool{true, false}),
		NewNumericColumn("calories", []float64{500, 0.25}, nil),
		NewDatetimeColumn("date", []time.Time{day, day.AddDate(0, 0, 1)}, nil),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSVTo(&buf, f))
	assert.Equal(t, "item,calories,date\nBurger,500.0,2024-03-01\n,0.25,2024-03-02\n", buf.String())

	f.Column("date").Time[1] = day.Add(90 * time.Minute)
	buf.Reset()
	require.NoError(t, WriteCSVTo(&buf, f))
	assert.Contains(t, buf.String(), "2024-03-01 00:00:00")
	assert.Contains(t, buf.String(), "2024-03-01 01:30:00")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "clean.csv")
	f := mustRead(t, "name,kcal\n\"a,b\",1.5\nc,2\n")

	require.NoError(t, WriteCSV(path, f))

	back, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, f.Names(), back.Names())
	assert.Equal(t, []string{"a,b", "c"}, back.Column("name").Strings())
	assert.Equal(t, []float64{1.5, 2}, back.Column("kcal").NumericValues())
}

func TestFrameOperations(t *testing.T) {
	f := mustRead(t, " Menu Item ,Total Fat\nA,1\nB,2\nA,1\n")

	require.NoError(t, f.RenameColumns(func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	}))
	assert.Equal(t, []string{"menu_item", "total_fat"}, f.Names())
	assert.True(t, f.HasColumn("total_fat"))
	assert.False(t, f.HasColumn("Total Fat"))

	assert.Equal(t, f.RowKey(0), f.RowKey(2))
	assert.NotEqual(t, f.RowKey(0), f.RowKey(1))

	sub := f.SelectRows([]int{1, 0})
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, []string{"B", "1.0"}, []string{sub.Row(0)[0], sub.Row(1)[1]})

	clone := f.Clone()
	clone.Column("total_fat").Num[0] = 99
	assert.Equal(t, 1.0, f.Column("total_fat").Num[0])

	err := f.RenameColumns(func(string) string { return "same" })
	require.Error(t, err)
	assert.Equal(t, []string{"menu_item", "total_fat"}, f.Names())
}

func TestRowKey_DistinguishesMissing(t *testing.T) {
	f, err := New(NewTextColumn("a", []string{"", ""}, []bool{true, false}))
	require.NoError(t, err)
	assert.NotEqual(t, f.RowKey(0), f.RowKey(1))
}

func TestSetColumnAndSchemaErrors(t *testing.T) {
	f, err := New(NewNumericColumn("x", []float64{1, 2}, nil))
	require.NoError(t, err)

	require.NoError(t, f.SetColumn(NewTextColumn("x", []string{"a", "b"}, nil)))
	assert.Equal(t, Text, f.Column("x").Kind)

	err = f.SetColumn(NewTextColumn("y", []string{"a"}, nil))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))

	_, err = f.NumericColumn("x")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	_, err = f.NumericColumn("missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))

	_, err = New(NewTextColumn("a", nil, nil), NewTextColumn("a", nil, nil))
	assert.Error(t, err)
}

func TestGroupByAndMeanBy(t *testing.T) {
	f := mustRead(t, "category,calories\nB,500\nA,100\nA,200\n,50\nA,NA\n")

	groups, err := f.GroupBy("category")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Key)
	assert.Equal(t, []int{1, 2, 4}, groups[0].Rows)
	assert.Equal(t, "B", groups[1].Key)

	means, ok, err := f.MeanBy(groups, "calories")
	require.NoError(t, err)
	assert.Equal(t, []float64{150, 500}, means)
	assert.Equal(t, []bool{true, true}, ok)

	_, err = f.GroupBy("missing")
	assert.Error(t, err)
	_, _, err = f.MeanBy(groups, "category")
	assert.Error(t, err)
}

func TestGroupBy_NumericKeysSortByValue(t *testing.T) {
	f := mustRead(t, "k\n10\n9\n10\n")
	groups, err := f.GroupBy("k")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "9.0", groups[0].Key)
	assert.Equal(t, "10.0", groups[1].Key)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.xlsx")

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]interface{}{"Category", "Calories", "Note"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]interface{}{"Breakfast", 300, "x"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A4", &[]interface{}{"Lunch", 650}))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Category", "Calories", "Note"}, f.Names())
	assert.Equal(t, 2, f.Rows())
	assert.Equal(t, Numeric, f.Column("Calories").Kind)
	assert.Equal(t, []float64{300, 650}, f.Column("Calories").NumericValues())
	assert.Equal(t, 1, f.Column("Note").NullCount())

	_, err = ReadXLSX(path, WithSheet("Nope"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := ReadXLSX(path)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tordrt/datascripter/internal/resultset"
)

func TestFormatCellValue(t *testing.T) {
	tests := []struct {
		name     string
		dataType string
		cell     resultset.Cell
		want     string
	}{
		{"null varchar", "varchar", resultset.Null(), "NULL"},
		{"null int", "int", resultset.Null(), "NULL"},
		{"null uniqueidentifier", "uniqueidentifier", resultset.Null(), "NULL"},
		{"varchar", "varchar", resultset.Value("abc"), "'abc'"},
		{"varchar with quote", "varchar", resultset.Value("O'Brien"), "'O''Brien'"},
		{"char", "char", resultset.Value("x"), "'x'"},
		{"text", "text", resultset.Value("it's"), "'it''s'"},
		{"xml", "xml", resultset.Value("<a b='1'/>"), "'<a b=''1''/>'"},
		{"nvarchar", "nvarchar", resultset.Value("Zoë"), "N'Zoë'"},
		{"nchar with quote", "nchar", resultset.Value("'"), "N''''"},
		{"ntext", "ntext", resultset.Value("a''b"), "N'a''''b'"},
		{"date", "date", resultset.Value("2024-01-31"), "'2024-01-31'"},
		{"datetime2", "datetime2", resultset.Value("2024-01-31 10:11:12.1234567"), "'2024-01-31 10:11:12.1234567'"},
		{"datetimeoffset", "datetimeoffset", resultset.Value("2024-01-31 10:11:12 +01:00"), "'2024-01-31 10:11:12 +01:00'"},
		{"time not escaped", "time", resultset.Value("10:00'"), "'10:00''"},
		{"decimal comma", "decimal", resultset.Value("12,50"), "12.50"},
		{"decimal period", "decimal", resultset.Value("12.50"), "12.50"},
		{"money", "money", resultset.Value("1,2300"), "1.2300"},
		{"float exponent", "float", resultset.Value("1,5E+10"), "1.5E+10"},
		{"real", "real", resultset.Value("3.25"), "3.25"},
		{"uniqueidentifier", "uniqueidentifier", resultset.Value("6f9619ff-8b86-d011-b42d-00c04fc964ff"), "'{6f9619ff-8b86-d011-b42d-00c04fc964ff}'"},
		{"bit", "bit", resultset.Value("1"), "1"},
		{"int", "int", resultset.Value("42"), "42"},
		{"bigint", "bigint", resultset.Value("-9000000000"), "-9000000000"},
		{"varbinary", "varbinary", resultset.Value("0xDEADBEEF"), "0xDEADBEEF"},
		{"timestamp", "timestamp", resultset.Value("0x00000000000007D1"), "0x00000000000007D1"},
		{"upper case type", "NVARCHAR", resultset.Value("a"), "N'a'"},
		{"unknown type quoted", "sql_variant", resultset.Value("v"), "'v'"},
		{"unknown type not escaped", "hierarchyid", resultset.Value("/1'/"), "'/1'/'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := resultset.Column{Name: "c", DataType: tt.dataType}
			got, err := FormatCellValue(col, tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCellValueErrors(t *testing.T) {
	tests := []struct {
		name     string
		dataType string
		value    string
	}{
		{"guid garbage", "uniqueidentifier", "not-a-guid"},
		{"guid braced", "uniqueidentifier", "{6f9619ff-8b86-d011-b42d-00c04fc964ff}"},
		{"decimal garbage", "decimal", "12x"},
		{"money thousands separator", "money", "1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := resultset.Column{Name: "c", DataType: tt.dataType}
			_, err := FormatCellValue(col, resultset.Value(tt.value))
			assert.Error(t, err)
		})
	}
}

func TestEscapeQuotesDoublesEveryQuote(t *testing.T) {
	for n := 1; n <= 5; n++ {
		in := "a" + strings.Repeat("'", n) + "b"
		want := "a" + strings.Repeat("'", 2*n) + "b"
		assert.Equal(t, want, EscapeQuotes(in), "run of %d quotes", n)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindString, KindOf("varchar"))
	assert.Equal(t, KindUnicode, KindOf("nvarchar"))
	assert.Equal(t, KindTemporal, KindOf("smalldatetime"))
	assert.Equal(t, KindNumeric, KindOf("smallmoney"))
	assert.Equal(t, KindGUID, KindOf("uniqueidentifier"))
	assert.Equal(t, KindVerbatim, KindOf("geometry"))
	assert.Equal(t, KindOther, KindOf("sql_variant"))
	assert.Equal(t, KindOther, KindOf(""))
}

package generator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tordrt/datascripter/internal/resultset"
)

// Kind is the literal-formatting category of a column data type
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindUnicode
	KindTemporal
	KindNumeric
	KindGUID
	KindVerbatim
)

var kindsByType = map[string]Kind{
	"varchar": KindString,
	"char":    KindString,
	"text":    KindString,
	"xml":     KindString,

	"nvarchar": KindUnicode,
	"ntext":    KindUnicode,
	"nchar":    KindUnicode,

	"date":           KindTemporal,
	"datetime":       KindTemporal,
	"datetime2":      KindTemporal,
	"datetimeoffset": KindTemporal,
	"smalldatetime":  KindTemporal,
	"time":           KindTemporal,

	"decimal":    KindNumeric,
	"numeric":    KindNumeric,
	"real":       KindNumeric,
	"float":      KindNumeric,
	"money":      KindNumeric,
	"smallmoney": KindNumeric,

	"uniqueidentifier": KindGUID,

	"bit":       KindVerbatim,
	"int":       KindVerbatim,
	"bigint":    KindVerbatim,
	"smallint":  KindVerbatim,
	"tinyint":   KindVerbatim,
	"geometry":  KindVerbatim,
	"binary":    KindVerbatim,
	"image":     KindVerbatim,
	"timestamp": KindVerbatim,
	"varbinary": KindVerbatim,
}

// exact numerics must survive a decimal parse; real and float may carry
// exponents or special values the server renders itself
var exactNumeric = map[string]bool{
	"decimal":    true,
	"numeric":    true,
	"money":      true,
	"smallmoney": true,
}

// KindOf returns the formatting category for a data type name
func KindOf(dataType string) Kind {
	if k, ok := kindsByType[strings.ToLower(dataType)]; ok {
		return k
	}
	return KindOther
}

// FormatCellValue renders a cell as a T-SQL literal for the given column
func FormatCellValue(col resultset.Column, cell resultset.Cell) (string, error) {
	if cell.IsNull {
		return "NULL", nil
	}

	v := cell.DisplayValue

	switch KindOf(col.DataType) {
	case KindString:
		return "'" + EscapeQuotes(v) + "'", nil
	case KindUnicode:
		return "N'" + EscapeQuotes(v) + "'", nil
	case KindTemporal:
		return "'" + v + "'", nil
	case KindNumeric:
		// some collations use a comma as the decimal separator
		n := strings.ReplaceAll(v, ",", ".")
		if exactNumeric[strings.ToLower(col.DataType)] {
			if _, err := decimal.NewFromString(n); err != nil {
				return "", fmt.Errorf("invalid %s value %q: %w", col.DataType, v, err)
			}
		}
		return n, nil
	case KindGUID:
		if _, err := uuid.Parse(v); err != nil {
			return "", fmt.Errorf("invalid uniqueidentifier value %q: %w", v, err)
		}
		// Parse also accepts braced and urn forms, which would double up here
		if len(v) != 36 {
			return "", fmt.Errorf("invalid uniqueidentifier value %q: expected xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx form", v)
		}
		return "'{" + v + "}'", nil
	case KindVerbatim:
		return v, nil
	default:
		return "'" + v + "'", nil
	}
}

// EscapeQuotes doubles every single quote in s
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteIdent wraps a name in brackets, doubling any closing bracket
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

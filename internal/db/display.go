package db

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/tordrt/datascripter/internal/resultset"
)

// Layouts match what SQL Server accepts back as string literals
const (
	layoutDate           = "2006-01-02"
	layoutTime           = "15:04:05.9999999"
	layoutDateTime       = "2006-01-02 15:04:05.9999999"
	layoutDateTimeOffset = "2006-01-02 15:04:05.9999999 -07:00"
)

var binaryTypes = map[string]bool{
	"binary":    true,
	"varbinary": true,
	"image":     true,
	"timestamp": true,
	"geometry":  true,
}

// toCell converts a scanned driver value into a display cell.
// dataType is the normalized SQL Server type name of the column.
func toCell(v any, dataType string) resultset.Cell {
	if v == nil {
		return resultset.Null()
	}
	return resultset.Value(displayValue(v, dataType))
}

func displayValue(v any, dataType string) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		if dataType == "uniqueidentifier" && len(x) == 16 {
			var u mssql.UniqueIdentifier
			if err := u.Scan(x); err == nil {
				return u.String()
			}
		}
		if binaryTypes[dataType] {
			return "0x" + strings.ToUpper(hex.EncodeToString(x))
		}
		return string(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return formatTime(x, dataType)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return fmt.Sprint(v)
		}
		return displayValue(dv, dataType)
	case map[string]any, []any:
		if b, err := json.Marshal(x); err == nil {
			return string(b)
		}
		return fmt.Sprint(v)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatTime(t time.Time, dataType string) string {
	switch dataType {
	case "date":
		return t.Format(layoutDate)
	case "time":
		return t.Format(layoutTime)
	case "datetimeoffset":
		return t.Format(layoutDateTimeOffset)
	default:
		return t.Format(layoutDateTime)
	}
}

// sqlServerTypes maps engine type names onto the SQL Server vocabulary the
// script generator understands. Names not listed pass through lower-cased.
var sqlServerTypes = map[string]string{
	"int2":        "smallint",
	"int4":        "int",
	"int8":        "bigint",
	"integer":     "int",
	"mediumint":   "int",
	"year":        "smallint",
	"bool":        "bit",
	"boolean":     "bit",
	"float4":      "real",
	"float8":      "float",
	"double":      "float",
	"bpchar":      "nchar",
	"character":   "nchar",
	"name":        "nvarchar",
	"json":        "nvarchar",
	"jsonb":       "nvarchar",
	"citext":      "nvarchar",
	"tinytext":    "nvarchar",
	"mediumtext":  "nvarchar",
	"longtext":    "nvarchar",
	"clob":        "nvarchar",
	"enum":        "nvarchar",
	"set":         "nvarchar",
	"interval":    "nvarchar",
	"inet":        "nvarchar",
	"uuid":        "uniqueidentifier",
	"bytea":       "varbinary",
	"blob":        "varbinary",
	"tinyblob":    "varbinary",
	"mediumblob":  "varbinary",
	"longblob":    "varbinary",
	"timestamptz": "datetimeoffset",
	"timetz":      "time",
}

// normalizeType maps an engine type name onto the SQL Server vocabulary.
// Length/precision suffixes are dropped and dialect overrides win over
// the shared table.
func normalizeType(name string, overrides map[string]string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	if t, ok := overrides[n]; ok {
		return t
	}
	if t, ok := sqlServerTypes[n]; ok {
		return t
	}
	return n
}

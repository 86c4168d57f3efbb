package reader

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// ColumnInfo describes one leaf column of a parquet file.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
	Repeated bool   `json:"repeated"`
}

// DescribeParquet lists the leaf columns a parquet file would import as.
func DescribeParquet(path string) ([]ColumnInfo, error) {
	r, err := NewParquetReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return describeSchema(r.Schema()), nil
}

func describeSchema(schema *parquet.Schema) []ColumnInfo {
	var infos []ColumnInfo
	for _, field := range schema.Fields() {
		infos = appendLeaves(infos, field, "", false)
	}
	return infos
}

// appendLeaves walks groups depth first. Repetition of a parent group is
// inherited by its leaves.
func appendLeaves(infos []ColumnInfo, field parquet.Field, prefix string, parentRepeated bool) []ColumnInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		for _, child := range children {
			infos = appendLeaves(infos, child, name, repeated)
		}
		return infos
	}

	return append(infos, ColumnInfo{
		Name:     name,
		Type:     typeName(field),
		Optional: field.Optional(),
		Repeated: repeated,
	})
}

// typeName prefers the logical type and falls back to the physical kind
func typeName(field parquet.Field) string {
	t := field.Type()
	if t == nil {
		return "GROUP"
	}

	if lt := t.LogicalType(); lt != nil {
		switch s := lt.String(); s {
		case "STRING", "UTF8":
			return "STRING"
		case "DATE", "TIME", "TIMESTAMP", "DECIMAL", "JSON", "UUID", "ENUM":
			return s
		}
	}

	switch t.Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT32"
	case parquet.Double:
		return "FLOAT64"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("UNKNOWN(%v)", t.Kind())
	}
}

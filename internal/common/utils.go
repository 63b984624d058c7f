package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// fieldAliases maps the column labels printed in tables to their JSON names,
// so --fields accepts either spelling.
var fieldAliases = map[string]string{
	"registered":  "registered",
	"abstentions": "abstentions",
	"null":        "null",
	"choice a":    "choice_a",
	"choice b":    "choice_b",
	"code":        "code_reg",
	"region":      "name_reg",
	"name":        "name_reg",
	"ratio":       "ratio",
}

// ParseFields splits a comma separated --fields value into JSON field names.
// An empty string selects every field and returns nil.
func ParseFields(fieldsStr string) []string {
	if strings.TrimSpace(fieldsStr) == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(fieldsStr, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if alias, ok := fieldAliases[f]; ok {
			f = alias
		}
		fields = append(fields, f)
	}
	return fields
}

// FilterResultFields converts result to a map keeping only the requested
// JSON fields. A nil field list keeps everything.
func FilterResultFields(result interface{}, fields []string) map[string]interface{} {
	fullMap := structToMap(result)
	if fields == nil {
		return fullMap
	}

	filtered := make(map[string]interface{}, len(fields))
	for _, key := range fields {
		if value, ok := fullMap[key]; ok {
			filtered[key] = value
		}
	}
	return filtered
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
// Whole numbers come back as int64 so counts keep their integer form in YAML.
func structToMap(obj interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var result map[string]interface{}
	_ = dec.Decode(&result)
	for key, value := range result {
		if n, ok := value.(json.Number); ok {
			result[key] = numberValue(n)
		}
	}
	return result
}

func numberValue(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}

// FormatCount renders a vote count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatRatio renders a ratio as a percentage with two decimals.
func FormatRatio(r float64) string {
	return fmt.Sprintf("%.2f%%", r*100)
}

package run

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/referendum-map/internal/common"
	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/mapreduce"
)

// defaultColumns is the column order of csv output when --fields is empty.
var defaultColumns = []string{
	"code_reg", "name_reg", "registered", "abstentions", "null", "choice_a", "choice_b", "ratio",
}

// BuildRows pairs every aggregated region with its ratio, when it was mapped.
func BuildRows(results []models.RegionResult, mapped []models.MapResult) []RegionRow {
	ratios := make(map[string]float64, len(mapped))
	for _, m := range mapped {
		ratios[m.CodeReg] = m.Ratio
	}

	rows := make([]RegionRow, len(results))
	for i, r := range results {
		rows[i] = RegionRow{RegionResult: r}
		if ratio, ok := ratios[r.CodeReg]; ok {
			rows[i].Ratio = &ratio
		}
	}
	return rows
}

// WriteOutput renders the run in one of table, json, yaml or csv. fields
// restricts the region columns for json, yaml and csv.
func WriteOutput(w io.Writer, format string, out *FinalOutput, rows []RegionRow, fields []string) error {
	switch strings.ToLower(format) {
	case "", "table":
		writeTable(w, out, rows)
		return nil
	case "csv":
		return writeCSV(w, rows, fields)
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown format: %s (use: table, json, yaml, or csv)", format)
	}

	if fields != nil {
		filtered := make([]map[string]interface{}, len(rows))
		for i, r := range rows {
			filtered[i] = common.FilterResultFields(r, fields)
		}
		out.Results = filtered
	} else {
		out.Results = rows
	}

	var data []byte
	var err error
	if strings.ToLower(format) == "yaml" {
		data, err = yaml.Marshal(out)
	} else {
		data, err = json.MarshalIndent(out, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeTable(w io.Writer, out *FinalOutput, rows []RegionRow) {
	fmt.Fprintf(w, "%-5s %-28s %12s %12s %10s %12s %12s %8s\n",
		"Code", "Region", "Registered", "Abstentions", "Null", "Choice A", "Choice B", "Ratio")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	results := make([]models.RegionResult, len(rows))
	for i, r := range rows {
		results[i] = r.RegionResult
		ratio := "-"
		if r.Ratio != nil {
			ratio = common.FormatRatio(*r.Ratio)
		}
		fmt.Fprintf(w, "%-5s %-28s %12s %12s %10s %12s %12s %8s\n",
			r.CodeReg,
			r.NameReg,
			common.FormatCount(r.Registered),
			common.FormatCount(r.Abstentions),
			common.FormatCount(r.Null),
			common.FormatCount(r.ChoiceA),
			common.FormatCount(r.ChoiceB),
			ratio,
		)
	}

	total := mapreduce.Totals(results)
	fmt.Fprintln(w, strings.Repeat("-", 100))
	fmt.Fprintf(w, "%-5s %-28s %12s %12s %10s %12s %12s\n",
		"", total.NameReg,
		common.FormatCount(total.Registered),
		common.FormatCount(total.Abstentions),
		common.FormatCount(total.Null),
		common.FormatCount(total.ChoiceA),
		common.FormatCount(total.ChoiceB),
	)

	if len(rows) > 0 {
		fmt.Fprintln(w, "\nTop regions:")
		mapreduce.PrintTopRegions(w, results, 5)
	}

	fmt.Fprintf(w, "\nRows: %d read, %d joined, %d excluded",
		out.Stats.ReferendumRows, out.Stats.JoinedRows, out.Stats.ExcludedRows)
	if out.Stats.DroppedRows > 0 {
		fmt.Fprintf(w, ", %d dropped as incomplete", out.Stats.DroppedRows)
	}
	fmt.Fprintln(w)
	for _, ex := range out.Excluded {
		fmt.Fprintf(w, "  excluded %-4s %-30s %d rows\n", ex.Code, ex.Name, ex.Rows)
	}
	if out.RunID > 0 {
		fmt.Fprintf(w, "\nRecorded as run %d\n", out.RunID)
	}
	for _, f := range out.Files {
		fmt.Fprintf(w, "Wrote %s\n", f)
	}
}

func writeCSV(w io.Writer, rows []RegionRow, fields []string) error {
	columns := fields
	if columns == nil {
		columns = defaultColumns
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		m := common.FilterResultFields(r, columns)
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = csvValue(m[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

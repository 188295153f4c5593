package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/TobiSchelling/cakes/pkg/metric"
)

// LoadVectorsCSV reads a headerless CSV file of numeric rows into a
// VectorDataset under Euclidean distance. Every row must have the same
// number of fields.
func LoadVectorsCSV(path string, withCache bool) (*VectorDataset[float64], error) {
	return LoadVectorsCSVWithMetric(path, "euclidean", false, withCache)
}

// LoadVectorsCSVWithMetric is LoadVectorsCSV generalized to any registered
// metric.VectorMetric name, for config-driven dataset construction in the
// CLI.
func LoadVectorsCSVWithMetric(path, metricName string, expensive, withCache bool) (*VectorDataset[float64], error) {
	rows, err := readVectorsCSV(path)
	if err != nil {
		return nil, err
	}

	m, err := metric.VectorMetric(metricName, expensive)
	if err != nil {
		return nil, err
	}
	return NewVectorDataset(rows, m, withCache), nil
}

func readVectorsCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]float64
	var width int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			width = len(record)
		} else if len(record) != width {
			return nil, &csv.ParseError{Line: len(rows) + 1, Err: csv.ErrFieldCount}
		}

		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadLinesAsStrings reads one instance per newline-delimited line into a
// StringDataset under Levenshtein distance. Blank lines are skipped.
func LoadLinesAsStrings(path string, withCache bool) (*StringDataset[float64], error) {
	return LoadLinesAsStringsWithMetric(path, "levenshtein", true, withCache)
}

// LoadLinesAsStringsWithMetric is LoadLinesAsStrings generalized to any
// registered metric.StringMetric name.
func LoadLinesAsStringsWithMetric(path, metricName string, expensive, withCache bool) (*StringDataset[float64], error) {
	vals, err := readLines(path)
	if err != nil {
		return nil, err
	}

	m, err := metric.StringMetric(metricName, expensive)
	if err != nil {
		return nil, err
	}
	return NewStringDataset(vals, m, withCache), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var vals []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		vals = append(vals, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vals, nil
}

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabml/tabprep/design"
)

var encodeOutPath string

// encodeCmd dumps the design matrix as CSV for inspection.
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build a design matrix and dump it as CSV",
	Long: `Builds the design matrix from the formula and encoding flags and
writes it as CSV, response column last. Missing cells appear as NA so
the output loads back cleanly.

Example:
  tabprep encode --data cars.csv --drop model --categorical gear \
    --formula "mpg ~ ." --encoding onehot --out matrix.csv`,
	RunE: runEncode,
}

func runEncode(cmd *cobra.Command, args []string) error {
	m, err := buildDesign()
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if encodeOutPath != "" {
		file, err := os.Create(encodeOutPath)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	if err := writeMatrixCSV(out, m); err != nil {
		return err
	}
	if encodeOutPath != "" {
		fmt.Printf("%s written to %s\n", m, encodeOutPath)
	}
	return nil
}

// writeMatrixCSV renders the matrix with its column names as header
// and the response as the final column.
func writeMatrixCSV(out io.Writer, m *design.Matrix) error {
	w := csv.NewWriter(out)

	rows, cols := m.Dims()
	response := responseName(m)
	header := append(append(make([]string, 0, cols+1), m.ColumnNames...), response)
	if err := w.Write(header); err != nil {
		return err
	}

	record := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = formatCell(m.X.At(i, j))
		}
		record[cols] = formatCell(m.Y.AtVec(i))
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// responseName extracts the left-hand side of the build formula.
func responseName(m *design.Matrix) string {
	if lhs, _, found := strings.Cut(m.Formula, "~"); found {
		if name := strings.TrimSpace(lhs); name != "" {
			return name
		}
	}
	return "response"
}

func init() {
	addDataFlags(encodeCmd)
	encodeCmd.Flags().StringVar(&encodeOutPath, "out", "", "output path (default: stdout)")
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dataview/adapters/excel"
	"dataview/domain/export"
	"dataview/domain/sorting"
	"dataview/domain/table"
	"dataview/internal"
	"dataview/internal/config"
	"dataview/internal/profiling"
	"dataview/internal/sample"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dataview-cli",
		Short:         "Inspect, profile and export tabular files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to the YAML config file")
	rootCmd.PersistentFlags().String("sheet", "", "worksheet to read from an xlsx file")
	rootCmd.PersistentFlags().Int("max-value-length", 0, "truncate formatted values to this many characters")
	rootCmd.PersistentFlags().String("thousands-sep", "", "thousands separator for numbers")

	rootCmd.AddCommand(
		newSchemaCmd(),
		newProfileCmd(),
		newExportCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

func newSchemaCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "schema [file]",
		Short: "Print the inferred column schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, frame, err := loadFrame(cmd, args[0])
			if err != nil {
				return err
			}

			schema := table.Inspect(frame)
			if search != "" {
				schema = schema.Search(search)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"shape":   frame.Shape(),
				"columns": schema,
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only list columns whose name contains this text")

	return cmd
}

func newProfileCmd() *cobra.Command {
	var column string
	var method string
	var bins int
	var limit int

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Compute column statistics",
		Long: `Compute the null count, summary statistics, histogram and frequency table
of one column. Profiles that do not apply to the column type are reported
under "errors".

Example: dataview-cli profile mtcars.csv --column mpg --method sturges --bins 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, frame, err := loadFrame(cmd, args[0])
			if err != nil {
				return err
			}
			index, err := columnIndex(frame, column)
			if err != nil {
				return err
			}

			req := profiling.Request{
				ColumnIndex: index,
				Profiles: []profiling.Spec{
					{Kind: profiling.KindNullCount},
					{Kind: profiling.KindSummaryStats},
					{Kind: profiling.KindHistogram, Histogram: &profiling.HistogramParams{
						Method:  profiling.HistogramMethod(method),
						NumBins: bins,
					}},
					{Kind: profiling.KindFrequencyTable, FrequencyTable: &profiling.FrequencyTableParams{Limit: limit}},
				},
			}
			result := profiling.NewProfiler(cfg.Format).Profile(frame, allRows(frame), req)
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "column name or zero-based index")
	cmd.Flags().StringVar(&method, "method", string(profiling.MethodSturges), "histogram binning method")
	cmd.Flags().IntVar(&bins, "bins", 20, "histogram bin count or upper bound")
	cmd.Flags().IntVar(&limit, "limit", 10, "frequency table size")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}

func newExportCmd() *cobra.Command {
	var formatName string
	var sortBy []string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Render a file as csv, tsv, html or markdown",
		Long: `Render every row of a file with display formatting applied.

Example: dataview-cli export mtcars.csv --format markdown --sort cyl --sort mpg:desc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, frame, err := loadFrame(cmd, args[0])
			if err != nil {
				return err
			}

			keys := make([]sorting.SortKey, 0, len(sortBy))
			for _, s := range sortBy {
				key, err := parseSortKey(frame, s)
				if err != nil {
					return err
				}
				keys = append(keys, key)
			}

			rows := sorting.Order(frame, allRows(frame), keys)
			sel := export.Selection{
				Kind:             export.SelectColumnRange,
				FirstColumnIndex: 0,
				LastColumnIndex:  frame.NumColumns() - 1,
			}
			result, err := export.NewExporter(cfg.Format).Export(frame, rows, sel, export.Format(formatName))
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), result.Data)
			return err
		},
	}

	cmd.Flags().StringVar(&formatName, "format", string(export.FormatCSV), "output format (csv, tsv, html, markdown)")
	cmd.Flags().StringSliceVar(&sortBy, "sort", nil, "sort by column, append :desc for descending (repeatable)")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	cfg := sample.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Write a synthetic flights table to a csv, tsv or xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sample.Generate(cfg)
			if err != nil {
				return err
			}
			if err := sample.Write(args[0], ds); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(ds.Rows), args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "number of rows")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	cmd.Flags().Float64Var(&cfg.MissingRate, "missing-rate", cfg.MissingRate, "share of missing departure delays")

	return cmd
}

// loadFrame reads the configuration and a snapshot of path.
func loadFrame(cmd *cobra.Command, path string) (*config.Config, *table.Frame, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	sheet, _ := cmd.Flags().GetString("sheet")

	source := excel.NewSource(path, path, excel.Config{Sheet: sheet, Coercion: cfg.Coercion}, internal.NewDefaultLogger())
	frame, err := source.Snapshot(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return cfg, frame, nil
}

// columnIndex accepts a column name or a zero-based index.
func columnIndex(frame *table.Frame, ref string) (int, error) {
	if _, i, ok := frame.ColumnByName(ref); ok {
		return i, nil
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < frame.NumColumns() {
		return i, nil
	}
	return 0, fmt.Errorf("no column %q", ref)
}

func parseSortKey(frame *table.Frame, s string) (sorting.SortKey, error) {
	name, dir, _ := strings.Cut(s, ":")
	index, err := columnIndex(frame, name)
	if err != nil {
		return sorting.SortKey{}, err
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		return sorting.SortKey{ColumnIndex: index, Ascending: true}, nil
	case "desc":
		return sorting.SortKey{ColumnIndex: index}, nil
	}
	return sorting.SortKey{}, fmt.Errorf("invalid sort direction %q", dir)
}

func allRows(frame *table.Frame) []int {
	rows := make([]int, frame.NumRows())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

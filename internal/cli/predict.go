package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/spf13/cobra"
)

// PredictCmd predicts a single customer given on the command line or in
// a JSON file.
func PredictCmd(a *app) *cobra.Command {
	var (
		fields []string
		input  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict churn for one customer",
		Example: `  churnguard predict --field gender=Male --field Contract=Month-to-month \
      --field tenure=12 --field MonthlyCharges=70.0
  echo '{"gender":"Female","tenure":3}' | churnguard predict --input -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, arts, err := a.loadService()
			if err != nil {
				return err
			}
			rec, err := readRecord(cmd.InOrStdin(), input, fields, newCellParser(arts.Encoders))
			if err != nil {
				return err
			}
			res, err := svc.Predict(cmd.Context(), rec)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return writeResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "column=value (repeatable, order is kept)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON object file, or - for stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("field", "input")
	cmd.MarkFlagsOneRequired("field", "input")
	return cmd
}

// readRecord builds a record from --input or from --field pairs.
func readRecord(stdin io.Reader, input string, fields []string, cells cellParser) (record.Record, error) {
	if input != "" {
		r := stdin
		if input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return record.Record{}, errors.Wrap(err, "failed to open input")
			}
			defer f.Close()
			r = f
		}
		var rec record.Record
		if err := json.NewDecoder(r).Decode(&rec); err != nil {
			return record.Record{}, errors.Wrap(err, "failed to decode input record")
		}
		return rec, nil
	}

	parsed := make([]record.Field, 0, len(fields))
	for _, kv := range fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return record.Record{}, errors.NewValidationError("field", "expected column=value", kv)
		}
		name = strings.TrimSpace(name)
		parsed = append(parsed, record.Field{Name: name, Value: cells.value(name, value)})
	}
	return record.New(parsed...)
}

func writeResult(w io.Writer, res *prediction.Result) error {
	for _, warn := range res.Substitutions.Warnings() {
		if _, err := fmt.Fprintf(w, "Warning: %s\n", warn.Error()); err != nil {
			return err
		}
	}

	verdict := "The customer is likely to stay."
	if res.Label == prediction.LabelChurn {
		verdict = "The customer is likely to churn."
	}
	line := fmt.Sprintf("%s %s", res.Label, verdict)
	if res.Probability != nil {
		line += fmt.Sprintf(" (churn probability %.2f)", *res.Probability)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

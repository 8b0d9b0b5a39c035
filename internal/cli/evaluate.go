package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/YuminosukeSato/churnguard/metrics"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/YuminosukeSato/churnguard/pkg/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// Report summarises an evaluation run. AUC and LogLoss are nil when the
// classifier does not expose probabilities.
type Report struct {
	Samples             int      `json:"samples"`
	Accuracy            float64  `json:"accuracy"`
	ClassificationError float64  `json:"classification_error"`
	AUC                 *float64 `json:"auc,omitempty"`
	LogLoss             *float64 `json:"log_loss,omitempty"`
	Substitutions       int      `json:"substitutions"`

	ROC []metrics.ROCPoint `json:"-"`
}

type dataset struct {
	records []record.Record
	targets []float64
}

// EvaluateCmd scores the loaded classifier against a labelled CSV file.
func EvaluateCmd(a *app) *cobra.Command {
	var (
		data   string
		target string
		drop   []string
		asJSON bool
		roc    string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the model against a labelled CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(data)
			if err != nil {
				return errors.Wrap(err, "failed to open data")
			}
			defer f.Close()

			svc, arts, err := a.loadService()
			if err != nil {
				return err
			}
			ds, err := readDataset(f, target, drop, newCellParser(arts.Encoders))
			if err != nil {
				return err
			}
			rep, err := evaluate(cmd.Context(), svc, ds)
			if err != nil {
				return err
			}
			if roc != "" {
				if rep.ROC == nil {
					return errors.Newf("cannot write %s: the ROC curve needs probabilities and both classes in the data", roc)
				}
				if err := saveROCPlot(roc, rep.ROC, *rep.AUC); err != nil {
					return err
				}
			}
			fields := []any{
				log.PhaseKey, log.PhaseEvaluation,
				log.PathKey, data,
				log.SamplesKey, rep.Samples,
				log.AccuracyKey, rep.Accuracy,
				log.SubstitutionsKey, rep.Substitutions,
			}
			if rep.AUC != nil {
				fields = append(fields, log.AUCKey, *rep.AUC, log.LossKey, *rep.LogLoss)
			}
			a.logger.Info("Evaluation finished", fields...)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			return writeReport(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "labelled CSV file with a header row")
	cmd.Flags().StringVar(&target, "target", "Churn", "target column")
	cmd.Flags().StringSliceVar(&drop, "drop", []string{"customerID"}, "columns to ignore")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&roc, "roc-plot", "", "write the ROC curve to this image file")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// readDataset parses a CSV with a header row. Categorical cells are kept
// verbatim; the rest go through record.Parse, so "12" is an int.
func readDataset(r io.Reader, target string, drop []string, cells cellParser) (*dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	targetIdx := -1
	skip := make(map[int]bool, len(drop)+1)
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if name == target {
			targetIdx = i
			skip[i] = true
		}
		for _, d := range drop {
			if name == d {
				skip[i] = true
			}
		}
	}
	if targetIdx < 0 {
		return nil, errors.NewValidationError("target", "column not found in CSV header", target)
	}

	ds := &dataset{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read CSV line %d", line)
		}
		fields := make([]record.Field, 0, len(row))
		for i, cell := range row {
			if skip[i] {
				continue
			}
			fields = append(fields, record.Field{Name: header[i], Value: cells.value(header[i], strings.TrimSpace(cell))})
		}
		rec, err := record.New(fields...)
		if err != nil {
			return nil, errors.Wrapf(err, "CSV line %d", line)
		}
		ds.records = append(ds.records, rec)
		ds.targets = append(ds.targets, positive(row[targetIdx]))
	}
	if len(ds.records) == 0 {
		return nil, errors.NewModelError("readDataset", "no rows", errors.ErrEmptyData)
	}
	return ds, nil
}

func positive(s string) float64 {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true":
		return 1
	default:
		return 0
	}
}

func evaluate(ctx context.Context, svc *prediction.Service, ds *dataset) (*Report, error) {
	n := len(ds.records)
	preds := make([]float64, n)
	probs := make([]float64, n)
	haveProba := true
	rep := &Report{Samples: n}

	for i, rec := range ds.records {
		res, err := svc.Predict(ctx, rec)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		if res.Label == prediction.LabelChurn {
			preds[i] = 1
		}
		if res.Probability == nil {
			haveProba = false
		} else {
			probs[i] = *res.Probability
		}
		rep.Substitutions += len(res.Substitutions)
	}

	yTrue := mat.NewVecDense(n, ds.targets)
	yPred := mat.NewVecDense(n, preds)
	var err error
	if rep.Accuracy, err = metrics.Accuracy(yTrue, yPred); err != nil {
		return nil, err
	}
	if rep.ClassificationError, err = metrics.ClassificationError(yTrue, yPred); err != nil {
		return nil, err
	}
	if !haveProba {
		return rep, nil
	}

	yProb := mat.NewVecDense(n, probs)
	auc, err := metrics.AUC(yTrue, yProb)
	if err != nil {
		return nil, err
	}
	loss, err := metrics.BinaryLogLoss(yTrue, yProb)
	if err != nil {
		return nil, err
	}
	rep.AUC, rep.LogLoss = &auc, &loss

	// undefined with a single class; the plot is then unavailable
	if rep.ROC, err = metrics.ROCCurve(yTrue, yProb); err != nil {
		rep.ROC = nil
	}
	return rep, nil
}

func writeReport(w io.Writer, rep *Report) error {
	opt := func(p *float64) string {
		if p == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.4f", *p)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "samples\t%d\n", rep.Samples)
	fmt.Fprintf(tw, "accuracy\t%.4f\n", rep.Accuracy)
	fmt.Fprintf(tw, "classification error\t%.4f\n", rep.ClassificationError)
	fmt.Fprintf(tw, "roc auc\t%s\n", opt(rep.AUC))
	fmt.Fprintf(tw, "log loss\t%s\n", opt(rep.LogLoss))
	fmt.Fprintf(tw, "substitutions\t%d\n", rep.Substitutions)
	return tw.Flush()
}

package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: mat.NewVecDense(5, []float64{1, 2, 3, 4, 5}),
			yPred: mat.NewVecDense(5, []float64{1, 2, 3, 4, 5}),
			want:  0,
		},
		{
			name:  "uniform half point errors",
			yTrue: mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			yPred: mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:  0.25,
		},
		{
			name:  "mixed errors",
			yTrue: mat.NewVecDense(3, []float64{10, 20, 30}),
			yPred: mat.NewVecDense(3, []float64{12, 18, 33}),
			want:  17.0 / 3.0,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1, 2, 3}),
			yPred:   mat.NewVecDense(2, []float64{1, 2}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MSE() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("MSE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5})

	got, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}
	if math.Abs(got-0.5) > 1e-10 {
		t.Errorf("RMSE() = %v, want 0.5", got)
	}

	if _, err := RMSE(&mat.VecDense{}, &mat.VecDense{}); err == nil {
		t.Error("RMSE() on empty vectors: expected error")
	}
}

func TestMAE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: mat.NewVecDense(3, []float64{1, 2, 3}),
			yPred: mat.NewVecDense(3, []float64{1, 2, 3}),
			want:  0,
		},
		{
			name:  "symmetric errors",
			yTrue: mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			yPred: mat.NewVecDense(4, []float64{2, 1, 4, 3}),
			want:  1,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(2, []float64{1, 2}),
			yPred:   mat.NewVecDense(3, []float64{1, 2, 3}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MAE(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MAE() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("MAE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{3, -0.5, 2, 7, 4.2})
	yPred := mat.NewVecDense(5, []float64{2.5, 0.0, 2, 8, 4.0})

	got, err := R2Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2Score() error = %v", err)
	}
	if got <= 0.9 || got > 1.0 {
		t.Errorf("R2Score() = %v, want value in (0.9, 1.0]", got)
	}

	perfect, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2Score() error = %v", err)
	}
	if math.Abs(perfect-1.0) > 1e-10 {
		t.Errorf("R2Score() on identical vectors = %v, want 1.0", perfect)
	}
}

func TestR2ScoreZeroVariance(t *testing.T) {
	var warned []error
	tabErrors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer tabErrors.SetWarningHandler(nil)

	yTrue := mat.NewVecDense(3, []float64{5, 5, 5})
	yPred := mat.NewVecDense(3, []float64{4, 5, 6})

	got, err := R2Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2Score() error = %v", err)
	}
	if got != 0 {
		t.Errorf("R2Score() = %v, want 0 for zero-variance y_true", got)
	}

	if len(warned) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warned))
	}
	var undefined *tabErrors.UndefinedMetricWarning
	if !tabErrors.As(warned[0], &undefined) {
		t.Fatalf("expected UndefinedMetricWarning, got %T", warned[0])
	}
	if undefined.Metric != "r2" {
		t.Errorf("warning metric = %q, want r2", undefined.Metric)
	}
}

func TestMAPE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{100, 200, 400})
	yPred := mat.NewVecDense(3, []float64{110, 180, 440})

	got, err := MAPE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAPE() error = %v", err)
	}
	if math.Abs(got-10.0) > 1e-10 {
		t.Errorf("MAPE() = %v, want 10.0", got)
	}
}

func TestMAPESkipsZeroRows(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{0, 100, 200})
	yPred := mat.NewVecDense(3, []float64{5, 110, 220})

	got, err := MAPE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAPE() error = %v", err)
	}
	if math.Abs(got-10.0) > 1e-10 {
		t.Errorf("MAPE() = %v, want 10.0 over the nonzero rows", got)
	}
}

func TestMAPEAllZeros(t *testing.T) {
	var warned []error
	tabErrors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer tabErrors.SetWarningHandler(nil)

	yTrue := mat.NewVecDense(2, []float64{0, 0})
	yPred := mat.NewVecDense(2, []float64{1, 2})

	got, err := MAPE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAPE() error = %v", err)
	}
	if got != 0 {
		t.Errorf("MAPE() = %v, want 0", got)
	}
	if len(warned) != 1 {
		t.Errorf("expected 1 warning, got %d", len(warned))
	}
}

func TestExplainedVarianceScore(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{3, -0.5, 2, 7})
	yPred := mat.NewVecDense(4, []float64{2.5, 0.0, 2, 8})

	got, err := ExplainedVarianceScore(yTrue, yPred)
	if err != nil {
		t.Fatalf("ExplainedVarianceScore() error = %v", err)
	}
	if got <= 0.9 || got > 1.0 {
		t.Errorf("ExplainedVarianceScore() = %v, want value in (0.9, 1.0]", got)
	}

	// a constant offset is fully explained variance
	offset, err := ExplainedVarianceScore(
		mat.NewVecDense(3, []float64{1, 2, 3}),
		mat.NewVecDense(3, []float64{2, 3, 4}),
	)
	if err != nil {
		t.Fatalf("ExplainedVarianceScore() error = %v", err)
	}
	if math.Abs(offset-1.0) > 1e-10 {
		t.Errorf("ExplainedVarianceScore() with constant offset = %v, want 1.0", offset)
	}
}

func TestMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{1, 2, 3})
	yPred := mat.NewDense(3, 1, []float64{2, 3, 4})

	got, err := MSEMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSEMatrix() error = %v", err)
	}
	if math.Abs(got-1.0) > 1e-10 {
		t.Errorf("MSEMatrix() = %v, want 1.0", got)
	}

	wide := mat.NewDense(3, 2, nil)
	if _, err := MSEMatrix(wide, wide); err == nil {
		t.Error("MSEMatrix() on a two-column matrix: expected error")
	}
}

func TestR2ScoreMatrix(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	got, err := R2ScoreMatrix(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2ScoreMatrix() error = %v", err)
	}
	if math.Abs(got-1.0) > 1e-10 {
		t.Errorf("R2ScoreMatrix() = %v, want 1.0", got)
	}
}

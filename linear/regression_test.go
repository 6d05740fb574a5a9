package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	statgoErrors "github.com/YuminosukeSato/statgo/pkg/errors"
)

func TestLinearRegression_Basic(t *testing.T) {
	// Test basic linear regression y = 2x + 1
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewLinearRegression()

	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	// Check coefficient
	weights := lr.Weights()
	if len(weights) != 1 {
		t.Fatalf("Expected 1 weight, got %d", len(weights))
	}
	if math.Abs(weights[0]-2.0) > 1e-10 {
		t.Errorf("Expected coefficient ~2.0, got %f", weights[0])
	}

	// Check intercept
	if math.Abs(lr.Intercept()-1.0) > 1e-10 {
		t.Errorf("Expected intercept ~1.0, got %f", lr.Intercept())
	}

	// Test prediction
	XTest := mat.NewDense(2, 1, []float64{5, 6})
	pred, err := lr.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	expected := []float64{11, 13}
	for i := 0; i < 2; i++ {
		if math.Abs(pred.At(i, 0)-expected[i]) > 1e-10 {
			t.Errorf("Expected prediction %f, got %f", expected[i], pred.At(i, 0))
		}
	}
}

func TestLinearRegression_NoIntercept(t *testing.T) {
	// Without internal intercept handling, the caller prepends a column
	// of ones and the intercept coefficient comes out first.
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		1, 2,
		1, 3,
		1, 4,
	})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewLinearRegression(WithFitIntercept(false))

	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	weights := lr.Weights()
	if math.Abs(weights[0]-1.0) > 1e-10 {
		t.Errorf("Expected intercept coefficient ~1.0, got %f", weights[0])
	}
	if math.Abs(weights[1]-2.0) > 1e-10 {
		t.Errorf("Expected slope coefficient ~2.0, got %f", weights[1])
	}
	if lr.Intercept() != 0 {
		t.Errorf("Expected zero stored intercept, got %f", lr.Intercept())
	}
}

func TestLinearRegression_MultipleFeatures(t *testing.T) {
	// Test with multiple features: y = 2*x1 + 3*x2 + 1 (noiseless)
	X := mat.NewDense(5, 2, []float64{
		1, 1,
		2, 1,
		3, 2,
		4, 2,
		5, 3,
	})
	y := mat.NewDense(5, 1, nil)
	for i := 0; i < 5; i++ {
		y.Set(i, 0, 2*X.At(i, 0)+3*X.At(i, 1)+1)
	}

	lr := NewLinearRegression()

	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	weights := lr.Weights()
	if math.Abs(weights[0]-2.0) > 1e-8 {
		t.Errorf("Expected first coefficient ~2.0, got %f", weights[0])
	}
	if math.Abs(weights[1]-3.0) > 1e-8 {
		t.Errorf("Expected second coefficient ~3.0, got %f", weights[1])
	}
	if math.Abs(lr.Intercept()-1.0) > 1e-8 {
		t.Errorf("Expected intercept ~1.0, got %f", lr.Intercept())
	}
}

func TestLinearRegression_SingularMatrix(t *testing.T) {
	// Duplicated columns make X^T*X singular
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	lr := NewLinearRegression()
	err := lr.Fit(X, y)
	if err == nil {
		t.Fatal("Expected error for singular design matrix")
	}
	if !statgoErrors.Is(err, statgoErrors.ErrSingularMatrix) {
		t.Errorf("Expected ErrSingularMatrix, got %v", err)
	}
	if lr.IsFitted() {
		t.Error("Model must not be marked fitted after a failed Fit")
	}
}

func TestLinearRegression_InputValidation(t *testing.T) {
	lr := NewLinearRegression()

	tests := []struct {
		name string
		X    *mat.Dense
		y    *mat.Dense
	}{
		{
			name: "row count mismatch",
			X:    mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:    mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
		},
		{
			name: "y not a column vector",
			X:    mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:    mat.NewDense(3, 2, []float64{1, 1, 2, 2, 3, 3}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := lr.Fit(tt.X, tt.y); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLinearRegression_PredictNotFitted(t *testing.T) {
	lr := NewLinearRegression()
	X := mat.NewDense(2, 1, []float64{1, 2})

	if _, err := lr.Predict(X); err == nil {
		t.Error("Expected NotFittedError from Predict before Fit")
	}
	if _, err := lr.Score(X, X); err == nil {
		t.Error("Expected NotFittedError from Score before Fit")
	}
}

func TestLinearRegression_PredictDimensionMismatch(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 1, 2, 1, 3, 2, 4, 2})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	XBad := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if _, err := lr.Predict(XBad); err == nil {
		t.Error("Expected DimensionError for mismatched feature count")
	}
}

func TestLinearRegression_Score(t *testing.T) {
	// Noiseless data must give R² = 1
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	if math.Abs(score-1.0) > 1e-10 {
		t.Errorf("Expected R² ~1.0 on noiseless data, got %f", score)
	}
}

func TestLinearRegression_CopyXLeavesInputIntact(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	X := mat.NewDense(4, 1, data)
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewLinearRegression(WithCopyX(true))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	want := []float64{1, 2, 3, 4}
	for i, v := range want {
		if X.At(i, 0) != v {
			t.Errorf("Input matrix modified at row %d: want %f, got %f", i, v, X.At(i, 0))
		}
	}
}

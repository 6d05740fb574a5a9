package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	statgoErrors "github.com/YuminosukeSato/statgo/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		3.0, 30.0,
		4.0, 40.0,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	// Each column of the transformed training data must have mean ~0
	// and population standard deviation ~1.
	r, c := scaled.Dims()
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += scaled.At(i, j)
		}
		mean := sum / float64(r)
		if math.Abs(mean) > 1e-10 {
			t.Errorf("Column %d: expected mean ~0, got %f", j, mean)
		}

		var sumSquares float64
		for i := 0; i < r; i++ {
			diff := scaled.At(i, j) - mean
			sumSquares += diff * diff
		}
		std := math.Sqrt(sumSquares / float64(r))
		if math.Abs(std-1.0) > 1e-10 {
			t.Errorf("Column %d: expected std ~1, got %f", j, std)
		}
	}
}

func TestStandardScaler_FitOnTrainOnly(t *testing.T) {
	// The statistics come from the training data alone, so transformed
	// test data generally does NOT have mean 0 / std 1.
	XTrain := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	XTest := mat.NewDense(2, 1, []float64{10, 20})

	scaler := NewStandardScaler()
	if err := scaler.Fit(XTrain); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	// Train statistics: mean 2.5, population std sqrt(1.25)
	if math.Abs(scaler.Mean[0]-2.5) > 1e-10 {
		t.Errorf("Expected mean 2.5, got %f", scaler.Mean[0])
	}
	wantStd := math.Sqrt(1.25)
	if math.Abs(scaler.Scale[0]-wantStd) > 1e-10 {
		t.Errorf("Expected std %f, got %f", wantStd, scaler.Scale[0])
	}

	scaled, err := scaler.Transform(XTest)
	if err != nil {
		t.Fatalf("Failed to transform test data: %v", err)
	}

	// (10 - 2.5) / sqrt(1.25), (20 - 2.5) / sqrt(1.25)
	want := []float64{7.5 / wantStd, 17.5 / wantStd}
	for i, w := range want {
		if math.Abs(scaled.At(i, 0)-w) > 1e-10 {
			t.Errorf("Test row %d: expected %f, got %f", i, w, scaled.At(i, 0))
		}
	}

	// Fitting must not have been influenced by the test data
	if scaler.Mean[0] != 2.5 {
		t.Error("Transform must not update fitted statistics")
	}
}

func TestStandardScaler_DegeneratePass(t *testing.T) {
	// Default policy: a constant column passes through unchanged
	X := mat.NewDense(3, 2, []float64{
		1.0, 5.0,
		2.0, 5.0,
		3.0, 5.0,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	// The constant column is centered but not scaled (scale forced to 1)
	for i := 0; i < 3; i++ {
		if math.Abs(scaled.At(i, 1)) > 1e-10 {
			t.Errorf("Constant column row %d: expected 0 after centering, got %f", i, scaled.At(i, 1))
		}
	}
	if scaler.Scale[1] != 1.0 {
		t.Errorf("Expected scale 1.0 for constant column, got %f", scaler.Scale[1])
	}
}

func TestStandardScaler_DegenerateReject(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1.0, 5.0,
		2.0, 5.0,
		3.0, 5.0,
	})

	scaler := NewStandardScaler(WithDegeneratePolicy(DegenerateReject))
	err := scaler.Fit(X)
	if err == nil {
		t.Fatal("Expected error for zero-variance column under DegenerateReject")
	}
	if !statgoErrors.Is(err, statgoErrors.ErrDegenerateFeature) {
		t.Errorf("Expected ErrDegenerateFeature, got %v", err)
	}
	if scaler.IsFitted() {
		t.Error("Scaler must not be fitted after a rejected Fit")
	}
}

func TestStandardScaler_TransformNotFitted(t *testing.T) {
	scaler := NewStandardScaler()
	X := mat.NewDense(2, 1, []float64{1, 2})

	if _, err := scaler.Transform(X); err == nil {
		t.Error("Expected NotFittedError from Transform before Fit")
	}
	if _, err := scaler.InverseTransform(X); err == nil {
		t.Error("Expected NotFittedError from InverseTransform before Fit")
	}
}

func TestStandardScaler_DimensionMismatch(t *testing.T) {
	XTrain := mat.NewDense(3, 2, []float64{1, 1, 2, 2, 3, 3})
	scaler := NewStandardScaler()
	if err := scaler.Fit(XTrain); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	XBad := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if _, err := scaler.Transform(XBad); err == nil {
		t.Error("Expected DimensionError for mismatched feature count")
	}
}

func TestStandardScaler_InverseTransformRoundTrip(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1.0, -10.0,
		2.0, 0.0,
		3.0, 10.0,
		4.0, 20.0,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("Failed to inverse-transform: %v", err)
	}

	r, c := X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(restored.At(i, j)-X.At(i, j)) > 1e-10 {
				t.Errorf("Round trip mismatch at (%d,%d): want %f, got %f",
					i, j, X.At(i, j), restored.At(i, j))
			}
		}
	}
}

func TestMinMaxScaler_DefaultRange(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{2, 4, 6, 10})

	scaler := NewMinMaxScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	want := []float64{0.0, 0.25, 0.5, 1.0}
	for i, w := range want {
		if math.Abs(scaled.At(i, 0)-w) > 1e-10 {
			t.Errorf("Row %d: expected %f, got %f", i, w, scaled.At(i, 0))
		}
	}
}

func TestMinMaxScaler_CustomRange(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 5, 10})

	scaler := NewMinMaxScaler([2]float64{-1, 1})
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	want := []float64{-1.0, 0.0, 1.0}
	for i, w := range want {
		if math.Abs(scaled.At(i, 0)-w) > 1e-10 {
			t.Errorf("Row %d: expected %f, got %f", i, w, scaled.At(i, 0))
		}
	}
}

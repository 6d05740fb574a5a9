// Package statgo provides the numerical core behind a pair of teaching
// notebooks on linear regression and clustering: closed-form OLS fitting,
// regression error metrics, z-score standardization with strict
// fit-on-train/apply-to-test semantics, and a K-Means pipeline that can be
// seeded from Ward-linkage hierarchical clustering.
//
// The API follows scikit-learn conventions so that readers coming from the
// Python notebooks can map every call one to one.
//
// # Quick Start
//
// Fitting a line y = 2x + 1:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/statgo/linear"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})
//
//	    model := linear.NewLinearRegression()
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(model.Intercept(), model.Weights()) // ≈ 1, [2]
//	}
//
// Seeding K-Means from a hierarchical clustering cut:
//
//	seeds, _, err := cluster.WardSeeds(X, 3)
//	km := cluster.NewKMeans(
//	    cluster.WithNClusters(3),
//	    cluster.WithInitCentroids(seeds),
//	)
//	err = km.Fit(X)
//
// # Packages
//
//   - linear: closed-form linear regression (normal equations)
//   - metrics: regression error metrics (MSE, RMSE, MAE, R²) and cluster
//     quality metrics (inertia, silhouette)
//   - preprocessing: StandardScaler, MinMaxScaler, train/test split
//   - cluster: KMeans and Ward-linkage agglomerative seeding
//   - core/model: shared estimator interfaces and base types
//   - core/parallel: parallel processing utilities
//   - pkg/errors: structured errors and the warning system
//   - pkg/log: structured logging utilities
//
// All operations are synchronous computations over in-memory matrices; the
// only concurrency is the optional chunked parallelism in per-point loops,
// which does not change observable results beyond floating-point rounding
// order.
package statgo

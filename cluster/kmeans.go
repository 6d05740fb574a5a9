package cluster

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statgo/core/model"
	"github.com/YuminosukeSato/statgo/core/parallel"
	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// KMeans はLloyd法によるK-Meansクラスタリング
//
// 割り当てステップでは各点を二乗ユークリッド距離が最小のクラスタ中心に
// 割り当てる（同距離の場合はインデックスの小さい中心を選ぶ）。更新ステップ
// では各中心を割り当てられた点の平均に移動する。割り当てが変化しなくなるか、
// 中心の移動量がtol以下になるか、最大イテレーション数に達すると終了する。
// 上限到達は致命的エラーではなく
// ConvergenceWarningとして通知され、その時点の結果が保持される。
type KMeans struct {
	model.BaseEstimator

	// ハイパーパラメータ
	nClusters     int        // クラスタ数
	maxIter       int        // 最大イテレーション数
	tol           float64    // 中心移動量の収束許容値
	randomState   int64      // 乱数シード
	initCentroids *mat.Dense // 明示的な初期クラスタ中心（nilならランダム初期化）

	// 学習パラメータ
	clusterCenters_ *mat.Dense // クラスタ中心 (nClusters × nFeatures)
	labels_         []int      // 各サンプルのクラスタラベル
	inertia_        float64    // クラスタ内平方和誤差
	nIter_          int        // 実行されたイテレーション数

	rng        *rand.Rand
	nFeatures_ int
}

// NewKMeans は新しいKMeansを作成する
//
// 使用例:
//
//	km := cluster.NewKMeans(
//	    cluster.WithNClusters(3),
//	    cluster.WithRandomState(42),
//	)
//	err := km.Fit(X)
//	labels := km.Labels()
func NewKMeans(options ...KMeansOption) *KMeans {
	km := &KMeans{
		nClusters:   8,
		maxIter:     300,
		tol:         1e-4,
		randomState: -1,
	}

	for _, opt := range options {
		opt(km)
	}

	if km.randomState >= 0 {
		km.rng = rand.New(rand.NewSource(km.randomState))
	} else {
		km.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return km
}

// Fit はモデルをデータで学習させる
//
// パラメータ:
//   - X: データ行列 (n_samples × n_features)
//
// 戻り値:
//   - error: kが[1, n_samples]の範囲外、または初期中心の次元が不正な場合
func (km *KMeans) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "KMeans.Fit")

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("KMeans.Fit", "empty data", errors.ErrEmptyData)
	}
	if km.nClusters < 1 || km.nClusters > rows {
		return errors.NewValidationError("nClusters", "must be in [1, n_samples]", km.nClusters)
	}

	km.nFeatures_ = cols

	centers, err := km.initializeCenters(X)
	if err != nil {
		return err
	}

	// 行データを先に展開しておく（割り当てループで使い回す）
	points := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		points[i] = make([]float64, cols)
		mat.Row(points[i], i, X)
	}

	labels := make([]int, rows)
	for i := range labels {
		labels[i] = -1
	}

	converged := false
	var finalIter int

	for iter := 0; iter < km.maxIter; iter++ {
		finalIter = iter

		// 割り当てステップ: 点ごとに独立なので並列化できる
		changed := assignToNearest(points, centers, labels)

		if !changed {
			converged = true
			break
		}

		// 更新ステップ: 各中心を割り当てられた点の平均に移動
		sums := make([][]float64, km.nClusters)
		counts := make([]int, km.nClusters)
		for c := range sums {
			sums[c] = make([]float64, cols)
		}
		for i, label := range labels {
			counts[label]++
			floats.Add(sums[label], points[i])
		}
		var shift float64
		for c := 0; c < km.nClusters; c++ {
			if counts[c] == 0 {
				// 空クラスタは前回の中心を保持する（NaNにしない）
				continue
			}
			for j := 0; j < cols; j++ {
				next := sums[c][j] / float64(counts[c])
				diff := next - centers[c][j]
				shift += diff * diff
				centers[c][j] = next
			}
		}

		// 中心がほとんど動かなくなった場合も収束とみなす
		if math.Sqrt(shift) <= km.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("KMeans", km.maxIter, ""))
	}

	km.clusterCenters_ = centersToDense(centers)
	km.labels_ = labels
	km.inertia_ = computeInertia(points, centers, labels)
	km.nIter_ = finalIter + 1

	km.SetFitted()
	return nil
}

// FitPredict は学習と学習データに対するラベル取得を同時に行う
func (km *KMeans) FitPredict(X mat.Matrix) ([]int, error) {
	if err := km.Fit(X); err != nil {
		return nil, err
	}
	return km.Labels(), nil
}

// Predict は入力データに対するクラスタ予測を行う
func (km *KMeans) Predict(X mat.Matrix) ([]int, error) {
	if !km.IsFitted() {
		return nil, errors.NewNotFittedError("KMeans", "Predict")
	}

	rows, cols := X.Dims()
	if cols != km.nFeatures_ {
		return nil, errors.NewDimensionError("KMeans.Predict", km.nFeatures_, cols, 1)
	}

	centers := denseToCenters(km.clusterCenters_)
	labels := make([]int, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		labels[i], _ = nearestCluster(row, centers)
	}
	return labels, nil
}

// Score は入力データに対する慣性（クラスタ内平方和誤差）を計算する
// 値は非負で、小さいほど良い。
func (km *KMeans) Score(X mat.Matrix) (float64, error) {
	if !km.IsFitted() {
		return 0, errors.NewNotFittedError("KMeans", "Score")
	}

	rows, cols := X.Dims()
	if cols != km.nFeatures_ {
		return 0, errors.NewDimensionError("KMeans.Score", km.nFeatures_, cols, 1)
	}

	centers := denseToCenters(km.clusterCenters_)
	var inertia float64
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		_, d2 := nearestCluster(row, centers)
		inertia += d2
	}
	return inertia, nil
}

// ClusterCenters は学習されたクラスタ中心のコピーを返す
func (km *KMeans) ClusterCenters() *mat.Dense {
	if km.clusterCenters_ == nil {
		return nil
	}
	r, c := km.clusterCenters_.Dims()
	centers := mat.NewDense(r, c, nil)
	centers.Copy(km.clusterCenters_)
	return centers
}

// Labels は学習データのクラスタラベルのコピーを返す
func (km *KMeans) Labels() []int {
	if km.labels_ == nil {
		return nil
	}
	labels := make([]int, len(km.labels_))
	copy(labels, km.labels_)
	return labels
}

// Inertia は学習データに対する慣性（クラスタ内平方和誤差）を返す
func (km *KMeans) Inertia() float64 {
	return km.inertia_
}

// NIterations は実行された学習イテレーション数を返す
func (km *KMeans) NIterations() int {
	return km.nIter_
}

// GetParams はモデルのハイパーパラメータを取得する
func (km *KMeans) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_clusters":   km.nClusters,
		"max_iter":     km.maxIter,
		"tol":          km.tol,
		"random_state": km.randomState,
	}
}

// 内部ヘルパー

// initializeCenters はクラスタ中心を初期化する
// 明示的な初期中心が与えられていればその検証済みコピーを、
// なければ重複しないランダムなデータ点を使う。
func (km *KMeans) initializeCenters(X mat.Matrix) ([][]float64, error) {
	rows, cols := X.Dims()
	centers := make([][]float64, km.nClusters)

	if km.initCentroids != nil {
		ir, ic := km.initCentroids.Dims()
		if ir != km.nClusters {
			return nil, errors.NewDimensionError("KMeans.Fit", km.nClusters, ir, 0)
		}
		if ic != cols {
			return nil, errors.NewDimensionError("KMeans.Fit", cols, ic, 1)
		}
		for c := 0; c < km.nClusters; c++ {
			centers[c] = make([]float64, cols)
			mat.Row(centers[c], c, km.initCentroids)
		}
		return centers, nil
	}

	// Fisher-Yatesシャッフルで重複のないk個のデータ点を選ぶ
	perm := km.rng.Perm(rows)
	for c := 0; c < km.nClusters; c++ {
		centers[c] = make([]float64, cols)
		mat.Row(centers[c], perm[c], X)
	}
	return centers, nil
}

// assignToNearest は全ての点を最近傍のクラスタ中心に割り当て、
// 割り当てが変化したかどうかを返す
func assignToNearest(points [][]float64, centers [][]float64, labels []int) bool {
	// 並列処理の閾値（この値以下の点数では逐次処理を使用）
	const parallelThreshold = 2048

	changedFlags := make([]bool, len(points))
	parallel.ParallelizeWithThreshold(len(points), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			nearest, _ := nearestCluster(points[i], centers)
			if nearest != labels[i] {
				labels[i] = nearest
				changedFlags[i] = true
			}
		}
	})

	for _, changed := range changedFlags {
		if changed {
			return true
		}
	}
	return false
}

// nearestCluster は最近傍クラスタのインデックスと二乗距離を返す
// 同距離の場合はインデックスの小さい中心が選ばれる
func nearestCluster(point []float64, centers [][]float64) (int, float64) {
	nearest := 0
	minDist := math.Inf(1)
	for c, center := range centers {
		d := floats.Distance(point, center, 2)
		d2 := d * d
		if d2 < minDist {
			minDist = d2
			nearest = c
		}
	}
	return nearest, minDist
}

// computeInertia は慣性（クラスタ内平方和誤差）を計算する
func computeInertia(points [][]float64, centers [][]float64, labels []int) float64 {
	var inertia float64
	for i, point := range points {
		d := floats.Distance(point, centers[labels[i]], 2)
		inertia += d * d
	}
	return inertia
}

func centersToDense(centers [][]float64) *mat.Dense {
	k := len(centers)
	cols := len(centers[0])
	dense := mat.NewDense(k, cols, nil)
	for c := 0; c < k; c++ {
		dense.SetRow(c, centers[c])
	}
	return dense
}

func denseToCenters(dense *mat.Dense) [][]float64 {
	k, cols := dense.Dims()
	centers := make([][]float64, k)
	for c := 0; c < k; c++ {
		centers[c] = make([]float64, cols)
		mat.Row(centers[c], c, dense)
	}
	return centers
}

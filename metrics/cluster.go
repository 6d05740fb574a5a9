package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// Inertia はクラスタ内平方和誤差（各点から割り当てられたクラスタ中心までの
// 二乗距離の総和）を計算する
//
// 値は常に非負。最大化スコアとして使いたい場合は呼び出し側で符号を反転する。
//
// パラメータ:
//   - X: データ行列 (n_samples × n_features)
//   - centroids: クラスタ中心 (n_clusters × n_features)
//   - labels: 各サンプルのクラスタラベル
func Inertia(X mat.Matrix, centroids mat.Matrix, labels []int) (float64, error) {
	r, c := X.Dims()
	k, cc := centroids.Dims()

	if r == 0 || c == 0 {
		return 0, errors.NewValueError("Inertia", "empty matrix")
	}
	if len(labels) != r {
		return 0, errors.NewDimensionError("Inertia", r, len(labels), 0)
	}
	if cc != c {
		return 0, errors.NewDimensionError("Inertia", c, cc, 1)
	}

	var sum float64
	row := make([]float64, c)
	center := make([]float64, c)
	for i := 0; i < r; i++ {
		label := labels[i]
		if label < 0 || label >= k {
			return 0, errors.NewValidationError("labels", "label out of centroid range", label)
		}
		mat.Row(row, i, X)
		mat.Row(center, label, centroids)
		d := floats.Distance(row, center, 2)
		sum += d * d
	}

	return sum, nil
}

// Silhouette はクラスタリングの平均シルエット係数を計算する
//
// 各点iについて a(i) = 同一クラスタ内の他の点への平均距離、
// b(i) = 他のクラスタへの平均距離の最小値 として
// s(i) = (b(i) - a(i)) / max(a(i), b(i)) を求め、その平均を返す。
// シングルトンクラスタに属する点は s(i) = 0 と定義する。
//
// 戻り値の範囲は[-1, 1]で、大きいほど良い。
// クラスタ数が1、またはサンプル数と等しい場合は定義されないためエラーを返す。
func Silhouette(X mat.Matrix, labels []int) (float64, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, errors.NewValueError("Silhouette", "empty matrix")
	}
	if len(labels) != r {
		return 0, errors.NewDimensionError("Silhouette", r, len(labels), 0)
	}

	// ラベルごとのサンプル数を数える
	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}
	k := len(counts)
	if k < 2 {
		return 0, errors.NewValueError("Silhouette", "number of distinct labels must be at least 2")
	}
	if k == r {
		return 0, errors.NewValueError("Silhouette", "number of distinct labels must be less than n_samples")
	}

	// 全ペア距離を先に計算する
	dist := pairwiseDistances(X)

	hasSingleton := false
	var total float64
	for i := 0; i < r; i++ {
		own := labels[i]
		if counts[own] == 1 {
			// a(i)が定義できないため s(i) = 0
			hasSingleton = true
			continue
		}

		// クラスタごとの距離合計
		sums := make(map[int]float64)
		for j := 0; j < r; j++ {
			if j == i {
				continue
			}
			sums[labels[j]] += dist[i][j]
		}

		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for label, sum := range sums {
			if label == own {
				continue
			}
			if mean := sum / float64(counts[label]); mean < b {
				b = mean
			}
		}

		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}

	if hasSingleton {
		errors.Warn(errors.NewUndefinedMetricWarning("silhouette", "singleton cluster", 0))
	}

	return total / float64(r), nil
}

// pairwiseDistances は全サンプル間のユークリッド距離行列を計算する
func pairwiseDistances(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		mat.Row(rows[i], i, X)
	}

	dist := make([][]float64, r)
	for i := 0; i < r; i++ {
		dist[i] = make([]float64, r)
	}
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			d := floats.Distance(rows[i], rows[j], 2)
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

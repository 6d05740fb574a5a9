package cluster

import "gonum.org/v1/gonum/mat"

// KMeansOption はKMeansの設定オプション
type KMeansOption func(*KMeans)

// WithNClusters はクラスタ数を設定
func WithNClusters(n int) KMeansOption {
	return func(km *KMeans) {
		km.nClusters = n
	}
}

// WithMaxIter は最大イテレーション数を設定
func WithMaxIter(maxIter int) KMeansOption {
	return func(km *KMeans) {
		km.maxIter = maxIter
	}
}

// WithTol は収束判定に使う中心移動量の許容値を設定
// 更新ステップでの全中心の移動量（フロベニウスノルム）がこの値以下に
// なった時点でも収束とみなす。
func WithTol(tol float64) KMeansOption {
	return func(km *KMeans) {
		km.tol = tol
	}
}

// WithRandomState は乱数シードを設定
// 負の値を指定すると実行ごとに異なるシードが使われる
func WithRandomState(seed int64) KMeansOption {
	return func(km *KMeans) {
		km.randomState = seed
	}
}

// WithInitCentroids は初期クラスタ中心を明示的に指定する
// 階層クラスタリング（WardSeeds）で得た中心を渡すことで、
// ランダム初期化の複数回試行を省略できる。行数はnClustersと一致すること。
func WithInitCentroids(centroids *mat.Dense) KMeansOption {
	return func(km *KMeans) {
		km.initCentroids = centroids
	}
}

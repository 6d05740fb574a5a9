package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// Merge は階層クラスタリングの1回の併合を表す
// AとBは併合されたクラスタのid。元データのn点はid 0..n-1を持ち、
// t回目の併合で生まれるクラスタはid n+tを持つ（scipyのlinkage行列と同じ規約）。
type Merge struct {
	A, B     int
	Distance float64 // 併合時のWard距離
	Size     int     // 併合後のクラスタに含まれる点の数
}

// Dendrogram はWard法による階層併合の全履歴（n-1件のMerge）を保持する
type Dendrogram struct {
	nPoints int
	merges  []Merge
}

// NPoints は元データの点数を返す
func (d *Dendrogram) NPoints() int {
	return d.nPoints
}

// Merges は併合履歴のコピーを返す
func (d *Dendrogram) Merges() []Merge {
	merges := make([]Merge, len(d.merges))
	copy(merges, d.merges)
	return merges
}

// WardLinkage はWard基準による凝集型階層クラスタリングの併合木を構築する
//
// n個の単一点クラスタから開始し、クラスタ内分散の増加が最小となるペアを
// 繰り返し併合してn-1件の併合記録を作る。クラスタ間距離はLance-Williamsの
// 漸化式で更新する。併合コストが同値の場合はid順で最初に見つかるペアを
// 選ぶ（入力順が同じなら結果は決定的）。
//
// パラメータ:
//   - X: データ行列 (n_samples × n_features)
//
// 戻り値:
//   - *Dendrogram: 併合履歴
//   - error: 空データの場合
func WardLinkage(X mat.Matrix) (*Dendrogram, error) {
	n, cols := X.Dims()
	if n == 0 || cols == 0 {
		return nil, errors.NewModelError("WardLinkage", "empty data", errors.ErrEmptyData)
	}

	total := 2*n - 1
	size := make([]int, total)
	active := make([]bool, total)

	// d2[i][j] はクラスタiとjのWard距離の二乗
	// 初期値は点同士の二乗ユークリッド距離
	d2 := make([][]float64, total)
	for i := range d2 {
		d2[i] = make([]float64, total)
	}

	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, cols)
		mat.Row(rows[i], i, X)
		size[i] = 1
		active[i] = true
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(rows[i], rows[j], 2)
			d2[i][j] = d * d
			d2[j][i] = d * d
		}
	}

	merges := make([]Merge, 0, n-1)

	for step := 0; step < n-1; step++ {
		limit := n + step

		// 最小のWard距離を持つアクティブなペアを探す
		// 同値の場合はid順で最初のペアが選ばれる
		bestI, bestJ := -1, -1
		bestDist := math.Inf(1)
		for i := 0; i < limit; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < limit; j++ {
				if !active[j] {
					continue
				}
				if d2[i][j] < bestDist {
					bestDist = d2[i][j]
					bestI, bestJ = i, j
				}
			}
		}

		newID := n + step
		si := float64(size[bestI])
		sj := float64(size[bestJ])

		active[bestI] = false
		active[bestJ] = false
		active[newID] = true
		size[newID] = size[bestI] + size[bestJ]

		// Lance-Williamsの漸化式でWard距離を更新
		// D²(i∪j, k) = ((n_i+n_k)D²(i,k) + (n_j+n_k)D²(j,k) - n_k·D²(i,j)) / (n_i+n_j+n_k)
		for k := 0; k < newID; k++ {
			if !active[k] {
				continue
			}
			sk := float64(size[k])
			dist := ((si+sk)*d2[bestI][k] + (sj+sk)*d2[bestJ][k] - sk*bestDist) / (si + sj + sk)
			d2[newID][k] = dist
			d2[k][newID] = dist
		}

		merges = append(merges, Merge{
			A:        bestI,
			B:        bestJ,
			Distance: math.Sqrt(bestDist),
			Size:     size[newID],
		})

		if err := errors.CheckScalar("ward_linkage", bestDist, step); err != nil {
			return nil, err
		}
	}

	return &Dendrogram{nPoints: n, merges: merges}, nil
}

// Cut は併合木をちょうどk個のフラットなクラスタに切断する
//
// 先頭からn-k回分の併合だけを適用した時点の構成を復元する。ラベルは
// 行順で最初に現れたクラスタから0, 1, 2, ...と振られる。
//
// パラメータ:
//   - k: クラスタ数 (1 ≤ k ≤ n)
//
// 戻り値:
//   - []int: 各点のクラスタラベル
//   - error: kが範囲外の場合
func (d *Dendrogram) Cut(k int) ([]int, error) {
	n := d.nPoints
	if k < 1 || k > n {
		return nil, errors.NewValidationError("k", "must be in [1, n_samples]", k)
	}

	nMerges := n - k
	total := n + nMerges

	// クラスタid → 所属する点のインデックス
	members := make([][]int, total)
	consumed := make([]bool, total)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
	}
	for t := 0; t < nMerges; t++ {
		m := d.merges[t]
		merged := make([]int, 0, len(members[m.A])+len(members[m.B]))
		merged = append(merged, members[m.A]...)
		merged = append(merged, members[m.B]...)
		members[n+t] = merged
		consumed[m.A] = true
		consumed[m.B] = true
	}

	// 点ごとのクラスタidを確定する
	clusterOf := make([]int, n)
	for id := 0; id < total; id++ {
		if consumed[id] || members[id] == nil {
			continue
		}
		for _, p := range members[id] {
			clusterOf[p] = id
		}
	}

	// 行順の初出順でラベルを振り直す
	labels := make([]int, n)
	labelOf := make(map[int]int, k)
	next := 0
	for i := 0; i < n; i++ {
		id := clusterOf[i]
		label, ok := labelOf[id]
		if !ok {
			label = next
			labelOf[id] = label
			next++
		}
		labels[i] = label
	}

	return labels, nil
}

// ClusterMeans はラベルごとの重心（要素ごとの平均）を計算する
//
// 重心はラベルが割り当て列に最初に現れる順で並ぶ。この順序はK-Meansが
// 初期中心を位置で消費するため重要になる。
//
// パラメータ:
//   - X: データ行列 (n_samples × n_features)
//   - labels: 各点のクラスタラベル
//
// 戻り値:
//   - *mat.Dense: 重心行列 (n_labels × n_features)
func ClusterMeans(X mat.Matrix, labels []int) (*mat.Dense, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("ClusterMeans", "empty data", errors.ErrEmptyData)
	}
	if len(labels) != r {
		return nil, errors.NewDimensionError("ClusterMeans", r, len(labels), 0)
	}

	// ラベルの初出順を保ちながらグループ化する（1パスの決定的な集約）
	order := make([]int, 0)
	groups := make(map[int][]int)
	for i, label := range labels {
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], i)
	}

	centroids := mat.NewDense(len(order), c, nil)
	row := make([]float64, c)
	for idx, label := range order {
		sum := make([]float64, c)
		for _, i := range groups[label] {
			mat.Row(row, i, X)
			floats.Add(sum, row)
		}
		floats.Scale(1/float64(len(groups[label])), sum)
		centroids.SetRow(idx, sum)
	}

	return centroids, nil
}

// WardSeeds は階層クラスタリングのk分割から重心を計算する
// 得られた重心はWithInitCentroidsでK-Meansの初期中心として使える。
func WardSeeds(X mat.Matrix, k int) (*mat.Dense, []int, error) {
	dendrogram, err := WardLinkage(X)
	if err != nil {
		return nil, nil, err
	}
	labels, err := dendrogram.Cut(k)
	if err != nil {
		return nil, nil, err
	}
	centroids, err := ClusterMeans(X, labels)
	if err != nil {
		return nil, nil, err
	}
	return centroids, labels, nil
}

// WardSeededKMeans は階層クラスタリングの重心を初期値としてK-Meansを学習する
//
// 初期値がすでに良い局所解の近くにあるため、ランダム初期化のような
// 複数回の再試行を行わずに安定した結果が得られる。
func WardSeededKMeans(X mat.Matrix, k int, options ...KMeansOption) (*KMeans, error) {
	seeds, _, err := WardSeeds(X, k)
	if err != nil {
		return nil, err
	}

	opts := append([]KMeansOption{
		WithNClusters(k),
		WithInitCentroids(seeds),
	}, options...)

	km := NewKMeans(opts...)
	if err := km.Fit(X); err != nil {
		return nil, err
	}
	return km, nil
}

package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/statgo/core/model"
	"github.com/YuminosukeSato/statgo/core/parallel"
	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// DegeneratePolicy は分散ゼロ（定数）の特徴量に遭遇した場合の挙動を表す
type DegeneratePolicy int

const (
	// DegeneratePass は定数列をスケーリングせずそのまま通す（スケールを1として扱う）
	DegeneratePass DegeneratePolicy = iota
	// DegenerateReject は定数列を検出した時点でFitをエラーにする
	DegenerateReject
)

// ScalerOption はStandardScalerの設定オプション
type ScalerOption func(*StandardScaler)

// WithDegeneratePolicy は分散ゼロの特徴量に対するポリシーを設定する
func WithDegeneratePolicy(p DegeneratePolicy) ScalerOption {
	return func(s *StandardScaler) {
		s.policy = p
	}
}

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
//
// Fitは訓練データに対して一度だけ呼び出し、得られた統計量（平均・標準偏差）を
// 訓練データとテストデータの両方のTransformに使い回す。テストデータが統計量に
// 影響することはない。
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（母標準偏差）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	policy DegeneratePolicy
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// パラメータ:
//   - opts: 設定オプション（WithDegeneratePolicyなど）
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler()
//	err := scaler.Fit(XTrain)
//	XTrainScaled, err := scaler.Transform(XTrain)
//	XTestScaled, err := scaler.Transform(XTest)
func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{policy: DegeneratePass}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
//
// パラメータ:
//   - X: 訓練データ (n_samples × n_features の行列)
//
// 戻り値:
//   - error: 空データの場合、またはDegenerateRejectポリシーで定数列を検出した場合
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	mean := make([]float64, c)
	scale := make([]float64, c)

	// 列ごとの統計量は独立なので列単位で並列化できる
	const parallelThreshold = 64
	parallel.ParallelizeWithThreshold(c, parallelThreshold, func(start, end int) {
		col := make([]float64, r)
		for j := start; j < end; j++ {
			mat.Col(col, j, X)
			mean[j] = stat.Mean(col, nil)
			// 母標準偏差（nで割る）
			scale[j] = stat.PopStdDev(col, nil)
		}
	})

	for j := 0; j < c; j++ {
		if math.Abs(scale[j]) < 1e-8 {
			if s.policy == DegenerateReject {
				return errors.NewModelError("StandardScaler.Fit",
					fmt.Sprintf("zero variance in column %d", j), errors.ErrDegenerateFeature)
			}
			// ゼロ除算を避けるためスケールを1に設定（列は実質そのまま通る）
			scale[j] = 1.0
		}
	}

	s.NFeatures = c
	s.Mean = mean
	s.Scale = scale
	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
//
// パラメータ:
//   - X: 変換するデータ
//
// 戻り値:
//   - mat.Matrix: 標準化されたデータ
//   - error: 未学習の場合、または特徴量数が一致しない場合
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}

	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}

	return result, nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"degenerate_policy": s.policy,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.NFeatures)
}

package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statgo/core/model"
	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// RegressionEvaluator は予測値と正解値のペアを一度だけ確定し、
// 各種誤差指標を純粋な問い合わせとして提供する不変の評価器
//
// モデル・データ・予測値を一つの可変オブジェクトに束ねると、再学習や
// 再予測のタイミングに依存したバグを生みやすい。この評価器は構築時に
// 予測を一度だけ実行して以後は値を固定するため、MSEとMAEが必ず同一の
// 予測値に対して計算されることが保証される。
type RegressionEvaluator struct {
	yTrue *mat.VecDense
	yPred *mat.VecDense
}

// NewRegressionEvaluator は正解値と予測値から評価器を作成する
//
// パラメータ:
//   - yTrue: 正解値ベクトル
//   - yPred: 予測値ベクトル
//
// 戻り値:
//   - *RegressionEvaluator: 不変の評価器
//   - error: 空ベクトルまたは長さ不一致の場合
func NewRegressionEvaluator(yTrue, yPred *mat.VecDense) (*RegressionEvaluator, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("NewRegressionEvaluator", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("NewRegressionEvaluator", n, yPred.Len(), 0)
	}

	// 以後の変更から切り離すためコピーを保持する
	yt := mat.NewVecDense(n, nil)
	yt.CopyVec(yTrue)
	yp := mat.NewVecDense(n, nil)
	yp.CopyVec(yPred)

	return &RegressionEvaluator{yTrue: yt, yPred: yp}, nil
}

// EvaluateModel はモデルの予測を一度だけ実行して評価器を作成する
//
// パラメータ:
//   - m: 学習済みモデル
//   - X: 評価用の特徴量行列
//   - y: 正解値 (n×1 行列)
func EvaluateModel(m model.Predictor, X mat.Matrix, y mat.Matrix) (*RegressionEvaluator, error) {
	yPred, err := m.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, "EvaluateModel: predict failed")
	}

	yTrueVec, yPredVec, err := columnVectors("EvaluateModel", y, yPred)
	if err != nil {
		return nil, err
	}

	return NewRegressionEvaluator(yTrueVec, yPredVec)
}

// MSE は保持している予測値に対する平均二乗誤差を返す
func (e *RegressionEvaluator) MSE() float64 {
	v, _ := MSE(e.yTrue, e.yPred)
	return v
}

// RMSE は保持している予測値に対する平方根平均二乗誤差を返す
func (e *RegressionEvaluator) RMSE() float64 {
	v, _ := RMSE(e.yTrue, e.yPred)
	return v
}

// MAE は保持している予測値に対する平均絶対誤差を返す
func (e *RegressionEvaluator) MAE() float64 {
	v, _ := MAE(e.yTrue, e.yPred)
	return v
}

// R2 は保持している予測値に対する決定係数を返す
func (e *RegressionEvaluator) R2() (float64, error) {
	return R2Score(e.yTrue, e.yPred)
}

// NSamples は評価対象のサンプル数を返す
func (e *RegressionEvaluator) NSamples() int {
	return e.yTrue.Len()
}

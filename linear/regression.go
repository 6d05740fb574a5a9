package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statgo/core/model"
	"github.com/YuminosukeSato/statgo/core/parallel"
	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// LinearRegression は正規方程式による閉形式の線形回帰モデル
//
// beta = (X^T * X)^(-1) * X^T * y を解く。設計行列はフルランク
// （列の線形独立）である必要があり、特異な場合はErrSingularMatrixで失敗する。
type LinearRegression struct {
	model.BaseEstimator

	fitIntercept bool // 切片列を内部で付加するかどうか
	copyX        bool // Xをコピーしてから学習するかどうか

	// Coef は学習された重み（係数）。fitIntercept=falseで呼び出し側が
	// 1.0の列を先頭に付加した場合、切片係数が先頭に並ぶ。
	Coef *mat.VecDense

	// InterceptVal は学習された切片（fitIntercept=trueの場合のみ非ゼロ）
	InterceptVal float64

	// NFeatures は学習時の特徴量の数
	NFeatures int
}

// NewLinearRegression は新しい線形回帰モデルを作成する
//
// デフォルトでは切片を内部で計算する（fitIntercept=true）。
//
// 使用例:
//
//	lr := linear.NewLinearRegression()
//	err := lr.Fit(X, y)
//	yPred, err := lr.Predict(X)
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		fitIntercept: true,
		copyX:        true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 beta = (X^T * X)^(-1) * X^T * y を使用
//
// パラメータ:
//   - X: 設計行列 (n_samples × n_features)
//   - y: 目的変数 (n_samples × 1 の列ベクトル)
//
// 戻り値:
//   - error: 空データ、次元不一致、または X^T * X が特異な場合
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	// 入力の検証
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	var XWork mat.Matrix = X
	if lr.copyX {
		XCopy := mat.NewDense(r, c, nil)
		XCopy.Copy(X)
		XWork = XCopy
	}

	// 切片項のために X に 1 の列を追加
	// X_with_intercept = [1, X]
	var XFit mat.Matrix
	if lr.fitIntercept {
		XWithIntercept := mat.NewDense(r, c+1, nil)

		// 並列処理の閾値（この値以下の行数では逐次処理を使用）
		const parallelThreshold = 1000
		parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				XWithIntercept.Set(i, 0, 1.0) // 切片項
				for j := 0; j < c; j++ {
					XWithIntercept.Set(i, j+1, XWork.At(i, j))
				}
			}
		})
		XFit = XWithIntercept
	} else {
		XFit = XWork
	}

	beta, err := solveNormalEquations(XFit, y)
	if err != nil {
		return err
	}

	// 切片と重みを分離
	if lr.fitIntercept {
		lr.InterceptVal = beta.AtVec(0)
		lr.Coef = mat.NewVecDense(c, nil)
		for i := 0; i < c; i++ {
			lr.Coef.SetVec(i, beta.AtVec(i+1))
		}
	} else {
		lr.InterceptVal = 0
		lr.Coef = beta
	}

	lr.NFeatures = c
	lr.SetFitted()

	return nil
}

// solveNormalEquations は beta = (X^T * X)^(-1) * X^T * y を解く
func solveNormalEquations(X, y mat.Matrix) (*mat.VecDense, error) {
	r, c := X.Dims()

	var XT mat.Dense
	XT.CloneFrom(X.T())

	var XTX mat.Dense
	XTX.Mul(&XT, X)

	// 逆行列を計算（特異行列はランク落ちした設計行列を意味する）
	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return nil, errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	beta := mat.NewVecDense(c, nil)
	beta.MulVec(&XTXInv, &XTy)

	if err := errors.CheckNumericalStability("normal_equations", beta.RawVector().Data, 0); err != nil {
		return nil, err
	}

	return beta, nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// 予測: y = X * coef + intercept
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.InterceptVal
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Coef.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Weights は学習された重み（係数）を返す
func (lr *LinearRegression) Weights() []float64 {
	if lr.Coef == nil {
		return nil
	}

	weights := make([]float64, lr.Coef.Len())
	for i := 0; i < lr.Coef.Len(); i++ {
		weights[i] = lr.Coef.AtVec(i)
	}
	return weights
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.InterceptVal
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	// 予測値を計算
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()

	// y の平均を計算
	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	// 全変動 (TSS) と残差変動 (RSS) を計算
	var tss, rss float64
	for i := 0; i < r; i++ {
		yTrue := y.At(i, 0)
		yPredVal := yPred.At(i, 0)

		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += (yTrue - yPredVal) * (yTrue - yPredVal)
	}

	// R² = 1 - RSS/TSS
	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}

	return 1 - rss/tss, nil
}

// GetParams はモデルのハイパーパラメータを取得する
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"copy_X":        lr.copyX,
	}
}

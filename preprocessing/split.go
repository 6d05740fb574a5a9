package preprocessing

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// TrainTestSplit はデータセットを訓練用とテスト用に分割する
//
// 行インデックスをシードで決定される順序でシャッフルし、先頭から
// testSizeの割合をテストセットに割り当てる。同じシードと入力に対して
// 常に同じ分割を返す。
//
// パラメータ:
//   - X: 特徴量行列 (n_samples × n_features)
//   - y: 目的変数ベクトル (n_samples × 1)、nilの場合はXのみ分割
//   - testSize: テストセットの割合 (0 < testSize < 1)
//   - seed: シャッフルの乱数シード
//
// 戻り値:
//   - XTrain, XTest, yTrain, yTest（yがnilの場合、yTrain/yTestはnil）
func TrainTestSplit(X mat.Matrix, y mat.Matrix, testSize float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("testSize", "must be in (0, 1)", testSize)
	}
	if y != nil {
		yr, yc := y.Dims()
		if yr != r {
			return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", r, yr, 0)
		}
		if yc != 1 {
			return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "y must be a column vector")
		}
	}

	nTest := int(float64(r) * testSize)
	if nTest == 0 {
		nTest = 1
	}
	nTrain := r - nTest
	if nTrain == 0 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "split leaves no training samples")
	}

	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(r)

	XTest = mat.NewDense(nTest, c, nil)
	XTrain = mat.NewDense(nTrain, c, nil)
	if y != nil {
		yTest = mat.NewDense(nTest, 1, nil)
		yTrain = mat.NewDense(nTrain, 1, nil)
	}

	for i, idx := range indices {
		if i < nTest {
			for j := 0; j < c; j++ {
				XTest.Set(i, j, X.At(idx, j))
			}
			if y != nil {
				yTest.Set(i, 0, y.At(idx, 0))
			}
		} else {
			for j := 0; j < c; j++ {
				XTrain.Set(i-nTest, j, X.At(idx, j))
			}
			if y != nil {
				yTrain.Set(i-nTest, 0, y.At(idx, 0))
			}
		}
	}

	return XTrain, XTest, yTrain, yTest, nil
}

package metrics

import (
	"sort"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ROCPoint はROC曲線上の1点
type ROCPoint struct {
	Threshold float64 // この値以上のスコアを陽性とみなす
	FPR       float64
	TPR       float64
}

// ROCCurve は閾値ごとの偽陽性率と真陽性率を返す
//
// 先頭は(0, 0)、末尾は(1, 1)。同じスコアは1つの閾値にまとめる。
// 陽性・陰性の片方しか存在しない場合は率が定義できないためエラーを返す。
func ROCCurve(yTrue, yScore *mat.VecDense) ([]ROCPoint, error) {
	n, err := checkPair("ROCCurve", yTrue, yScore)
	if err != nil {
		return nil, err
	}
	if err := checkBinaryLabels("ROCCurve", yTrue); err != nil {
		return nil, err
	}

	idx := make([]int, n)
	var nPos int
	for i := range idx {
		idx[i] = i
		if yTrue.AtVec(i) == 1 {
			nPos++
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewValueError("ROCCurve", "both classes must be present")
	}

	// スコアの降順
	sort.SliceStable(idx, func(a, b int) bool {
		return yScore.AtVec(idx[a]) > yScore.AtVec(idx[b])
	})

	points := []ROCPoint{{Threshold: yScore.AtVec(idx[0]) + 1}}
	var tp, fp int
	for i := 0; i < n; {
		threshold := yScore.AtVec(idx[i])
		for ; i < n && yScore.AtVec(idx[i]) == threshold; i++ {
			if yTrue.AtVec(idx[i]) == 1 {
				tp++
			} else {
				fp++
			}
		}
		points = append(points, ROCPoint{
			Threshold: threshold,
			FPR:       float64(fp) / float64(nNeg),
			TPR:       float64(tp) / float64(nPos),
		})
	}
	return points, nil
}

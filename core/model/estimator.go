package model

import "gonum.org/v1/gonum/mat"

// PositiveClass は解約（CHURN）を表すクラスラベル
const PositiveClass = 1

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データ（n×特徴量数）に対する予測ラベル（n×1）を返す
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier は保存済み分類器のインターフェース
// 予測サービスはこのインターフェースだけを通して分類器を呼び出す
type Classifier interface {
	Predictor

	// Classes は分類器が知っているクラスラベルを返す
	Classes() []int

	// FeatureNames は学習時の特徴量の並び順を返す（不明な場合は空）
	FeatureNames() []string
}

// ProbabilisticClassifier は確率を出力できる分類器
type ProbabilisticClassifier interface {
	Classifier

	// PredictProba は各クラスの確率（n×クラス数、列はClasses()の順）を返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// WeightImporter はModelWeightsから状態を復元できるモデル
type WeightImporter interface {
	ImportWeights(weights *ModelWeights) error
}

// WeightExporter はModelWeightsとして状態を書き出せるモデル
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
}

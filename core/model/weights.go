package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
)

// ChecksumKey はMetadata内の係数チェックサムのキー
const ChecksumKey = "checksum"

// ModelWeights は保存済み分類器の重みを表す構造体（分類器アーティファクトの中身）
type ModelWeights struct {
	// ModelType はモデルの種類（LogisticRegression等）
	ModelType string `json:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Features は学習時の特徴量の名前と順序
	Features []string `json:"features,omitempty"`

	// Classes はクラスラベル（省略時は [0, 1]）
	Classes []int `json:"classes,omitempty"`

	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`

	// Metadata は追加のメタデータ（学習時の統計やチェックサム等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "failed to decode model weights")
	}
	return nil
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", nil)
	}
	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", nil)
	}
	if !mw.IsFitted {
		return errors.NewNotFittedError(mw.ModelType, "Validate")
	}
	if len(mw.Coefficients) == 0 {
		return errors.NewValidationError("coefficients", "fitted model must have coefficients", nil)
	}
	if len(mw.Features) > 0 && len(mw.Features) != len(mw.Coefficients) {
		return errors.NewDimensionError("ModelWeights.Validate", len(mw.Coefficients), len(mw.Features), 1)
	}

	seen := make(map[string]struct{}, len(mw.Features))
	for _, f := range mw.Features {
		if _, dup := seen[f]; dup {
			return errors.NewValidationError("features", "duplicate feature", f)
		}
		seen[f] = struct{}{}
	}
	if len(mw.Classes) > 0 && len(mw.Classes) != 2 {
		return errors.NewValidationError("classes", "binary classifier needs exactly two classes", mw.Classes)
	}
	if len(mw.Classes) == 2 && mw.Classes[0] == mw.Classes[1] {
		return errors.NewValidationError("classes", "duplicate class", mw.Classes)
	}

	values := append(append([]float64(nil), mw.Coefficients...), mw.Intercept)
	if err := errors.CheckNumericalStability("ModelWeights.Validate", values); err != nil {
		return err
	}
	return mw.VerifyChecksum()
}

// Checksum は係数と切片のSHA-256を16進文字列で返す
func (mw *ModelWeights) Checksum() string {
	data, _ := json.Marshal(append(append([]float64(nil), mw.Coefficients...), mw.Intercept))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// VerifyChecksum はMetadataにチェックサムがあれば係数と一致するか確認する
func (mw *ModelWeights) VerifyChecksum() error {
	want, ok := mw.Metadata[ChecksumKey].(string)
	if !ok {
		return nil
	}
	if got := mw.Checksum(); got != want {
		return errors.NewValidationError(ChecksumKey, "checksum mismatch: weights may be corrupted", fmt.Sprintf("%s != %s", got, want))
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		Intercept:       mw.Intercept,
		IsFitted:        mw.IsFitted,
		Coefficients:    append([]float64(nil), mw.Coefficients...),
		Features:        append([]string(nil), mw.Features...),
		Classes:         append([]int(nil), mw.Classes...),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
		Metadata:        make(map[string]interface{}, len(mw.Metadata)),
	}
	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

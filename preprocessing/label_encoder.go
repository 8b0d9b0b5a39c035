package preprocessing

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
)

// Encoder は1列分の学習済みカテゴリ→整数コードの対応表
// 学習時に登録された順序を保持し、先頭のカテゴリがフォールバックになる
type Encoder interface {
	// Classes は登録順のカテゴリ一覧のコピーを返す
	Classes() []string
	// Contains はカテゴリが学習済みかどうかを返す
	Contains(category string) bool
	// Fallback は未知カテゴリの代わりに使うカテゴリ（Classes()[0]）を返す
	Fallback() string
	// Transform はカテゴリを整数コードに変換する
	Transform(category string) (int, error)
	// InverseTransform は整数コードをカテゴリに戻す
	InverseTransform(code int) (string, error)
}

// LabelEncoder はscikit-learnのLabelEncoderに相当するエンコーダ
// コードはカテゴリの登録位置 [0, len(classes)-1]
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder は学習済みのカテゴリ一覧からLabelEncoderを作成する
//
// パラメータ:
//   - classes: 学習時の順序のカテゴリ一覧（空・重複は不可）
//
// 使用例:
//
//	enc, err := preprocessing.NewLabelEncoder("Female", "Male")
//	code, err := enc.Transform("Male") // 1
func NewLabelEncoder(classes ...string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.NewValidationError("classes", "encoder must know at least one category", classes)
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, errors.NewValidationError("classes", "duplicate category", c)
		}
		index[c] = i
	}
	return &LabelEncoder{
		classes: append([]string(nil), classes...),
		index:   index,
	}, nil
}

// MustLabelEncoder はNewLabelEncoderのパニック版（テストやリテラル用）
func MustLabelEncoder(classes ...string) *LabelEncoder {
	enc, err := NewLabelEncoder(classes...)
	if err != nil {
		panic(err)
	}
	return enc
}

// Classes は登録順のカテゴリ一覧のコピーを返す
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Len はカテゴリ数を返す
func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// Contains はカテゴリが学習済みかどうかを返す
func (e *LabelEncoder) Contains(category string) bool {
	_, ok := e.index[category]
	return ok
}

// Fallback は先頭（最初に登録された）カテゴリを返す
// 最頻値ではなく登録順で決まる点に注意
func (e *LabelEncoder) Fallback() string {
	return e.classes[0]
}

// Transform はカテゴリを整数コードに変換する
// 未知のカテゴリはErrUnknownCategoryを返す（フォールバックはNormalizerの責務）
func (e *LabelEncoder) Transform(category string) (int, error) {
	code, ok := e.index[category]
	if !ok {
		return 0, errors.Wrapf(errors.ErrUnknownCategory, "LabelEncoder.Transform: %q", category)
	}
	return code, nil
}

// InverseTransform は整数コードをカテゴリに戻す
func (e *LabelEncoder) InverseTransform(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", errors.NewValueError("LabelEncoder.InverseTransform", "code out of range")
	}
	return e.classes[code], nil
}

// validate は内部状態の整合性を確認する（デコード直後のゼロ値対策）
func (e *LabelEncoder) validate() error {
	if e == nil || len(e.classes) == 0 || len(e.index) != len(e.classes) {
		return errors.NewValidationError("classes", "encoder must know at least one unique category", nil)
	}
	return nil
}

// MarshalJSON はカテゴリ一覧をJSON配列として出力する
func (e *LabelEncoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.classes)
}

// UnmarshalJSON はJSON配列からカテゴリ一覧を読み込む
func (e *LabelEncoder) UnmarshalJSON(data []byte) error {
	var classes []string
	if err := json.Unmarshal(data, &classes); err != nil {
		return err
	}
	decoded, err := NewLabelEncoder(classes...)
	if err != nil {
		return err
	}
	*e = *decoded
	return nil
}

// GobEncode はgobでの保存用にカテゴリ一覧をエンコードする
func (e *LabelEncoder) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e.classes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode はgobからカテゴリ一覧を復元する
func (e *LabelEncoder) GobDecode(data []byte) error {
	var classes []string
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&classes); err != nil {
		return err
	}
	decoded, err := NewLabelEncoder(classes...)
	if err != nil {
		return err
	}
	*e = *decoded
	return nil
}

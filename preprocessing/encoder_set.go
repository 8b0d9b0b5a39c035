package preprocessing

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/YuminosukeSato/churnguard/core/model"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
)

// EncoderSet は列名→Encoderの対応
// ここに含まれない列は数値列として扱われ、そのまま通過する
type EncoderSet map[string]Encoder

// Validate はエンコーダ集合が壊れていないかを確認する
// nilのエンコーダ、空のカテゴリ一覧、重複カテゴリはValidationErrorになる
func (s EncoderSet) Validate() error {
	for _, column := range s.Columns() {
		enc := s[column]
		if enc == nil {
			return errors.NewValidationError(column, "encoder is nil", nil)
		}
		if le, ok := enc.(*LabelEncoder); ok {
			if err := le.validate(); err != nil {
				return errors.Wrapf(err, "encoder for column %q", column)
			}
			continue
		}
		classes := enc.Classes()
		if len(classes) == 0 {
			return errors.NewValidationError(column, "encoder must know at least one category", classes)
		}
		seen := make(map[string]struct{}, len(classes))
		for _, c := range classes {
			if _, dup := seen[c]; dup {
				return errors.NewValidationError(column, "duplicate category", c)
			}
			seen[c] = struct{}{}
		}
	}
	return nil
}

// Columns はエンコーダを持つ列名をソートして返す
func (s EncoderSet) Columns() []string {
	cols := make([]string, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Options は列ごとの既知カテゴリ一覧を返す（入力フォームの選択肢に使う）
func (s EncoderSet) Options() map[string][]string {
	out := make(map[string][]string, len(s))
	for c, enc := range s {
		if enc != nil {
			out[c] = enc.Classes()
		}
	}
	return out
}

// LoadEncoderSetJSON はJSON形式 {"column": ["cat0", "cat1", ...]} からエンコーダ集合を読み込む
func LoadEncoderSetJSON(r io.Reader) (EncoderSet, error) {
	var raw map[string]*LabelEncoder
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode encoders")
	}
	return fromLabelEncoders(raw)
}

// SaveEncoderSetJSON はエンコーダ集合をJSON形式で書き出す
func SaveEncoderSetJSON(w io.Writer, set EncoderSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set.Options()); err != nil {
		return errors.Wrap(err, "failed to encode encoders")
	}
	return nil
}

// LoadEncoderSetGob はgob形式のエンコーダ集合を読み込む
func LoadEncoderSetGob(r io.Reader) (EncoderSet, error) {
	var raw map[string]*LabelEncoder
	if err := model.LoadModelFromReader(&raw, r); err != nil {
		return nil, err
	}
	return fromLabelEncoders(raw)
}

// SaveEncoderSetGob はエンコーダ集合をgob形式で書き出す
func SaveEncoderSetGob(w io.Writer, set EncoderSet) error {
	raw := make(map[string]*LabelEncoder, len(set))
	for column, enc := range set {
		if enc == nil {
			return errors.NewValidationError(column, "encoder is nil", nil)
		}
		le, err := NewLabelEncoder(enc.Classes()...)
		if err != nil {
			return err
		}
		raw[column] = le
	}
	return model.SaveModelToWriter(raw, w)
}

func fromLabelEncoders(raw map[string]*LabelEncoder) (EncoderSet, error) {
	set := make(EncoderSet, len(raw))
	for column, le := range raw {
		if le == nil {
			return nil, errors.NewValidationError(column, "encoder is nil", nil)
		}
		set[column] = le
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

package preprocessing

import (
	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
)

// Substitution は未知カテゴリをフォールバックに置き換えた1件の記録
type Substitution struct {
	Column   string       `json:"column"`
	Original record.Value `json:"original"`
	Fallback string       `json:"fallback"`
}

// Warning はこの置換をUnseenCategoryWarningとして返す
func (s Substitution) Warning() *errors.UnseenCategoryWarning {
	return errors.NewUnseenCategoryWarning(s.Column, s.Original.Text(), s.Fallback)
}

// SubstitutionReport は1回の正規化で行われた置換の一覧（列の走査順）
type SubstitutionReport []Substitution

// Empty は置換が1件もなかったかどうかを返す
func (r SubstitutionReport) Empty() bool {
	return len(r) == 0
}

// Warnings は各置換を警告として返す
func (r SubstitutionReport) Warnings() []*errors.UnseenCategoryWarning {
	out := make([]*errors.UnseenCategoryWarning, len(r))
	for i, s := range r {
		out[i] = s.Warning()
	}
	return out
}

// CategoricalNormalizer は入力レコードのカテゴリ列をエンコーダで整数コードに変換する
// 未知のカテゴリは失敗にせず、エンコーダの先頭カテゴリで置き換えて報告する
type CategoricalNormalizer struct {
	encoders EncoderSet
}

// NewCategoricalNormalizer はエンコーダ集合を検証してNormalizerを作成する
//
// 使用例:
//
//	n, err := preprocessing.NewCategoricalNormalizer(encoders)
//	encoded, report, err := n.Normalize(rec)
func NewCategoricalNormalizer(encoders EncoderSet) (*CategoricalNormalizer, error) {
	if err := encoders.Validate(); err != nil {
		return nil, err
	}
	copied := make(EncoderSet, len(encoders))
	for c, enc := range encoders {
		copied[c] = enc
	}
	return &CategoricalNormalizer{encoders: copied}, nil
}

// Encoders はNormalizerが使うエンコーダ集合のコピーを返す
func (n *CategoricalNormalizer) Encoders() EncoderSet {
	out := make(EncoderSet, len(n.encoders))
	for c, enc := range n.encoders {
		out[c] = enc
	}
	return out
}

// Normalize はレコードをエンコード済みレコードに変換する
//
// エンコーダのない列はそのまま、エンコーダのある列は既知ならそのコード、
// 未知なら先頭カテゴリのコードになり、置換がレポートに追加される。
// 副作用はなく、同じ入力には常に同じ結果を返す。
func (n *CategoricalNormalizer) Normalize(rec record.Record) (record.Encoded, SubstitutionReport, error) {
	report := SubstitutionReport{}
	fields := rec.Fields()

	for i, f := range fields {
		enc, ok := n.encoders[f.Name]
		if !ok {
			continue
		}

		category := f.Value.Text()
		if !enc.Contains(category) {
			fallback := enc.Fallback()
			report = append(report, Substitution{Column: f.Name, Original: f.Value, Fallback: fallback})
			category = fallback
		}

		code, err := enc.Transform(category)
		if err != nil {
			return record.Encoded{}, nil, errors.NewValidationError(f.Name, "encoder rejected a known category", err.Error())
		}
		fields[i].Value = record.Int(int64(code))
	}

	encoded, err := record.NewEncoded(fields...)
	if err != nil {
		return record.Encoded{}, nil, err
	}
	return encoded, report, nil
}

// Normalize はエンコーダ集合を毎回検証してからレコードを正規化する
func Normalize(rec record.Record, encoders EncoderSet) (record.Encoded, SubstitutionReport, error) {
	n, err := NewCategoricalNormalizer(encoders)
	if err != nil {
		return record.Encoded{}, nil, err
	}
	return n.Normalize(rec)
}

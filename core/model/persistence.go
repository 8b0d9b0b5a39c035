package model

import (
	"encoding/gob"
	"io"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
)

// Format はアーティファクトのファイル形式
type Format string

const (
	// FormatJSON は人間が読めるJSON形式
	FormatJSON Format = "json"
	// FormatGob はGoのgob形式
	FormatGob Format = "gob"
)

// FormatFromPath はファイルの拡張子から形式を判定する
//
// 使用例:
//
//	f, err := model.FormatFromPath("artifacts/model.json") // FormatJSON
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".gob":
		return FormatGob, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "artifact %q (want .json or .gob)", path)
	}
}

// SaveModelToWriter は値をgob形式でio.Writerに保存する
//
// パラメータ:
//   - model: 保存する値
//   - w: 保存先のWriter
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はgob形式の値をio.Readerから読み込む
//
// パラメータ:
//   - model: 読み込み先（ポインタ）
//   - r: 読み込み元のReader
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

// WriteWeights はModelWeightsを指定形式で書き出す
func WriteWeights(w io.Writer, weights *ModelWeights, format Format) error {
	switch format {
	case FormatJSON:
		data, err := weights.ToJSON()
		if err != nil {
			return errors.Wrap(err, "failed to encode model weights")
		}
		_, err = w.Write(data)
		return errors.WithStack(err)
	case FormatGob:
		return SaveModelToWriter(weights, w)
	default:
		return errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", format)
	}
}

// ReadWeights は指定形式のModelWeightsを読み込み、検証する
func ReadWeights(r io.Reader, format Format) (*ModelWeights, error) {
	weights := &ModelWeights{}
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read model weights")
		}
		if err := weights.FromJSON(data); err != nil {
			return nil, err
		}
	case FormatGob:
		if err := LoadModelFromReader(weights, r); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", format)
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}

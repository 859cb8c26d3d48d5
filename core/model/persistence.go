package model

import (
	"encoding/gob"
	"io"
	"os"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// SaveModel saves a model to a file using gob encoding.
//
// Example:
//
//	trained := trainer.GetModel()
//	err := model.SaveModel(trained, "booster.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return tabErrors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(model); err != nil {
		return tabErrors.Wrap(err, "failed to encode model")
	}

	return nil
}

// LoadModel loads a model from a file written by SaveModel. The model
// argument must be a pointer to the concrete type that was saved.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return tabErrors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(model); err != nil {
		return tabErrors.Wrap(err, "failed to decode model")
	}

	return nil
}

// SaveModelToWriter gob-encodes a model to w.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return tabErrors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader gob-decodes a model from r.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return tabErrors.Wrap(err, "failed to decode model")
	}
	return nil
}

package registry

import (
	"bytes"

	"github.com/egokit/egokit/api"
	"github.com/egokit/egokit/api/v1beta1"
	"github.com/egokit/egokit/pkg/yaml"
)

// Validator validates document data against a schema.
type Validator interface {
	Validate(data any) error
}

// Loader is a generic document loader that handles validation,
// YAML parsing, and error formatting for any document type T.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	yamlError *yaml.ErrorWrapper
	data      []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for type T (e.g., charters.New).
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	validator Validator,
) *Loader[T] {
	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: validator,
		yamlError: yaml.NewErrorWrapper(
			yaml.WithSource(data),
		),
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	validator Validator,
) (*Loader[T], error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	return NewLoaderFromBytes(data, newFunc, validator), nil
}

// Validate validates the document data against the schema.
func (l *Loader[T]) Validate() error {
	var anyDoc any

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(&anyDoc)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	if l.validator != nil {
		err = l.validator.Validate(anyDoc)
		if err != nil {
			return l.yamlError.Wrap(err)
		}
	}

	return nil
}

// Load parses and returns the document.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	doc := l.newFunc()

	dec := yaml.NewDecoder(bytes.NewReader(l.data))
	err := dec.Decode(doc)
	if err != nil {
		var zero T

		return zero, l.yamlError.Wrap(err)
	}

	doc.EnsureDefaults()

	return doc, nil
}

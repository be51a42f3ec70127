package nnet

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAnnotation   = errors.New("activation annotation does not exist")
	ErrMalformedAnnotation = errors.New("malformed activation annotation")
	ErrInvalidNumber       = errors.New("invalid numeric token")
)

// DecodeError reports an activation annotation that could not be turned into
// case splits. Annotation holds the raw text; Token the offending token, if
// any.
type DecodeError struct {
	Neuron     NeuronIndex
	Annotation string
	Token      string
	Err        error
}

func (e *DecodeError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingAnnotation):
		return fmt.Sprintf("neuron %s: %v", e.Neuron, e.Err)
	case e.Token != "":
		return fmt.Sprintf("neuron %s: %v %q in %q", e.Neuron, e.Err, e.Token, e.Annotation)
	}
	return fmt.Sprintf("neuron %s: %v: %q", e.Neuron, e.Err, e.Annotation)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

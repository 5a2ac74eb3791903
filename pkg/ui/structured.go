package ui

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/canastawiki/canasta-modules/pkg/errors"
)

type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSONRenderer(out io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return &jsonRenderer{encoder: encoder}
}

func (r *jsonRenderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

func (r *jsonRenderer) RenderError(err error) error {
	return r.encoder.Encode(errorObject(err))
}

func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}

type yamlRenderer struct {
	out io.Writer
}

func (r *yamlRenderer) encode(v interface{}) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (r *yamlRenderer) RenderResult(result interface{}) error {
	return r.encode(result)
}

func (r *yamlRenderer) RenderError(err error) error {
	return r.encode(errorObject(err))
}

func (r *yamlRenderer) RenderMessage(msg string) error {
	return r.encode(map[string]string{"message": msg})
}

func errorObject(err error) map[string]interface{} {
	obj := map[string]interface{}{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj["details"] = details
	}
	return obj
}

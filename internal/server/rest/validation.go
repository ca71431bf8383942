package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const maxBodyBytes = 1 << 20

// validator holds one compiled JSON Schema per request body type.
type validator struct {
	schemas map[string]*jschema.Schema
}

func newValidator(bodies map[string]any) (*validator, error) {
	r := jsonschema.Reflector{
		DoNotReference:            true,
		Anonymous:                 true,
		AllowAdditionalProperties: true,
	}
	c := jschema.NewCompiler()
	c.AssertFormat()

	v := &validator{schemas: make(map[string]*jschema.Schema, len(bodies))}
	for name, body := range bodies {
		raw, err := json.Marshal(r.Reflect(body))
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", name, err)
		}
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		url := name + ".json"
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = sch
	}
	return v, nil
}

// decode reads the request body, checks it against the named schema and
// unmarshals it into dst. Any failure is a validation error.
func (v *validator) decode(r *http.Request, name string, dst any) error {
	sch, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("no schema %q", name)
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return validationError("unreadable body")
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return validationError("body is not valid JSON")
	}
	if err := sch.Validate(inst); err != nil {
		return validationError("%s", schemaErrorDetail(err))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return validationError("body does not match the expected shape")
	}
	return nil
}

// schemaErrorDetail keeps the "at '<path>': <reason>" lines of a schema
// error and drops the header naming the schema file.
func schemaErrorDetail(err error) string {
	var parts []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			parts = append(parts, strings.TrimPrefix(line, "- "))
		}
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}

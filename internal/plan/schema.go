package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
	"github.com/xeipuuv/gojsonschema"
)

var (
	schemaOnce     sync.Once
	schemaJSON     []byte
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func buildSchema() {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Plan{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		schemaErr = fmt.Errorf("marshal plan schema: %w", err)
		return
	}
	schemaJSON = data

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		schemaErr = fmt.Errorf("compile plan schema: %w", err)
		return
	}
	compiledSchema = compiled
}

// SchemaJSON returns the JSON Schema for Plan, generated once by reflection.
// The planner embeds it into the prompt as the machine-checkable output
// contract.
func SchemaJSON() (string, error) {
	schemaOnce.Do(buildSchema)
	if schemaErr != nil {
		return "", schemaErr
	}
	return string(schemaJSON), nil
}

// Decode turns raw language-model output into a Plan.
//
// Models wrap JSON in code fences or emit slightly broken syntax often
// enough that a repair pass pays for itself; after repair the document is
// validated against the generated schema and then decoded strictly. Any
// failure is a *PlanError: fatal for the request, never retried.
func Decode(raw string) (Plan, error) {
	schemaOnce.Do(buildSchema)
	if schemaErr != nil {
		return Plan{}, &PlanError{Stage: "schema", Err: schemaErr}
	}

	doc := stripCodeFence(raw)
	if strings.TrimSpace(doc) == "" {
		return Plan{}, &PlanError{Stage: "decode", Err: fmt.Errorf("model returned no content")}
	}

	if !json.Valid([]byte(doc)) {
		repaired, err := jsonrepair.JSONRepair(doc)
		if err != nil {
			return Plan{}, &PlanError{Stage: "repair", Err: err}
		}
		doc = repaired
	}

	result, err := compiledSchema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return Plan{}, &PlanError{Stage: "schema", Err: err}
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return Plan{}, &PlanError{Stage: "schema", Err: fmt.Errorf("plan does not match schema: %s", strings.Join(problems, "; "))}
	}

	var p Plan
	decoder := json.NewDecoder(bytes.NewReader([]byte(doc)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return Plan{}, &PlanError{Stage: "decode", Err: err}
	}

	for i := range p.APICalls {
		if p.APICalls[i].Params == nil {
			p.APICalls[i].Params = map[string]any{}
		}
	}
	return p, nil
}

// stripCodeFence removes a surrounding markdown code fence, if present, and
// otherwise trims to the outermost JSON object.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

package events

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// StreamSchema describes one line of an event stream.
const StreamSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["event"],
  "properties": {
    "event": {"enum": ["start", "suite", "suite end", "pass", "fail", "pending", "end"]},
    "title": {"type": "string"},
    "duration": {"type": "number", "minimum": 0},
    "slow": {"type": "number", "minimum": 0},
    "err": {
      "type": "object",
      "properties": {
        "message": {"type": "string"},
        "stack": {"type": "string"},
        "showDiff": {"type": "boolean"}
      }
    }
  },
  "allOf": [
    {
      "if": {"properties": {"event": {"enum": ["suite", "pass", "fail", "pending"]}}},
      "then": {"required": ["title"]}
    },
    {
      "if": {"properties": {"event": {"const": "fail"}}},
      "then": {"required": ["err"]}
    }
  ]
}`

// ValidationError is a schema violation on a given line
type ValidationError struct {
	Line    int
	Field   string
	Message string
}

func (e ValidationError) String() string {
	if e.Field == "" || e.Field == "(root)" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
}

// ValidateStream checks every non-blank line of r against StreamSchema.
// The returned error is only set for I/O or schema compilation failures.
func ValidateStream(r io.Reader) ([]ValidationError, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(StreamSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling stream schema: %w", err)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var problems []ValidationError
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		result, err := schema.Validate(gojsonschema.NewStringLoader(text))
		if err != nil {
			problems = append(problems, ValidationError{Line: line, Message: err.Error()})
			continue
		}
		for _, desc := range result.Errors() {
			problems = append(problems, ValidationError{
				Line:    line,
				Field:   desc.Field(),
				Message: desc.Description(),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return problems, fmt.Errorf("reading event stream: %w", err)
	}
	return problems, nil
}

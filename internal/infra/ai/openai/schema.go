package openai

import (
	"encoding/json"

	"github.com/qri-io/jsonschema"
)

// JSON schemas enforced against the model output before decode. The payload
// is untrusted; anything that does not validate fails closed as a parse error.

const analysisSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["violations", "correct_items", "compliance_score", "is_compliant", "overall_assessment"],
  "properties": {
    "violations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description", "code_section", "severity"],
        "properties": {
          "description": {"type": "string", "minLength": 1},
          "code_section": {"type": "string", "minLength": 1},
          "severity": {"type": "string", "enum": ["minor", "moderate", "critical"]},
          "fix_instruction": {"type": "string"}
        }
      }
    },
    "correct_items": {
      "type": "array",
      "items": {"type": "string"}
    },
    "skills_demonstrated": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["skill"],
        "properties": {
          "skill": {"type": "string", "minLength": 1},
          "evidence": {"type": "string"}
        }
      }
    },
    "compliance_score": {"type": "integer"},
    "is_compliant": {"type": "boolean"},
    "overall_assessment": {"type": "string", "minLength": 1}
  }
}`

const recheckSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["original_violation_status", "new_violations_found", "compliance_score"],
  "properties": {
    "original_violation_status": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["original_description", "status"],
        "properties": {
          "original_description": {"type": "string", "minLength": 1},
          "status": {"type": "string", "enum": ["resolved", "unresolved", "partially_resolved"]},
          "notes": {"type": "string"}
        }
      }
    },
    "new_violations_found": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description"],
        "properties": {
          "description": {"type": "string", "minLength": 1},
          "severity": {"type": "string", "enum": ["minor", "moderate", "critical"]}
        }
      }
    },
    "compliance_score": {"type": "integer"},
    "is_compliant": {"type": "boolean"}
  }
}`

var (
	analysisSchema = mustSchema(analysisSchemaJSON)
	recheckSchema  = mustSchema(recheckSchemaJSON)
)

func mustSchema(data string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rs); err != nil {
		panic("compile schema: " + err.Error())
	}
	return rs
}

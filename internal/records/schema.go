package records

// Required fields per record kind, by stored field name.
var (
	GradeRequired  = []string{"StudentID"}
	SerialRequired = []string{"No", "SerialNo", "AY", "Surname", "Firstname"}
)

// buildPresenceSchema returns a JSON schema accepting any object whose
// required properties are non-empty strings.
func buildPresenceSchema(required []string) map[string]any {
	props := make(map[string]any, len(required))
	for _, name := range required {
		props[name] = map[string]any{"type": "string", "minLength": 1}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

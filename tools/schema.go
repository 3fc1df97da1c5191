package tools

// ObjectSchema returns a JSON schema for an object with the given
// properties. Names listed in required must be present.
func ObjectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func NumberProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func IntegerProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func BooleanProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

// StringEnumProperty restricts a string to values.
func StringEnumProperty(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description, "enum": values}
}

// ArrayProperty describes a list whose elements match items.
func ArrayProperty(description string, items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "description": description, "items": items}
}

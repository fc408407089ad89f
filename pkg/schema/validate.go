package schema

import "slices"

const reasonRequired = "required"

// Schema is a map of field names to their expected types.
// Example: {"timeout": Number(), "retries": Integer(), "tags": List(Text())}
type Schema map[string]Type

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []error
	seen := make([]string, 0, len(fields))

	for _, fieldName := range fields {
		if slices.Contains(seen, fieldName) {
			continue
		}
		seen = append(seen, fieldName)

		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &FieldError{
				Key:    fieldName,
				Reason: "not defined in schema",
			})
			continue
		}

		value, fieldExists := data[fieldName]
		if !fieldExists {
			errs = append(errs, &FieldError{
				Key:    fieldName,
				Reason: reasonRequired,
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &FieldError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

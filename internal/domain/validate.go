// Structural validation for model documents.
//
// ValidateModel checks a decoded model document (canonical or admin-edited)
// against the structural rules the catalogue relies on: required identity
// fields, a well-formed image, and marker positions inside the [0,100]
// percent range. Validation never short-circuits; callers always receive
// the complete list of violations so a form can flag every bad field at once.
package domain

import "fmt"

// FieldError describes a single structural violation.
type FieldError struct {
	// Field is a dotted path to the offending field,
	// e.g. "posmMarkers[2].position.x".
	Field string `json:"field"`
	// Message is a human-readable description of the violation.
	Message string `json:"message"`
	// Value is the offending value, when it helps diagnosis.
	Value any `json:"value,omitempty"`
}

// ValidationResult is the outcome of ValidateModel. When Valid is false,
// Errors holds every violation found.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Model  *ProductModel `json:"model,omitempty"`
	Errors []FieldError  `json:"errors,omitempty"`
}

// MarkerPositionInRange reports whether a coordinate lies in [0,100].
func MarkerPositionInRange(v float64) bool {
	return v >= 0 && v <= 100
}

// ValidateModel validates the structure of a model document and accumulates
// all violations. A model with a non-empty id and name, a well-formed image
// (url present, positive dimensions), and every marker position within
// [0,100] is valid.
func ValidateModel(m ProductModel) ValidationResult {
	var errs []FieldError

	if m.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "id is required"})
	}
	if m.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}

	if m.Image.URL == "" {
		errs = append(errs, FieldError{Field: "image.url", Message: "image url is required"})
	}
	if m.Image.Width <= 0 {
		errs = append(errs, FieldError{Field: "image.width", Message: "image width must be a positive number", Value: m.Image.Width})
	}
	if m.Image.Height <= 0 {
		errs = append(errs, FieldError{Field: "image.height", Message: "image height must be a positive number", Value: m.Image.Height})
	}

	for i, mk := range m.POSMMarkers {
		if mk.ID == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("posmMarkers[%d].id", i),
				Message: "marker id is required",
			})
		}
		if !MarkerPositionInRange(mk.Position.X) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("posmMarkers[%d].position.x", i),
				Message: "x must be between 0 and 100",
				Value:   mk.Position.X,
			})
		}
		if !MarkerPositionInRange(mk.Position.Y) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("posmMarkers[%d].position.y", i),
				Message: "y must be between 0 and 100",
				Value:   mk.Position.Y,
			})
		}
	}

	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs}
	}
	return ValidationResult{Valid: true, Model: &m}
}

// ClampMarkerPosition returns a copy of p with both coordinates clamped
// into [0,100]. Editors use it to keep drag positions persistable.
func ClampMarkerPosition(p MarkerPosition) MarkerPosition {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 100 {
			return 100
		}
		return v
	}
	return MarkerPosition{X: clamp(p.X), Y: clamp(p.Y)}
}

// Package validation provides input validation for request payloads and
// configuration structs.
//
// It supports struct tag validation through the go-playground validator
// and programmatic validation with chained checks. Failures carry
// per-field detail suitable for API responses.
//
// # Struct Tag Validation
//
//	type CreateUserRequest struct {
//	    Name  string `json:"name" validate:"required,min=2"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("name", req.Name).RequiredUUID("owner_id", req.OwnerID)
//	if verr := v.Validate(); verr != nil {
//	    return verr
//	}
package validation

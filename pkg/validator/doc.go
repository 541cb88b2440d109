// Package validator validates request structs with
// github.com/go-playground/validator/v10 and reports failures as
// ValidationErrors with English messages keyed by the json field name.
//
// Besides the built-in tags it registers:
//
//   - password: at least 8 characters with a letter, a digit and one of
//     !@#$%^&*
//   - username: ASCII letters, digits, '.', '_' and '-', starting with a
//     letter or digit
//
//	type RegisterInput struct {
//		Email    string `json:"email" validate:"required,email"`
//		Password string `json:"password" validate:"required,password"`
//	}
//
//	v := validator.MustNew()
//	if err := v.Validate(in); err != nil {
//		var verrs validator.ValidationErrors
//		if errors.As(err, &verrs) { ... }
//	}
package validator

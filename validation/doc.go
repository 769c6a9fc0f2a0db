// Package validation validates stagekit configuration structs.
//
// Struct tags are checked with go-playground/validator; field names in
// messages come from the yaml tag so they match what the operator wrote.
//
//	type Config struct {
//	    Capacity int `yaml:"capacity" validate:"min=1"`
//	}
//	err := validation.Validate(cfg)
//
// Checks that do not fit a tag use the collecting Validator:
//
//	v := validation.New()
//	v.Required("name", cfg.Name).Positive("capacity", cfg.Capacity)
//	err := v.Validate()
package validation

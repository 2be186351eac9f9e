package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, "Invalid request body", parseBindError(err, out))

		return false
	}

	return true
}

func parseBindError(err error, out interface{}) interface{} {
	rootType := baseStructType(out)

	// validator errors (struct binding tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   jsonFieldPath(rootType, fieldError),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return fields
	}

	// bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return []FieldError{
			{Rule: "json", Message: "body is not valid JSON"},
		}
	}

	// type mismatch

	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		return []FieldError{
			{
				Field:   typeError.Field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
			},
		}
	}

	// final fallback if the error could not be deciphered
	return []FieldError{{Rule: "invalid", Message: err.Error()}}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// jsonFieldPath maps a validator namespace such as
// "CreateCaseRequest.CourtProceedings[0].Date" to the JSON path the client
// actually sent ("courtProceedings[0].date").
func jsonFieldPath(rootType reflect.Type, fieldError validator.FieldError) string {
	namespace := fieldError.StructNamespace()

	if namespace == "" {
		return fieldError.Field()
	}

	parts := strings.Split(namespace, ".")

	if rootType != nil && len(parts) > 0 && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	current := rootType
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		name := part
		indexSuffix := ""

		if idx := strings.Index(part, "["); idx >= 0 {
			name, indexSuffix = part[:idx], part[idx:]
		}

		jsonName := name

		if current != nil {
			for current.Kind() == reflect.Pointer {
				current = current.Elem()
			}

			if current.Kind() == reflect.Struct {
				sf, ok := current.FieldByName(name)

				if ok {
					tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")

					if tag != "" && tag != "-" {
						jsonName = tag
					}

					next := sf.Type

					for next.Kind() == reflect.Pointer || next.Kind() == reflect.Slice || next.Kind() == reflect.Array {
						next = next.Elem()
					}

					current = next
				} else {
					current = nil
				}
			} else {
				current = nil
			}
		}

		out = append(out, jsonName+indexSuffix)
	}

	if len(out) == 0 {
		return fieldError.Field()
	}

	return strings.Join(out, ".")
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}

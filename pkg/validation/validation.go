// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package validation holds the shared struct validator used for search
// configurations and persisted snapshots.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/operation"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the process wide validator with the json tag name func
// and the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		// "operation" accepts a known operation identifier or alias.
		_ = validate.RegisterValidation("operation", validOperation)
	})
	return validate
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func validOperation(fl validator.FieldLevel) bool {
	_, ok := operation.Lookup(fl.Field().String())
	return ok
}

// Struct validates v and converts violations into a StructuredError with
// the given code. The first violating field is reported in the context.
func Struct(v any, code errors.ErrorCode, message string) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInternal, "validation failed", err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describe(fe))
	}

	first := verrs[0]
	return errors.WrapWithContext(code, message,
		stderrors.New(strings.Join(parts, "; ")),
		map[string]any{
			"field": fieldPath(first),
			"rule":  ruleOf(first),
			"value": first.Value(),
		})
}

func describe(fe validator.FieldError) string {
	return fmt.Sprintf("%s: violates %s (got %v)", fieldPath(fe), ruleOf(fe), fe.Value())
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// fieldPath drops the top level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

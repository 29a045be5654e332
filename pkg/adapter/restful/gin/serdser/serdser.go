// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser provides the common serialization and
// deserialization helpers of the gin resources. Binding failures are
// reported as a field name to messages map, while the use case errors
// are reported as a detail message with their cerr status code.
package serdser

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/momeni/expertise/pkg/core/cerr"
	"github.com/momeni/expertise/pkg/core/log"
)

var registerOnce sync.Once

// RegisterValidations adds the non-standard validation tags, such as
// notblank, to the validator engine of gin. It may be called many
// times, but only the first call takes effect.
func RegisterValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation(
			"notblank", validators.NotBlank,
		); err != nil {
			panic(err)
		}
	})
}

// Bind deserializes the c request into req using the b binding and
// validates it. In case of errors, a response is written and false
// is returned.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return report(c, c.ShouldBindWith(req, b))
}

// BindURI deserializes the c path parameters into req, similar to
// the Bind function.
func BindURI(c *gin.Context, req any) bool {
	return report(c, c.ShouldBindUri(req))
}

func report(c *gin.Context, err error) bool {
	var verrs validator.ValidationErrors
	var ierr *validator.InvalidValidationError
	switch {
	case err == nil:
		return true
	case errors.As(err, &ierr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case errors.As(err, &verrs):
		var nameToErrs map[string][]string
		for _, ferr := range verrs {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

func Assert(errs *map[string][]string, ok bool, name string, msgs ...string) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// SerErr writes err as the response. A cerr.Error selects the status
// code and its wrapped error is reported. Other errors are logged and
// reported with the 500 status code.
func SerErr(c *gin.Context, err error) {
	if ce := cerr.Classify(err); ce != nil {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
		})
		return
	}
	log.Error(c, "request failed", log.Err("err", err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": err.Error(),
	})
}

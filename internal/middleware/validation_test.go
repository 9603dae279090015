package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Test struct mirroring the shape of the catalog request DTOs
type testProductRequest struct {
	Name       string  `json:"name" validate:"required"`
	CategoryID string  `json:"category_id" validate:"required,uuid"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Stock      *int    `json:"stock" validate:"required,min=0"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeCategory bool, includeStock bool) bool {
			reqMap := map[string]interface{}{
				"price": 9.99,
			}

			if includeName {
				reqMap["name"] = "Widget"
			}
			if includeCategory {
				reqMap["category_id"] = "7f1a3f86-0a6a-4a5e-9a57-0a2c4a9c1d11"
			}
			if includeStock {
				reqMap["stock"] = 5
			}

			allFieldsPresent := includeName && includeCategory && includeStock

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that validation errors are properly formatted
func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			// Malformed category identifier
			reqMap := map[string]interface{}{
				"name":        "Widget",
				"category_id": "not-a-uuid",
				"price":       9.99,
				"stock":       5,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if err == nil {
				return false // Should have validation error
			}

			validationErrors := FormatValidationErrors(err)
			if len(validationErrors) == 0 {
				return false
			}

			// Each error should have a field and message
			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that valid requests pass validation
func TestProperty_ValidRequestsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid requests pass validation", prop.ForAll(
		func(price float64, stock int) bool {
			reqMap := map[string]interface{}{
				"name":        "Widget",
				"category_id": "7f1a3f86-0a6a-4a5e-9a57-0a2c4a9c1d11",
				"price":       price,
				"stock":       stock,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			return err == nil
		},
		gen.Float64Range(0.01, 100000),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test price and stock range validation
func TestProperty_PriceAndStockRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-positive prices and negative stock are rejected", prop.ForAll(
		func(price float64, stock int) bool {
			reqMap := map[string]interface{}{
				"name":        "Widget",
				"category_id": "7f1a3f86-0a6a-4a5e-9a57-0a2c4a9c1d11",
				"price":       price,
				"stock":       stock,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if price > 0 && stock >= 0 {
				return err == nil
			}
			return err != nil
		},
		gen.Float64Range(-1000, 1000).SuchThat(func(f float64) bool { return f != 0 }),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

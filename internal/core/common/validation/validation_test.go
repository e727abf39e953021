package validation_test

import (
	"testing"
	"time"

	errors "github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("Validation", func() {
	issued := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	Describe("ValidatePermitDates", func() {
		It("accepts an expiry after the issue date", func() {
			Expect(validation.ValidatePermitDates(issued, issued.AddDate(1, 0, 0))).To(BeNil())
		})

		It("rejects an expiry before the issue date", func() {
			err := validation.ValidatePermitDates(issued, issued.AddDate(0, 0, -1))
			Expect(err).NotTo(BeNil())
			details := err.Details.(errors.ValidationErrors)
			Expect(details.Errors[0].Field).To(Equal("expiry_date"))
			Expect(details.Errors[0].Code).To(Equal(string(errors.ErrCodeInvalidDate)))
		})

		It("rejects an expiry equal to the issue date", func() {
			Expect(validation.ValidatePermitDates(issued, issued)).NotTo(BeNil())
		})

		It("compares calendar days rather than instants", func() {
			morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
			Expect(validation.ValidatePermitDates(morning, morning.Add(9*time.Hour))).NotTo(BeNil())

			lateNight := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
			Expect(validation.ValidatePermitDates(lateNight, lateNight.Add(time.Hour))).To(BeNil())
		})

		It("requires both dates", func() {
			err := validation.ValidatePermitDates(time.Time{}, time.Time{})
			Expect(err).NotTo(BeNil())
			Expect(err.Details.(errors.ValidationErrors).Errors).To(HaveLen(2))
		})
	})

	Describe("ValidateFeatureCode", func() {
		It("accepts dotted codes", func() {
			Expect(validation.ValidateFeatureCode("employees.directory.list")).To(BeNil())
		})

		It("rejects uppercase and empty segments", func() {
			Expect(validation.ValidateFeatureCode("Employees")).NotTo(BeNil())
			Expect(validation.ValidateFeatureCode("employees..list")).NotTo(BeNil())
		})
	})

	Describe("ValidateRoute", func() {
		It("requires a leading slash", func() {
			Expect(validation.ValidateRoute("/employees")).To(BeNil())
			Expect(validation.ValidateRoute("employees")).NotTo(BeNil())
		})
	})

	Describe("decimal rules", func() {
		It("enforces positive half-day steps", func() {
			v := validation.NewValidator()
			v.Field("days", decimal.RequireFromString("1.25")).PositiveDecimal().StepDecimal(decimal.RequireFromString("0.5"))
			Expect(v.Validate()).NotTo(BeNil())

			v = validation.NewValidator()
			v.Field("days", decimal.RequireFromString("1.5")).PositiveDecimal().StepDecimal(decimal.RequireFromString("0.5"))
			Expect(v.Validate()).To(BeNil())
		})
	})

	Describe("Struct", func() {
		type payload struct {
			Email string `json:"email" validate:"required,email"`
			Name  string `json:"name" validate:"required,max=5"`
		}

		It("maps tag failures to field errors", func() {
			err := validation.Struct(payload{Email: "nope", Name: "toolongname"})
			Expect(err).NotTo(BeNil())
			fields := []string{}
			for _, e := range err.Details.(errors.ValidationErrors).Errors {
				fields = append(fields, e.Field)
			}
			Expect(fields).To(ConsistOf("email", "name"))
		})

		It("passes valid payloads", func() {
			Expect(validation.Struct(payload{Email: "a@b.co", Name: "ann"})).To(BeNil())
		})
	})
})

package api_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/hr-management/api"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var _ = Describe("OpenAPI document", func() {
	It("loads and validates", func() {
		doc, err := api.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Info.Title).To(Equal("HR Management API"))
		Expect(doc.Paths.Find("/employees/{id}")).NotTo(BeNil())
		Expect(doc.Paths.Find("/admin/roles/{id}/permissions")).NotTo(BeNil())
		Expect(doc.Paths.Find("/work-permits/expiring")).NotTo(BeNil())
	})
})

package registry_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frahmantamala/hr-management/internal/registry"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRegistry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Registry Suite")
}

const duplicateYAML = `
version: 1
modules:
  - code: people
    name: People
    features:
      - code: people.list
        name: People
        route: /people
      - code: people.list
        name: People Again
        route: /people-again
      - code: people.cards
        name: People Cards
        route: /people
`

const smallYAML = `
version: 1
modules:
  - code: reports
    name: Reports
    features:
      - code: reports.summary
        name: Summary
        route: /reports
`

var _ = Describe("Registry", func() {
	Describe("embedded registry", func() {
		var r *registry.Registry

		BeforeEach(func() {
			var err error
			r, err = registry.Embedded()
			Expect(err).NotTo(HaveOccurred())
		})

		It("flattens modules, tabs and features", func() {
			scan := r.Scan()
			Expect(scan.Count).To(BeNumerically(">", 10))
			Expect(scan.DuplicateCodes).To(BeEmpty())
			Expect(scan.DuplicateRoutes).To(BeEmpty())
			Expect(scan.Source).To(Equal(registry.EmbeddedSource))

			entry, ok := scan.Entries["employees.directory.list"]
			Expect(ok).To(BeTrue())
			Expect(entry.Module).To(Equal("employees"))
			Expect(entry.Tab).To(Equal("employees.directory"))
			Expect(entry.Route).To(Equal("/employees"))
		})

		It("defaults actions when none are declared", func() {
			entry, ok := r.Lookup("employees.directory.list")
			Expect(ok).To(BeTrue())
			Expect(entry.Actions).To(Equal(registry.DefaultActions))

			overview, _ := r.Lookup("dashboard.overview")
			Expect(overview.Supports("view")).To(BeTrue())
			Expect(overview.Supports("delete")).To(BeFalse())
		})

		It("finds entries by current and legacy route", func() {
			byRoute, ok := r.ByRoute("/work-permits")
			Expect(ok).To(BeTrue())
			Expect(byRoute.Code).To(Equal("work_permits.register"))

			byLegacy, ok := r.ByRoute("/staff")
			Expect(ok).To(BeTrue())
			Expect(byLegacy.Code).To(Equal("employees.directory.list"))

			legacy, ok := r.LegacyRoute("employees.directory.list")
			Expect(ok).To(BeTrue())
			Expect(legacy).To(Equal("/staff"))

			_, ok = r.LegacyRoute("leave.types")
			Expect(ok).To(BeFalse())
		})

		It("orders modules by their declared order", func() {
			mods := r.Modules()
			Expect(mods[0].Code).To(Equal("dashboard"))
			Expect(mods[len(mods)-1].Code).To(Equal("admin"))
		})
	})

	Describe("Parse", func() {
		It("reports duplicate codes and routes with the first declaration winning", func() {
			r, err := registry.Parse([]byte(duplicateYAML), "test")
			Expect(err).NotTo(HaveOccurred())

			scan := r.Scan()
			Expect(scan.Count).To(Equal(2))
			Expect(scan.DuplicateCodes).To(ConsistOf("people.list"))
			Expect(scan.DuplicateRoutes).To(ConsistOf("/people"))

			entry, _ := r.Lookup("people.list")
			Expect(entry.Name).To(Equal("People"))
			byRoute, _ := r.ByRoute("/people")
			Expect(byRoute.Code).To(Equal("people.list"))
		})

		It("rejects routes without a leading slash", func() {
			_, err := registry.Parse([]byte(`
modules:
  - code: x
    features:
      - code: x.y
        route: relative
`), "test")
			Expect(err).To(MatchError(ContainSubstring("must start with '/'")))
		})

		It("rejects unknown fields and actions", func() {
			_, err := registry.Parse([]byte(`
modules:
  - code: x
    colour: red
`), "test")
			Expect(err).To(HaveOccurred())

			_, err = registry.Parse([]byte(`
modules:
  - code: x
    features:
      - code: x.y
        route: /y
        actions: [approve]
`), "test")
			Expect(err).To(MatchError(ContainSubstring("unknown action")))
		})

		It("rejects an empty document", func() {
			_, err := registry.Parse([]byte("version: 1\n"), "test")
			Expect(err).To(MatchError(ContainSubstring("no modules")))
		})
	})

	Describe("Load", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("prefers the external file", func() {
			path := filepath.Join(dir, "features.yaml")
			Expect(os.WriteFile(path, []byte(smallYAML), 0o600)).To(Succeed())

			r, err := registry.Load(context.Background(), path)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Source()).To(Equal(path))
			Expect(r.Count()).To(Equal(1))
		})

		It("falls back to the embedded registry when the file is broken", func() {
			path := filepath.Join(dir, "features.yaml")
			Expect(os.WriteFile(path, []byte("modules: ["), 0o600)).To(Succeed())

			r, err := registry.Load(context.Background(), path)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Source()).To(Equal(registry.EmbeddedSource))
		})

		It("falls back when the file is missing", func() {
			r, err := registry.Load(context.Background(), filepath.Join(dir, "missing.yaml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Source()).To(Equal(registry.EmbeddedSource))
		})
	})

	Describe("Holder and Watcher", func() {
		It("notifies listeners on swap", func() {
			first, _ := registry.Embedded()
			h := registry.NewHolder(first)
			var seen *registry.Registry
			h.OnChange(func(r *registry.Registry) { seen = r })

			second, err := registry.Parse([]byte(smallYAML), "second")
			Expect(err).NotTo(HaveOccurred())
			h.Set(second)

			Expect(h.Get()).To(BeIdenticalTo(second))
			Expect(seen).To(BeIdenticalTo(second))
		})

		It("runs listeners in order and lets a listener register another", func() {
			first, _ := registry.Embedded()
			h := registry.NewHolder(first)
			var calls []string
			h.OnChange(func(*registry.Registry) {
				calls = append(calls, "a")
				h.OnChange(func(*registry.Registry) { calls = append(calls, "late") })
			})
			h.OnChange(func(*registry.Registry) { calls = append(calls, "b") })

			second, err := registry.Parse([]byte(smallYAML), "second")
			Expect(err).NotTo(HaveOccurred())
			h.Set(second)
			Expect(calls).To(Equal([]string{"a", "b"}))

			calls = nil
			h.Set(first)
			Expect(calls).To(Equal([]string{"a", "b", "late"}))
		})

		It("hot reloads the external file and keeps the last good registry on errors", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "features.yaml")
			Expect(os.WriteFile(path, []byte(duplicateYAML), 0o600)).To(Succeed())

			initial, err := registry.LoadFile(path)
			Expect(err).NotTo(HaveOccurred())
			h := registry.NewHolder(initial)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			w := registry.NewWatcher(path, h, 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
			Expect(w.Start(ctx)).To(Succeed())

			Expect(os.WriteFile(path, []byte(smallYAML), 0o600)).To(Succeed())
			Eventually(func() bool {
				_, ok := h.Get().Lookup("reports.summary")
				return ok
			}, 3*time.Second, 20*time.Millisecond).Should(BeTrue())

			Expect(os.WriteFile(path, []byte("modules: ["), 0o600)).To(Succeed())
			Consistently(func() int { return h.Get().Count() }, 300*time.Millisecond, 20*time.Millisecond).Should(Equal(1))
		})
	})
})

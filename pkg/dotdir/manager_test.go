package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewManager", func() {
		It("creates a new manager", func() {
			Expect(m).ToNot(BeNil())
		})
	})

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns existing directory without error", func() {
			result, err := m.Target(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(tmpDir))
		})

		It("returns the override dir even when a local .praxisvoice dir exists", func() {
			// Create a local .praxisvoice dir in the tmpDir
			localDir := filepath.Join(tmpDir, ".praxisvoice")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			// Change to tmpDir so the local dir is discoverable
			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .praxisvoice dir when it exists and no override is provided", func() {
			// Create a local .praxisvoice dir in the tmpDir
			localDir := filepath.Join(tmpDir, ".praxisvoice")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			// Change to tmpDir so the local dir is discoverable
			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(localDir))
		})

		It("returns empty string when no local .praxisvoice dir exists, no home .praxisvoice dir exists, and no override is provided", func() {
			// Ensure we're in a directory without a .praxisvoice subdir
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			// Override HOME so that ~/.praxisvoice from the real home dir is not found.
			origHome := os.Getenv("HOME")
			Expect(os.Setenv("HOME", emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Setenv("HOME", origHome) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeEmpty())
		})
	})

	Describe("Ensure", func() {
		It("creates the home directory when nothing exists", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			origHome := os.Getenv("HOME")
			Expect(os.Setenv("HOME", emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Setenv("HOME", origHome) })

			result, err := m.Ensure("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(emptyDir, ".praxisvoice")))
			Expect(filepath.Join(emptyDir, ".praxisvoice")).To(BeADirectory())
		})
	})
})

package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/dotdir"
)

var _ = Describe("Session", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	It("returns nil when no session exists", func() {
		s, err := m.LoadSession(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNil())
	})

	It("saves and loads a session", func() {
		started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		in := &dotdir.Session{
			CallID:    "sim-1",
			State:     "confirm_forward",
			StartedAt: started,
			Transcript: []dotdir.SessionLine{
				{Speaker: "caller", Text: "Verbinden Sie mich bitte"},
				{Speaker: "agent", Text: "Möchten Sie mit einem Mitarbeiter verbunden werden?"},
			},
		}
		Expect(m.SaveSession(in, tmpDir)).To(Succeed())

		out, err := m.LoadSession(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.CallID).To(Equal("sim-1"))
		Expect(out.State).To(Equal("confirm_forward"))
		Expect(out.StartedAt.Equal(started)).To(BeTrue())
		Expect(out.Transcript).To(HaveLen(2))
	})

	It("rejects nil sessions", func() {
		Expect(m.SaveSession(nil, tmpDir)).To(HaveOccurred())
	})

	It("returns an error for corrupt session files", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte("{"), 0o600)).To(Succeed())
		_, err := m.LoadSession(tmpDir)
		Expect(err).To(HaveOccurred())
	})

	It("clears a session", func() {
		Expect(m.SaveSession(&dotdir.Session{CallID: "sim-2"}, tmpDir)).To(Succeed())
		Expect(m.ClearSession(tmpDir)).To(Succeed())

		s, err := m.LoadSession(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNil())
	})

	It("clears without a session", func() {
		Expect(m.ClearSession(tmpDir)).To(Succeed())
	})
})

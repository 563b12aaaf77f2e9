package servecmder

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("serve logging", func() {
	It("writes pretty records to the terminal and JSON to the log file", func() {
		var terminal, file bytes.Buffer
		l := newServeLogger(false, &terminal, &file)

		l.Info("voice server listening", "addr", ":8080")

		Expect(terminal.String()).To(ContainSubstring("voice server listening"))
		Expect(terminal.String()).NotTo(HavePrefix("{"))

		var record map[string]any
		Expect(json.Unmarshal(file.Bytes(), &record)).To(Succeed())
		Expect(record["msg"]).To(Equal("voice server listening"))
		Expect(record["service"]).To(Equal("praxisvoice"))
		Expect(record["addr"]).To(Equal(":8080"))
	})

	It("logs to the terminal only without a log file", func() {
		var terminal bytes.Buffer
		l := newServeLogger(false, &terminal, nil)

		l.Info("shutting down")
		Expect(terminal.String()).To(ContainSubstring("shutting down"))
	})

	It("honors the debug level in both outputs", func() {
		var terminal, file bytes.Buffer
		newServeLogger(false, &terminal, &file).Debug("hidden")
		Expect(terminal.Len()).To(BeZero())
		Expect(file.Len()).To(BeZero())

		newServeLogger(true, &terminal, &file).Debug("shown")
		Expect(terminal.String()).To(ContainSubstring("shown"))
		Expect(file.String()).To(ContainSubstring("shown"))
	})

	It("opens serve.log in the config directory", func() {
		dir, err := os.MkdirTemp("", "serve-log-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		f, err := openServeLog(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).NotTo(BeNil())

		l := newServeLogger(false, &bytes.Buffer{}, f)
		l.Info("call log store opened", "backend", "inmemory")
		Expect(f.Close()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, logFileName))
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.TrimSpace(string(data))).To(ContainSubstring(`"backend":"inmemory"`))
	})
})

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/inmemory"
	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
	"github.com/papercomputeco/praxisvoice/pkg/nlu"
)

// brokenStore fails every read.
type brokenStore struct {
	*inmemory.Store
}

func (brokenStore) Get(context.Context, string) (*calllog.Record, error) {
	return nil, errors.New("disk on fire")
}

func (brokenStore) List(context.Context, int) ([]*calllog.Record, error) {
	return nil, errors.New("disk on fire")
}

var _ = Describe("API Server", func() {
	var (
		server *Server
		store  *inmemory.Store
		engine *callflow.Engine
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewStore()
		engine = callflow.NewEngine(knowledge.Default(), callflow.Config{ForwardTarget: "+4930123456"})

		var err error
		server, err = NewServer(Config{ListenAddr: ":0"}, engine, store, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	do := func(method, target, body string) (int, []byte) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		data, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, data
	}

	Describe("NewServer", func() {
		It("requires an engine", func() {
			_, err := NewServer(Config{}, nil, store, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("dialog engine is required")))
		})

		It("requires a store", func() {
			_, err := NewServer(Config{}, engine, nil, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("call log store is required")))
		})
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			status, body := do(http.MethodGet, "/ping", "")
			Expect(status).To(Equal(http.StatusOK))
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("GET /v1/calls", func() {
		BeforeEach(func() {
			for _, id := range []string{"CA1", "CA2", "CA3"} {
				Expect(store.Upsert(ctx, id, calllog.Patch{ReasonShort: calllog.String("Notfall")})).To(Succeed())
			}
		})

		It("lists every call log", func() {
			status, body := do(http.MethodGet, "/v1/calls", "")
			Expect(status).To(Equal(http.StatusOK))

			var resp CallListResponse
			Expect(json.Unmarshal(body, &resp)).To(Succeed())
			Expect(resp.Count).To(Equal(3))
			Expect(resp.Calls).To(HaveLen(3))
		})

		It("honors the limit", func() {
			_, body := do(http.MethodGet, "/v1/calls?limit=2", "")

			var resp CallListResponse
			Expect(json.Unmarshal(body, &resp)).To(Succeed())
			Expect(resp.Calls).To(HaveLen(2))
		})

		It("rejects an invalid limit", func() {
			status, body := do(http.MethodGet, "/v1/calls?limit=viele", "")
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(string(body)).To(ContainSubstring("limit"))
		})

		It("returns an empty list for an empty store", func() {
			server, _ = NewServer(Config{}, engine, inmemory.NewStore(), logger.Nop())
			_, body := do(http.MethodGet, "/v1/calls", "")
			Expect(string(body)).To(ContainSubstring(`"calls":[]`))
		})
	})

	Describe("GET /v1/calls/:callId", func() {
		It("returns the record", func() {
			Expect(store.Upsert(ctx, "CA1", calllog.Patch{CandidateName: calllog.String("Maria")})).To(Succeed())

			status, body := do(http.MethodGet, "/v1/calls/CA1", "")
			Expect(status).To(Equal(http.StatusOK))

			var rec calllog.Record
			Expect(json.Unmarshal(body, &rec)).To(Succeed())
			Expect(rec.CallID).To(Equal("CA1"))
			Expect(rec.CandidateName).To(Equal("Maria"))
		})

		It("returns 404 for unknown calls", func() {
			status, body := do(http.MethodGet, "/v1/calls/CA404", "")
			Expect(status).To(Equal(http.StatusNotFound))

			var resp ErrorResponse
			Expect(json.Unmarshal(body, &resp)).To(Succeed())
			Expect(resp.Error).To(Equal("call log not found"))
		})

		It("returns 500 when the store fails", func() {
			server, _ = NewServer(Config{}, engine, brokenStore{inmemory.NewStore()}, logger.Nop())
			status, _ := do(http.MethodGet, "/v1/calls/CA1", "")
			Expect(status).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("POST /v1/dialog/classify", func() {
		It("classifies the utterance", func() {
			status, body := do(http.MethodPost, "/v1/dialog/classify", `{"utterance":"Wann haben Sie geöffnet?"}`)
			Expect(status).To(Equal(http.StatusOK))

			var cls nlu.Classification
			Expect(json.Unmarshal(body, &cls)).To(Succeed())
			Expect(cls.Intent).To(Equal(nlu.IntentFAQ))
			Expect(cls.FAQAnswer).NotTo(BeEmpty())
		})

		It("rejects a malformed body", func() {
			status, _ := do(http.MethodPost, "/v1/dialog/classify", `{"utterance":`)
			Expect(status).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /v1/dialog/turn", func() {
		It("returns the outcome without persisting", func() {
			status, body := do(http.MethodPost, "/v1/dialog/turn", `{"state":"main","utterance":"Ich habe einen Notfall"}`)
			Expect(status).To(Equal(http.StatusOK))

			var resp TurnResponse
			Expect(json.Unmarshal(body, &resp)).To(Succeed())
			Expect(resp.KnownState).To(BeTrue())
			Expect(resp.Outcome.NextState).To(Equal(callflow.StateAnythingElse))
			Expect(resp.Outcome.Action.Kind).To(Equal(callflow.ActionAsk))

			records, err := store.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("flags unknown states", func() {
			_, body := do(http.MethodPost, "/v1/dialog/turn", `{"state":"bogus","utterance":"hallo"}`)

			var resp TurnResponse
			Expect(json.Unmarshal(body, &resp)).To(Succeed())
			Expect(resp.KnownState).To(BeFalse())
			Expect(resp.Outcome.NextState).To(Equal(callflow.StateMain))
		})
	})

	Describe("/mcp", func() {
		It("is mounted", func() {
			status, _ := do(http.MethodGet, "/mcp", "")
			Expect(status).NotTo(Equal(http.StatusNotFound))
		})

		It("can be disabled", func() {
			server, _ = NewServer(Config{DisableMCP: true}, engine, store, logger.Nop())
			status, _ := do(http.MethodGet, "/mcp", "")
			Expect(status).To(Equal(http.StatusNotFound))
		})
	})
})

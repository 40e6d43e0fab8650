package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/app/services/ledger/handlers"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/logger"
	"github.com/gorilla/websocket"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type ledgerTests struct {
	app   http.Handler
	state *state.State
	evts  *events.Events
}

func newLedgerTests(t *testing.T) ledgerTests {
	log, err := logger.New("TEST")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the logger: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Storage:    memory.New(),
		Difficulty: 1,
		CacheSize:  8,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %v", failed, err)
	}
	t.Cleanup(func() { st.Shutdown() })

	evts := events.New()
	t.Cleanup(evts.Shutdown)

	app := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		Evts:     evts,
	})

	return ledgerTests{app: app, state: st, evts: evts}
}

func (lt ledgerTests) do(method string, url string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, url, strings.NewReader(body))
	w := httptest.NewRecorder()
	lt.app.ServeHTTP(w, r)
	return w
}

// =============================================================================

func Test_Ledger(t *testing.T) {
	lt := newLedgerTests(t)

	t.Run("addBlocks", lt.addBlocks)
	t.Run("queryBlocks", lt.queryBlocks)
	t.Run("verifyTamper", lt.verifyTamper)
	t.Run("badRequests", lt.badRequests)
	t.Run("emptyPayload", lt.emptyPayload)
	t.Run("events", lt.events)
}

func (lt ledgerTests) addBlocks(t *testing.T) {
	t.Log("Given the need to append blocks over the API.")
	{
		for i, payload := range []string{"tx1", "tx2"} {
			w := lt.do(http.MethodPost, "/v1/blocks", `{"payload":"`+payload+`"}`)
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tShould receive a status code of 201 for %s, got %d: %s", failed, payload, w.Code, w.Body)
			}

			var got struct {
				Block struct {
					Index uint64 `json:"index"`
					Hash  string `json:"hash"`
				} `json:"block"`
			}
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("\t%s\tShould be able to unmarshal the response: %v", failed, err)
			}

			if got.Block.Index != uint64(i+1) || !strings.HasPrefix(got.Block.Hash, "0") {
				t.Fatalf("\t%s\tShould get sealed block %d, got %+v.", failed, i+1, got.Block)
			}
			t.Logf("\t%s\tShould get sealed block %d.", success, i+1)
		}

		w := lt.do(http.MethodGet, "/v1/chain/tip", "")

		var tip struct {
			Index uint64 `json:"index"`
			Hash  string `json:"hash"`
		}
		if err := json.NewDecoder(w.Body).Decode(&tip); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the tip: %v", failed, err)
		}

		if tip.Index != 2 || tip.Hash != lt.state.Tip() {
			t.Fatalf("\t%s\tShould get the tip at block 2, got %+v.", failed, tip)
		}
		t.Logf("\t%s\tShould get the tip at block 2.", success)
	}
}

func (lt ledgerTests) queryBlocks(t *testing.T) {
	t.Log("Given the need to read blocks over the API.")
	{
		w := lt.do(http.MethodGet, "/v1/blocks/1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200, got %d.", failed, w.Code)
		}

		var blk struct {
			Payload string `json:"payload"`
		}
		if err := json.NewDecoder(w.Body).Decode(&blk); err != nil || blk.Payload != "tx1" {
			t.Fatalf("\t%s\tShould get block 1 with payload tx1, got %+v: %v", failed, blk, err)
		}
		t.Logf("\t%s\tShould get block 1 with payload tx1.", success)

		w = lt.do(http.MethodGet, "/v1/blocks/list/1/latest", "")

		var blocks []json.RawMessage
		if err := json.NewDecoder(w.Body).Decode(&blocks); err != nil || len(blocks) != 2 {
			t.Fatalf("\t%s\tShould get 2 blocks, got %d: %v", failed, len(blocks), err)
		}
		t.Logf("\t%s\tShould get 2 blocks.", success)

		w = lt.do(http.MethodGet, "/v1/blocks/9", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("\t%s\tShould receive a status code of 404, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 404 for an unknown block.", success)
	}
}

func (lt ledgerTests) verifyTamper(t *testing.T) {
	t.Log("Given the need to audit the chain over the API.")
	{
		type report struct {
			Valid  bool   `json:"valid"`
			Index  uint64 `json:"index"`
			Reason string `json:"reason"`
		}

		var rpt report
		w := lt.do(http.MethodGet, "/v1/chain/verify", "")
		if err := json.NewDecoder(w.Body).Decode(&rpt); err != nil || !rpt.Valid {
			t.Fatalf("\t%s\tShould report the chain valid, got %+v: %v", failed, rpt, err)
		}
		t.Logf("\t%s\tShould report the chain valid.", success)

		if err := lt.state.EditBlock(1, database.FieldHash, "0badbadbad"); err != nil {
			t.Fatalf("\t%s\tShould be able to edit block 1: %v", failed, err)
		}

		rpt = report{}
		w = lt.do(http.MethodGet, "/v1/chain/verify?mode=link", "")
		if err := json.NewDecoder(w.Body).Decode(&rpt); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the report: %v", failed, err)
		}

		if rpt.Valid || rpt.Index != 2 || rpt.Reason != "broken link" {
			t.Fatalf("\t%s\tShould report a broken link at block 2, got %+v.", failed, rpt)
		}
		t.Logf("\t%s\tShould report a broken link at block 2.", success)
	}
}

func (lt ledgerTests) badRequests(t *testing.T) {
	t.Log("Given the need to reject bad requests.")
	{
		tt := []struct {
			name   string
			method string
			url    string
			body   string
			status int
		}{
			{"missing payload", http.MethodPost, "/v1/blocks", `{}`, http.StatusBadRequest},
			{"bad json", http.MethodPost, "/v1/blocks", `{"payload":`, http.StatusBadRequest},
			{"bad index", http.MethodGet, "/v1/blocks/abc", "", http.StatusBadRequest},
			{"bad range", http.MethodGet, "/v1/blocks/list/3/1", "", http.StatusBadRequest},
			{"bad mode", http.MethodGet, "/v1/chain/verify?mode=fast", "", http.StatusBadRequest},
		}

		for _, tst := range tt {
			t.Logf("\tWhen sending a request with a %s.", tst.name)
			{
				w := lt.do(tst.method, tst.url, tst.body)
				if w.Code != tst.status {
					t.Fatalf("\t%s\tShould receive a status code of %d, got %d.", failed, tst.status, w.Code)
				}

				var resp errs.Response
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
					t.Fatalf("\t%s\tShould get an error document: %v", failed, err)
				}
				t.Logf("\t%s\tShould receive a status code of %d with an error document.", success, tst.status)
			}
		}
	}
}

func (lt ledgerTests) emptyPayload(t *testing.T) {
	t.Log("Given the need to seal an empty payload.")
	{
		next := lt.state.NextIndex()

		w := lt.do(http.MethodPost, "/v1/blocks", `{"payload":""}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("\t%s\tShould receive a status code of 201, got %d: %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould receive a status code of 201.", success)

		blk, err := lt.state.QueryBlock(next)
		if err != nil || blk.Payload != "" {
			t.Fatalf("\t%s\tShould store block %d with an empty payload, got %+v: %v", failed, next, blk, err)
		}
		t.Logf("\t%s\tShould store block %d with an empty payload.", success, next)
	}
}

func (lt ledgerTests) events(t *testing.T) {
	t.Log("Given the need to stream ledger events over a websocket.")
	{
		srv := httptest.NewServer(lt.app)
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to connect to the event stream: %v", failed, err)
		}
		defer conn.Close()
		t.Logf("\t%s\tShould be able to connect to the event stream.", success)

		deadline := time.Now().Add(5 * time.Second)
		for lt.evts.Count() == 0 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould register a subscriber.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould register a subscriber.", success)

		lt.evts.Send("state: Append: blk[9]")

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			typ, msg, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("\t%s\tShould receive the event: %v", failed, err)
			}
			if typ == websocket.TextMessage {
				if string(msg) != "state: Append: blk[9]" {
					t.Fatalf("\t%s\tShould receive the event, got %q.", failed, msg)
				}
				break
			}
		}
		t.Logf("\t%s\tShould receive the event.", success)
	}
}

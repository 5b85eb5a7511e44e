package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/benithors/domaincli/internal/config"
	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/rpc"
)

func runWithArgs(args ...string) int {
	old := os.Args
	defer func() { os.Args = old }()
	os.Args = append([]string{"domaincli"}, args...)
	return run()
}

// Keep these exit codes stable: they matter in scripts/agents.
func TestRun_NoArgs_Exit2(t *testing.T) {
	if got := runWithArgs(); got != 2 {
		t.Fatalf("exit=%d, want 2", got)
	}
}

func TestRun_UnknownCommand_Exit2(t *testing.T) {
	if got := runWithArgs("nope"); got != 2 {
		t.Fatalf("exit=%d, want 2", got)
	}
}

func TestRun_RegisterWithoutUser_Exit2(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "domaincli.yaml")
	if got := runWithArgs("--config", cfgPath, "register", "example.com"); got != 2 {
		t.Fatalf("exit=%d, want 2", got)
	}
}

func TestRun_RegisterYearsOutOfRange_Exit2(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "domaincli.yaml")
	if got := runWithArgs("--config", cfgPath, "--user-id", "ac_abc", "register", "--years", "11", "example.com"); got != 2 {
		t.Fatalf("exit=%d, want 2", got)
	}
}

// fakeRPC answers /rpc/<op> from a table and records the decoded params.
func fakeRPC(t *testing.T, replies map[string]string) (*httptest.Server, func(op string) map[string]any) {
	t.Helper()
	var mu sync.Mutex
	got := map[string]map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := strings.TrimPrefix(r.URL.Path, "/rpc/")
		var p map[string]any
		_ = json.NewDecoder(r.Body).Decode(&p)
		mu.Lock()
		got[op] = p
		mu.Unlock()

		body, ok := replies[op]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object":"error","message":"unknown"}`))
			return
		}
		if strings.Contains(body, `"fault"`) {
			w.WriteHeader(http.StatusBadRequest)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func(op string) map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return got[op]
	}
}

func TestRun_AccountCreateSavesUserID(t *testing.T) {
	srv, _ := fakeRPC(t, map[string]string{
		"create_account": `{"object":"result","success":true,"id":"ac_new"}`,
	})
	cfgPath := filepath.Join(t.TempDir(), "domaincli.yaml")

	if got := runWithArgs("--config", cfgPath, "--server", srv.URL, "--plain", "account", "create"); got != 0 {
		t.Fatalf("exit=%d, want 0", got)
	}
	saved, err := config.LoadClient(cfgPath)
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if saved.UserID != "ac_new" || saved.Server != srv.URL {
		t.Fatalf("saved=%+v", saved)
	}

	// A second create without --force refuses to clobber the id.
	if got := runWithArgs("--config", cfgPath, "account", "create"); got != 2 {
		t.Fatalf("exit=%d, want 2", got)
	}
}

func TestRun_RegisterOutcomes(t *testing.T) {
	srv, got := fakeRPC(t, map[string]string{
		"register_domain": `{"object":"result","success":false,"message":"Domain is reserved"}`,
	})
	cfgPath := filepath.Join(t.TempDir(), "domaincli.yaml")
	if err := config.SaveClient(cfgPath, config.Client{Server: srv.URL, UserID: "ac_abc"}); err != nil {
		t.Fatalf("SaveClient: %v", err)
	}

	if code := runWithArgs("--config", cfgPath, "-q", "--plain", "register", "--years", "2", "example.com"); code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	p := got("register_domain")
	if p["user_id"] != "ac_abc" || p["domain"] != "example.com" || p["years"] != float64(2) {
		t.Fatalf("params=%v", p)
	}
}

func TestRun_NameserversJoinsArgs(t *testing.T) {
	srv, got := fakeRPC(t, map[string]string{
		"set_nameservers": `{"object":"result","message":"Set nameservers to ns1.example.net, ns2.example.net"}`,
	})
	cfgPath := filepath.Join(t.TempDir(), "domaincli.yaml")

	code := runWithArgs("--config", cfgPath, "--server", srv.URL, "--user-id", "ac_abc", "--plain",
		"ns", "example.com", "NS1.example.net,ns2.example.net", "ns1.example.net")
	if code != 0 {
		t.Fatalf("exit=%d, want 0", code)
	}
	if p := got("set_nameservers"); p["nameservers"] != "ns1.example.net,ns2.example.net" {
		t.Fatalf("params=%v", p)
	}
}

type stubChecker map[string]rpc.Response

func (s stubChecker) CheckAvailability(_ context.Context, d string) (rpc.Response, error) {
	resp, ok := s[d]
	if !ok {
		return rpc.Response{}, fault.New(fault.WhoKnows, "Could not reach the domaincli server")
	}
	return resp, nil
}

func TestCheckDomains_KeepsOrderAndClassifies(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	c := stubChecker{
		"a.com": {Object: rpc.ObjectResult, Available: &yes},
		"b.com": {Object: rpc.ObjectResult, Available: &no},
		"c.com": {Object: rpc.ObjectError, Message: "Registry offline"},
	}

	got := checkDomains(context.Background(), c, 2, []string{"a.com", "b.com", "c.com", "d.com"})
	want := []checkResult{
		{Domain: "a.com", Status: statusAvailable},
		{Domain: "b.com", Status: statusTaken},
		{Domain: "c.com", Status: statusUnknown, Detail: "Registry offline"},
		{Domain: "d.com", Status: statusUnknown, Error: "Could not reach the domaincli server"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result[%d]=%+v, want %+v", i, got[i], want[i])
		}
	}

	only := filterResults(got, "taken")
	if len(only) != 1 || only[0].Domain != "b.com" {
		t.Fatalf("filter taken=%+v", only)
	}
}

func TestSplitCommaList(t *testing.T) {
	t.Parallel()

	got := splitCommaList("NS1.a.net, ns2.a.net", "", "ns1.a.net", "ns3.a.net,")
	want := []string{"ns1.a.net", "ns2.a.net", "ns3.a.net"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("got=%v, want %v", got, want)
	}
}

func TestWriteResults_Plain(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	err := writeResults(&b, formatPlain, []checkResult{{Domain: "a.com", Status: statusAvailable}, {Domain: "b.com", Status: statusTaken}})
	if err != nil {
		t.Fatalf("writeResults: %v", err)
	}
	if b.String() != "a.com\tAVAILABLE\nb.com\tTAKEN\n" {
		t.Fatalf("output=%q", b.String())
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if got := exitCode(&b, nil); got != 0 {
		t.Fatalf("nil exit=%d", got)
	}
	if got := exitCode(&b, errExit0); got != 0 {
		t.Fatalf("errExit0 exit=%d", got)
	}
	if got := exitCode(&b, fault.Wrap(context.Canceled, fault.WhoKnows, "Could not reach the domaincli server")); got != 1 {
		t.Fatalf("fault exit=%d", got)
	}
	if b.String() != "Could not reach the domaincli server\n" {
		t.Fatalf("stderr=%q", b.String())
	}
}

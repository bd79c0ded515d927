//go:build integration

package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/webview-bridge/pkg/bridge"
	"github.com/morezero/webview-bridge/pkg/db"
	"github.com/morezero/webview-bridge/pkg/dispatcher"
	"github.com/morezero/webview-bridge/pkg/modules"
	"github.com/morezero/webview-bridge/pkg/registry"
)

const integrationTestPrefix = "tests:integration_test"
const integrationNatsPort = 14245

// Integration tests use DATABASE_URL (e.g. a bridge_test database).

func TestIntegration_StorageWithDB(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skipf("%s - DATABASE_URL not set, skipping", integrationTestPrefix)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("%s - NewPool failed: %v", integrationTestPrefix, err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("%s - EnsureSchema failed: %v", integrationTestPrefix, err)
	}

	opts := &commsserver.Options{
		Host:   "127.0.0.1",
		Port:   integrationNatsPort,
		NoLog:  true,
		NoSigs: true,
	}
	ns, err := commsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("%s - failed to create NATS server: %v", integrationTestPrefix, err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatalf("%s - NATS server failed to start", integrationTestPrefix)
	}
	defer func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	}()

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		t.Fatalf("%s - failed to connect to NATS: %v", integrationTestPrefix, err)
	}
	defer nc.Close()

	// Scope by test run so reruns never see stale rows.
	scope := fmt.Sprintf("integration-%d", time.Now().UnixNano())
	backend := modules.NewKVBackend(db.NewKVStore(pool))

	reg := registry.NewRegistry()
	reg.Register(modules.NewStorage(scope, backend))
	disp := dispatcher.NewDispatcher(reg, nil)

	subject := "bridge.test.webview.integration.v1"
	_, err = nc.Subscribe(subject, func(msg *comms.Msg) {
		reqCtx, reqCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer reqCancel()
		msg.Respond(disp.DispatchRaw(reqCtx, msg.Data, nil))
	})
	if err != nil {
		t.Fatalf("%s - subscribe failed: %v", integrationTestPrefix, err)
	}

	send := func(raw string) *bridge.Response {
		msg, err := nc.Request(subject, []byte(raw), 10*time.Second)
		if err != nil {
			t.Fatalf("%s - request failed: %v", integrationTestPrefix, err)
		}
		var resp bridge.Response
		if err := json.Unmarshal(msg.Data, &resp); err != nil {
			t.Fatalf("%s - unmarshal response: %v", integrationTestPrefix, err)
		}
		return &resp
	}

	// set, get, keys, remove through the full pipeline against Postgres
	if resp := send(`{"id":"i-1","module":"storage","action":"set","payload":{"key":"session","value":{"token":"abc","ttl":3600}}}`); !resp.Success {
		t.Fatalf("%s - set failed: %s", integrationTestPrefix, resp.Error)
	}

	resp := send(`{"id":"i-2","module":"storage","action":"get","payload":{"key":"session"}}`)
	if !resp.Success {
		t.Fatalf("%s - get failed: %s", integrationTestPrefix, resp.Error)
	}
	if exists, _ := resp.Data.Get("exists").AsBool(); !exists {
		t.Fatalf("%s - expected exists=true", integrationTestPrefix)
	}
	if token, _ := resp.Data.Get("value").Get("token").AsString(); token != "abc" {
		t.Errorf("%s - token = %q, want abc", integrationTestPrefix, token)
	}
	if ttl, ok := resp.Data.Get("value").Get("ttl").AsInt(); !ok || ttl != 3600 {
		t.Errorf("%s - ttl = %d (ok=%v), want 3600", integrationTestPrefix, ttl, ok)
	}

	// Overwrite keeps one row per key.
	if resp := send(`{"id":"i-3","module":"storage","action":"set","payload":{"key":"session","value":{"token":"def"}}}`); !resp.Success {
		t.Fatalf("%s - overwrite failed: %s", integrationTestPrefix, resp.Error)
	}
	resp = send(`{"id":"i-4","module":"storage","action":"keys"}`)
	if !resp.Success {
		t.Fatalf("%s - keys failed: %s", integrationTestPrefix, resp.Error)
	}
	if keys, _ := resp.Data.Get("keys").AsArray(); len(keys) != 1 {
		t.Errorf("%s - keys = %d entries, want 1", integrationTestPrefix, len(keys))
	}

	if resp := send(`{"id":"i-5","module":"storage","action":"remove","payload":{"key":"session"}}`); !resp.Success {
		t.Fatalf("%s - remove failed: %s", integrationTestPrefix, resp.Error)
	}
	resp = send(`{"id":"i-6","module":"storage","action":"get","payload":{"key":"session"}}`)
	if exists, _ := resp.Data.Get("exists").AsBool(); exists {
		t.Errorf("%s - expected exists=false after remove", integrationTestPrefix)
	}
}

package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/keyserve/pkg/config"
	"github.com/bastiangx/keyserve/pkg/decoder"
	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
	"github.com/vmihailenco/msgpack/v5"
)

func testServerParts(t *testing.T) (*lexicon.Lexicon, *keyboard.Layout, *decoder.Suggest) {
	t.Helper()
	lx := lexicon.New()
	lx.AddWord("this", 210)
	lx.AddWord("these", 180)
	return lx, keyboard.Qwerty(), decoder.NewTypingSuggest(decoder.DefaultTypingOptions())
}

func pointsFor(t *testing.T, layout *keyboard.Layout, word string) []RequestPoint {
	t.Helper()
	var points []RequestPoint
	for i, cp := range word {
		x, y, ok := layout.KeyCenter(cp)
		if !ok {
			t.Fatalf("no key for %q", cp)
		}
		points = append(points, RequestPoint{X: x, Y: y, Time: i * 120, CodePoint: int32(cp)})
	}
	return points
}

func runServer(t *testing.T, requests ...any) *msgpack.Decoder {
	t.Helper()
	lx, layout, sg := testServerParts(t)

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	var out bytes.Buffer
	srv := NewServerWithIO(sg, lx, layout, config.DefaultConfig(), &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("server: %v", err)
	}
	return msgpack.NewDecoder(&out)
}

func TestServerDecodesWord(t *testing.T) {
	_, layout, _ := testServerParts(t)
	dec := runServer(t, DecodeRequest{
		ID:     "req1",
		Cmd:    "decode",
		Points: pointsFor(t, layout, "this"),
		Limit:  5,
	})

	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil || ready.Status != "ready" {
		t.Fatalf("ready frame = %+v, err %v", ready, err)
	}

	var response DecodeResponse
	if err := dec.Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.ID != "req1" {
		t.Errorf("response id = %q", response.ID)
	}
	if response.Count == 0 || len(response.Suggestions) == 0 {
		t.Fatal("expected suggestions for exact input")
	}
	if response.Suggestions[0].Word != "this" {
		t.Errorf("top suggestion = %q, want this", response.Suggestions[0].Word)
	}
	if len(response.Suggestions) > 5 {
		t.Errorf("limit ignored: %d suggestions", len(response.Suggestions))
	}
}

func TestServerHealth(t *testing.T) {
	dec := runServer(t, DecodeRequest{ID: "h1", Cmd: "health"})

	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatalf("ready frame: %v", err)
	}
	var health StatusResponse
	if err := dec.Decode(&health); err != nil {
		t.Fatalf("health frame: %v", err)
	}
	if health.ID != "h1" || health.Status != "ok" || health.Words != 2 {
		t.Errorf("health = %+v", health)
	}
}

func TestServerRejectsEmptyPoints(t *testing.T) {
	dec := runServer(t, DecodeRequest{ID: "bad", Cmd: "decode"})

	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatalf("ready frame: %v", err)
	}
	var errFrame DecodeError
	if err := dec.Decode(&errFrame); err != nil {
		t.Fatalf("error frame: %v", err)
	}
	if errFrame.ID != "bad" || errFrame.Code != 400 {
		t.Errorf("error frame = %+v", errFrame)
	}
}

func TestServerUnknownCommand(t *testing.T) {
	dec := runServer(t, DecodeRequest{ID: "u1", Cmd: "bogus"})

	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatalf("ready frame: %v", err)
	}
	var errFrame DecodeError
	if err := dec.Decode(&errFrame); err != nil {
		t.Fatalf("error frame: %v", err)
	}
	if errFrame.Code != 400 {
		t.Errorf("unknown command must return 400, got %+v", errFrame)
	}
}

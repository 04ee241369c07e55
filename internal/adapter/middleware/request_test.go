package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestValidRequestID(t *testing.T) {
	cases := map[string]bool{
		"3f1c1a5e-5b7e-4d7a-9a63-2b8f0d4c9e11":          true,
		"3f1c1a5e5b7e4d7a9a632b8f0d4c9e11":              true,
		"{3f1c1a5e-5b7e-4d7a-9a63-2b8f0d4c9e11}":        false,
		"urn:uuid:3f1c1a5e-5b7e-4d7a-9a63-2b8f0d4c9e11": false,
		"not-an-id":                                     false,
		"":                                              false,
	}
	for in, want := range cases {
		if got := validRequestID(in); got != want {
			t.Fatalf("validRequestID(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseRequestAt(t *testing.T) {
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ok := map[string]time.Time{
		"1772357400":                want,
		"1772357400000":             want,
		"2026-03-01T09:30:00Z":      want,
		"2026-03-01T16:30:00+07:00": want,
		"2026-03-01T09:30:00.000Z":  want,
	}
	for raw, w := range ok {
		got, err := parseRequestAt(raw)
		if err != nil || !got.Equal(w) {
			t.Fatalf("parseRequestAt(%q) = %v, %v", raw, got, err)
		}
	}
	for _, raw := range []string{"", "  ", "2026-03-01T09:30:00", "yesterday"} {
		if _, err := parseRequestAt(raw); err == nil {
			t.Fatalf("parseRequestAt(%q): want error", raw)
		}
	}
}

func TestFingerprint(t *testing.T) {
	if fingerprint([]byte(`{"a":1}`)) == fingerprint([]byte(`{"a":2}`)) {
		t.Fatalf("different bodies share a fingerprint")
	}
	if len(fingerprint(nil)) != 64 {
		t.Fatalf("fingerprint is not hex sha256")
	}
}

func TestRecordKey_UsesConcretePath(t *testing.T) {
	a := recordKey("POST", "/loans/aaa/transitions", "actor", "req")
	b := recordKey("POST", "/loans/bbb/transitions", "actor", "req")
	if a == b {
		t.Fatalf("keys for different loans collide: %s", a)
	}
	if a != keyPrefix+"post:/loans/aaa/transitions:actor:req" {
		t.Fatalf("key = %s", a)
	}
}

func TestStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	s := store{rdb: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	ctx := context.Background()
	key := recordKey("POST", "/loans", "actor", "r1")

	ok, err := s.reserve(ctx, key, record{Fingerprint: "fp"}, time.Minute)
	if err != nil || !ok {
		t.Fatalf("reserve: %v %v", ok, err)
	}
	if ok, _ := s.reserve(ctx, key, record{Fingerprint: "fp"}, time.Minute); ok {
		t.Fatalf("second reserve must fail")
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("in-flight ttl = %v", ttl)
	}

	if err := s.complete(ctx, key, record{Done: true, Status: 201, Body: []byte(`{}`), Fingerprint: "fp"}, time.Hour); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := s.load(ctx, key)
	if err != nil || !got.Done || got.Status != 201 || string(got.Body) != `{}` {
		t.Fatalf("load = %+v, %v", got, err)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("final ttl = %v", ttl)
	}

	if err := s.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, err = s.load(ctx, key)
	if err != nil || got.Done || got.Fingerprint != "" {
		t.Fatalf("load after release = %+v, %v", got, err)
	}
}

func TestStore_CorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	s := store{rdb: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	_ = mr.Set("k", "{not json")
	if _, err := s.load(context.Background(), "k"); err == nil {
		t.Fatalf("want decode error")
	}
	mr.Close()
	if _, err := s.load(context.Background(), "k"); err == nil || errors.Is(err, redis.Nil) {
		t.Fatalf("want connection error, got %v", err)
	}
}

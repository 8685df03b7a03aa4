package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"
)

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)
	if got, want := bodyHash(data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
	if d := time.Since(u); d < 0 || d > 2*time.Second {
		t.Fatalf("nowUTC too far from now: %v", d)
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/loans/7/transitions", "uw-1", strings.Repeat("a", 32))
	if want := "idemp:mtg:post:/loans/7/transitions:uw-1:" + strings.Repeat("a", 32); k != want {
		t.Fatalf("buildKey = %q want %q", k, want)
	}
}

func Test_validIdempKey(t *testing.T) {
	t.Run("accepts uuid and 32-hex", func(t *testing.T) {
		valid := []string{
			"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
			"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88", // case-insensitive
			strings.Repeat("a", 32),
			" 3f9a6a1b3d544fbe8b3a6b3e8d6b2c88 ",
		}
		for _, s := range valid {
			if !validIdempKey(s) {
				t.Fatalf("validIdempKey should accept %q", s)
			}
		}
	})

	t.Run("rejects bad formats", func(t *testing.T) {
		invalid := []string{
			"",
			"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
			"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880", // 33 chars
			"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
			"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", // version 9
		}
		for _, s := range invalid {
			if validIdempKey(s) {
				t.Fatalf("validIdempKey should reject %q", s)
			}
		}
	})
}

func Test_RedisHelpers(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	ctx := context.Background()
	key := buildKey("POST", "/loans", "uw-1", strings.Repeat("a", 32))
	entry := idempEntry{InProgress: true, BodySHA256: bodyHash([]byte(`{"a":1}`)), Key: strings.Repeat("a", 32), CreatedAt: nowUTC()}

	ok, err := provisionalSet(ctx, rdb, key, entry)
	if err != nil || !ok {
		t.Fatalf("provisionalSet 1: ok=%v err=%v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("provisional TTL not set correctly: %v", ttl)
	}
	if ok, err = provisionalSet(ctx, rdb, key, entry); err != nil || ok {
		t.Fatalf("provisionalSet 2 should fail: ok=%v err=%v", ok, err)
	}

	got, err := loadEntry(ctx, rdb, key)
	if err != nil || !got.InProgress || got.BodySHA256 != entry.BodySHA256 {
		t.Fatalf("loadEntry = %+v, %v", got, err)
	}

	final := idempEntry{Code: 201, Body: []byte(`{"ok":true}`), BodySHA256: entry.BodySHA256}
	if err := saveFinal(ctx, rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("saveFinal: %v", err)
	}
	got, err = loadEntry(ctx, rdb, key)
	if err != nil || got.InProgress || got.Code != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("loadEntry after final = %+v, %v", got, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= provisionalLockTTL {
		t.Fatalf("final TTL should replace provisional one, got %v", ttl)
	}

	if err := release(ctx, rdb, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := loadEntry(ctx, rdb, key); err == nil {
		t.Fatalf("entry should be gone after release")
	}
}

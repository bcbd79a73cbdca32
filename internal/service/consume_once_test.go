package service

import (
	"testing"
	"time"
)

func TestMemoryConsumeOnce_SecondConsumeFails(t *testing.T) {
	store := NewMemoryConsumeOnceStore()

	ok, err := store.Consume("jti-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first consume: ok=%v err=%v", ok, err)
	}
	ok, err = store.Consume("jti-1", time.Minute)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if ok {
		t.Fatalf("second consume must report spent")
	}
}

func TestMemoryConsumeOnce_IndependentKeys(t *testing.T) {
	store := NewMemoryConsumeOnceStore()
	if ok, _ := store.Consume("jti-1", time.Minute); !ok {
		t.Fatalf("jti-1 should consume")
	}
	if ok, _ := store.Consume("jti-2", time.Minute); !ok {
		t.Fatalf("jti-2 should consume independently")
	}
}

func TestMemoryConsumeOnce_ExpiredEntryCanBeReused(t *testing.T) {
	store := NewMemoryConsumeOnceStore()
	if ok, _ := store.Consume("jti-1", time.Millisecond); !ok {
		t.Fatalf("first consume should succeed")
	}
	time.Sleep(5 * time.Millisecond)
	if ok, _ := store.Consume("jti-1", time.Minute); !ok {
		t.Fatalf("expired entry should be consumable again")
	}
}

func TestMemoryConsumeOnce_BlankJTI(t *testing.T) {
	store := NewMemoryConsumeOnceStore()
	if ok, _ := store.Consume("", time.Minute); ok {
		t.Fatalf("blank jti must never consume")
	}
}

package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestSealOpenRoundtrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)

	sealed, err := SealPayload(key, "координаты 55.75, 37.61, под лавкой")
	if err != nil {
		t.Fatalf("SealPayload: %v", err)
	}
	if sealed == "координаты 55.75, 37.61, под лавкой" {
		t.Fatal("sealed text equals plaintext")
	}

	opened, err := OpenPayload(key, sealed)
	if err != nil {
		t.Fatalf("OpenPayload: %v", err)
	}
	if opened != "координаты 55.75, 37.61, под лавкой" {
		t.Errorf("opened = %q", opened)
	}
}

func TestSealPayloadUniqueNonce(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)

	a, _ := SealPayload(key, "один и тот же текст")
	b, _ := SealPayload(key, "один и тот же текст")
	if a == b {
		t.Error("two seals of the same text are identical")
	}
}

func TestOpenPayloadWrongKey(t *testing.T) {
	sealed, _ := SealPayload(bytes.Repeat([]byte{0x42}, 32), "секрет")

	if _, err := OpenPayload(bytes.Repeat([]byte{0x43}, 32), sealed); !errors.Is(err, ErrPayloadCorrupt) {
		t.Errorf("err = %v, want ErrPayloadCorrupt", err)
	}
}

func TestOpenPayloadTampered(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	sealed, _ := SealPayload(key, "секрет")

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := OpenPayload(key, tampered); !errors.Is(err, ErrPayloadCorrupt) {
		t.Errorf("err = %v, want ErrPayloadCorrupt", err)
	}
}

func TestOpenPayloadGarbage(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)

	for _, s := range []string{"", "не base64 вообще", "QUJD"} {
		if _, err := OpenPayload(key, s); !errors.Is(err, ErrPayloadCorrupt) {
			t.Errorf("OpenPayload(%q) err = %v, want ErrPayloadCorrupt", s, err)
		}
	}
}

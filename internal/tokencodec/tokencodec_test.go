package tokencodec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ampa-nova/carnet/internal/errs"
	"github.com/ampa-nova/carnet/internal/model"
)

var testHeader = model.Header{Alg: "EdDSA", Typ: "JWT"}

func testPayload() model.TokenPayload {
	return model.TokenPayload{
		V:    1,
		Iss:  "ampa:test",
		Sub:  "m-1",
		Name: "Ana García",
		Iat:  1700000000,
		Exp:  1731536000,
		Jti:  "6f1c0702-14f2-4b9e-9b3a-000000000001",
	}
}

func TestEncodeFinalizeDecode(t *testing.T) {
	t.Parallel()
	input, err := Encode(testHeader, testPayload())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Count(input, ".") != 1 {
		t.Fatalf("signing input must have exactly one dot: %q", input)
	}

	sig := []byte{0xde, 0xad, 0xbe, 0xef}
	token := Finalize(input, sig)
	if !strings.HasPrefix(token, input+".") {
		t.Fatalf("token does not start with signing input")
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("wire form must be unpadded base64url: %q", token)
	}

	dec, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec.Header != testHeader {
		t.Fatalf("header mismatch: %+v", dec.Header)
	}
	if dec.Payload != testPayload() {
		t.Fatalf("payload mismatch: %+v", dec.Payload)
	}
	if !bytes.Equal(dec.Signature, sig) {
		t.Fatalf("signature mismatch: %x", dec.Signature)
	}
	if dec.SigningInput != input {
		t.Fatalf("signing input mismatch: %q", dec.SigningInput)
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()
	input, err := Encode(testHeader, testPayload())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	valid := Finalize(input, []byte{1, 2, 3})

	cases := map[string]string{
		"empty":             "",
		"one segment":       "abc",
		"two segments":      "abc.def",
		"four segments":     valid + ".extra",
		"empty header":      "." + strings.SplitN(valid, ".", 2)[1],
		"empty signature":   input + ".",
		"padded base64":     strings.SplitN(valid, ".", 2)[0] + "==." + strings.SplitN(valid, ".", 2)[1],
		"bad header base64": "!!!." + strings.SplitN(valid, ".", 2)[1],
		"header not JSON":   "bm90LWpzb24." + strings.SplitN(valid, ".", 2)[1],
	}
	for name, tok := range cases {
		if _, err := Decode(tok); !errors.Is(err, errs.ErrMalformed) {
			t.Fatalf("%s: want ErrMalformed, got %v", name, err)
		}
	}
}

func TestDecodePayloadNotJSON(t *testing.T) {
	t.Parallel()
	// "bm90LWpzb24" is base64url("not-json").
	tok := "eyJhbGciOiJFZERTQSIsInR5cCI6IkpXVCJ9.bm90LWpzb24.AAAA"
	if _, err := Decode(tok); !errors.Is(err, errs.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

// All seven payload fields must survive the wire format.
func TestPayloadRoundTripsAllFields(t *testing.T) {
	t.Parallel()
	p := testPayload()
	input, err := Encode(testHeader, p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec, err := Decode(Finalize(input, []byte{0}))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := dec.Payload
	if got.V != p.V || got.Iss != p.Iss || got.Sub != p.Sub || got.Name != p.Name ||
		got.Iat != p.Iat || got.Exp != p.Exp || got.Jti != p.Jti {
		t.Fatalf("field lost in round trip:\n got %+v\nwant %+v", got, p)
	}
}

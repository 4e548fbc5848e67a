package metadata

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	traits := map[string]any{"name": "Sword", "attack": float64(100)}

	blob, err := Encode("ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", traits)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(blob, "data:application/json;base64,") {
		t.Fatalf("Expected canonical data uri, got %q", blob)
	}

	meta, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if meta.Name != "Sword" {
		t.Errorf("Expected name Sword, got %q", meta.Name)
	}
	if meta.Image != "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG" {
		t.Errorf("Unexpected image: %q", meta.Image)
	}
	if got := meta.Traits["attack"]; got != float64(100) {
		t.Errorf("Expected attack trait 100, got %v", got)
	}
	if got := meta.Traits["name"]; got != "Sword" {
		t.Errorf("Expected name trait Sword, got %v", got)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	traits := map[string]any{"name": "Shield", "defense": float64(40)}

	first, err := Encode("https://example.com/shield.png", traits)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Encode("https://example.com/shield.png", traits)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical blobs for identical input")
	}
}

func TestEncode_DefaultName(t *testing.T) {
	blob, err := Encode("https://example.com/x.png", map[string]any{"rarity": "common"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	meta, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if meta.Name != DefaultName {
		t.Errorf("Expected default name %q, got %q", DefaultName, meta.Name)
	}
}

func TestDecode_PlainJSONLiteral(t *testing.T) {
	meta, err := Decode(`{"name":"Helm","image":"ar://abc","traits":{"slot":"head"}}`)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if meta.Name != "Helm" {
		t.Errorf("Expected name Helm, got %q", meta.Name)
	}
	if meta.Traits["slot"] != "head" {
		t.Errorf("Expected slot trait head, got %v", meta.Traits["slot"])
	}
}

func TestDecode_LocatorSchemes(t *testing.T) {
	for _, uri := range []string{
		"https://example.com/meta/7.json",
		"http://example.com/meta/7.json",
		"ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		"ar://hash",
	} {
		meta, err := Decode(uri)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", uri, err)
		}
		if meta.URI != uri {
			t.Errorf("Expected uri %q preserved, got %q", uri, meta.URI)
		}
		if meta.Raw != "" {
			t.Errorf("Locator blob must not be treated as raw: %q", meta.Raw)
		}
	}
}

func TestDecode_UnrecognizedPassthrough(t *testing.T) {
	meta, err := Decode("not-json-not-uri")
	if err != nil {
		t.Fatalf("Decode must not fail on unrecognized input: %v", err)
	}
	if meta.Raw != "not-json-not-uri" {
		t.Errorf("Expected raw passthrough, got %q", meta.Raw)
	}
}

func TestDecode_MalformedDataURI(t *testing.T) {
	meta, err := Decode("data:application/json;base64,%%%not-base64%%%")
	if err == nil {
		t.Fatal("Expected error for undecodable base64 payload")
	}
	if meta != nil {
		t.Errorf("Expected nil metadata on claimed-format failure, got %+v", meta)
	}
}

func TestDecode_MalformedJSONLiteral(t *testing.T) {
	meta, err := Decode(`{"name": truncated`)
	if err == nil {
		t.Fatal("Expected error for unparseable json literal")
	}
	if meta != nil {
		t.Errorf("Expected nil metadata on claimed-format failure, got %+v", meta)
	}
}

func TestDecode_PlainDataURI(t *testing.T) {
	meta, err := Decode(`data:application/json,{"name":"Plain"}`)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if meta.Name != "Plain" {
		t.Errorf("Expected name Plain, got %q", meta.Name)
	}
}

func TestDecode_Base64ValidJSONInvalidPayload(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("[1,2,3]"))
	meta, err := Decode("data:application/json;base64," + payload)
	if err == nil {
		t.Fatal("Expected error for non-object json payload")
	}
	if meta != nil {
		t.Errorf("Expected nil metadata, got %+v", meta)
	}
}

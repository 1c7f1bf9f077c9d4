package types

import "testing"

func TestLobLocatorFlags(t *testing.T) {
	locator := make([]byte, 8)
	locator[lobLocOffsetFlag1] = lobLocFlagBlob | lobLocFlagAbstract
	locator[lobLocOffsetFlag4] = lobLocFlagTemp

	l := LobLocator{Locator: locator}
	if !l.IsBlob() {
		t.Error("IsBlob() should be true when the flag bit is set")
	}
	if !l.IsAbstract() {
		t.Error("IsAbstract() should be true when the flag bit is set")
	}
	if !l.IsTemporary() {
		t.Error("IsTemporary() should be true when the flag bit is set")
	}
}

func TestLobLocatorFlagsOnShortLocator(t *testing.T) {
	l := LobLocator{Locator: []byte{0, 0}}
	if l.IsBlob() || l.IsAbstract() || l.IsTemporary() {
		t.Error("flag accessors should report false on a locator too short to hold the flag bytes")
	}
}

func TestLobHasDataAndSize(t *testing.T) {
	withData := Lob{Locator: LobLocator{Size: 42}, Data: []byte("hello")}
	if !withData.HasData() {
		t.Error("HasData() should be true once Data is set")
	}
	if withData.Size() != 42 {
		t.Errorf("Size() = %d, want 42", withData.Size())
	}

	noData := Lob{Locator: LobLocator{Size: 7}}
	if noData.HasData() {
		t.Error("HasData() should be false with no prefetched Data")
	}
}

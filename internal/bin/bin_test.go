package bin

import "testing"

func TestRoundTrip(t *testing.T) {
	if v := Value[uint32](Bytes(uint32(0xAABBCCDD))); v != 0xAABBCCDD {
		t.Errorf("32-bit: got %#x", v)
	}
	if v := Value16[uint16](Bytes16(uint16(0xF81F))); v != 0xF81F {
		t.Errorf("16-bit: got %#x", v)
	}
}

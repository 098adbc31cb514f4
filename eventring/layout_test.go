package eventring

import "testing"

func TestInitSizeBounds(t *testing.T) {
	testCases := []struct {
		name            string
		descriptorShift uint8
		payloadShift    uint8
		wantErr         bool
	}{
		{"minimum valid", MinDescriptorsShift, MinPayloadBufShift, false},
		{"maximum valid", MaxDescriptorsShift, MaxPayloadBufShift, false},
		{"descriptor shift below minimum", MinDescriptorsShift - 1, MinPayloadBufShift, true},
		{"descriptor shift above maximum", MaxDescriptorsShift + 1, MinPayloadBufShift, true},
		{"payload shift below minimum", MinDescriptorsShift, MinPayloadBufShift - 1, true},
		{"payload shift above maximum", MinDescriptorsShift, MaxPayloadBufShift + 1, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := InitSize(tc.descriptorShift, tc.payloadShift, 0)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("InitSize(%d, %d, 0) = %+v, want error", tc.descriptorShift, tc.payloadShift, size)
				}
				return
			}
			if err != nil {
				t.Fatalf("InitSize(%d, %d, 0) failed: %v", tc.descriptorShift, tc.payloadShift, err)
			}
			if size.DescriptorCapacity != uint64(1)<<tc.descriptorShift {
				t.Errorf("DescriptorCapacity = %d, want %d", size.DescriptorCapacity, uint64(1)<<tc.descriptorShift)
			}
			if size.PayloadBufSize != uint64(1)<<tc.payloadShift {
				t.Errorf("PayloadBufSize = %d, want %d", size.PayloadBufSize, uint64(1)<<tc.payloadShift)
			}
		})
	}
}

func TestInitSizeContextArea(t *testing.T) {
	size, err := InitSize(MinDescriptorsShift, MinPayloadBufShift, 3)
	if err != nil {
		t.Fatalf("InitSize failed: %v", err)
	}
	want := uint64(3) * largePageSize
	if size.ContextAreaSize != want {
		t.Errorf("ContextAreaSize = %d, want %d", size.ContextAreaSize, want)
	}
}

func TestSizeCalcStorageOrdering(t *testing.T) {
	size, err := InitSize(MinDescriptorsShift, MinPayloadBufShift, 0)
	if err != nil {
		t.Fatalf("InitSize failed: %v", err)
	}
	total := size.CalcStorage()
	minimum := ringHeaderSize + size.DescriptorCapacity*descriptorSize + size.PayloadBufSize
	if total < minimum {
		t.Errorf("CalcStorage() = %d, want at least %d", total, minimum)
	}
	if total%filePageSize != 0 {
		t.Errorf("CalcStorage() = %d, not a multiple of the file page size %d", total, filePageSize)
	}
}

func TestSizeValidateRejectsNonPowerOfTwo(t *testing.T) {
	size := Size{DescriptorCapacity: 3 << MinDescriptorsShift, PayloadBufSize: 1 << MinPayloadBufShift}
	if err := size.validate(); err == nil {
		t.Fatal("validate() succeeded for a non-power-of-two descriptor capacity, want error")
	}
}

func TestSizeValidateRejectsOutOfRangeShift(t *testing.T) {
	size := Size{DescriptorCapacity: 1 << (MaxDescriptorsShift + 1), PayloadBufSize: 1 << MinPayloadBufShift}
	if err := size.validate(); err == nil {
		t.Fatal("validate() succeeded for an out-of-range descriptor shift, want error")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	testCases := []struct {
		n    uint64
		want bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{1024, true},
		{1025, false},
	}
	for _, tc := range testCases {
		if got := isPowerOfTwo(tc.n); got != tc.want {
			t.Errorf("isPowerOfTwo(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestAlignUp(t *testing.T) {
	testCases := []struct {
		v, align, want uint64
	}{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{4095, 4096, 4096},
		{4096, 4096, 4096},
	}
	for _, tc := range testCases {
		if got := alignUp(tc.v, tc.align); got != tc.want {
			t.Errorf("alignUp(%d, %d) = %d, want %d", tc.v, tc.align, got, tc.want)
		}
	}
}

package chip

import "testing"

func TestMatchBoardPlatform(t *testing.T) {
	tests := []struct {
		platform string
		want     Type
	}{
		{"mt6769", HelioG85},
		{"mt6789", HelioG99},
		{"mt6791", HelioG100},
		{"taro", Snapdragon7sGen2},
		{"exynos9820", Unknown},
	}
	for _, tt := range tests {
		if got := Match("", tt.platform, "", ""); got != tt.want {
			t.Errorf("Match(platform=%q) = %v, want %v", tt.platform, got, tt.want)
		}
	}
}

func TestMatchCpuinfo(t *testing.T) {
	tests := []struct {
		name    string
		cpuinfo string
		want    Type
	}{
		{"g85 marketing name", "Hardware : MediaTek Helio G85", HelioG85},
		{"g99 part number", "model name : MT6789V/CD", HelioG99},
		{"snapdragon part", "Hardware : Qualcomm SM7435", Snapdragon7sGen2},
		{"unisoc", "Hardware : Unisoc T606", UnisocT606},
		{"a76 complex", "CPU part: Cortex-A76\nCPU part: Cortex-A55", HelioG99},
		{"a78 complex", "CPU part: Cortex-A78\nCPU part: Cortex-A55", Snapdragon7sGen2},
		{"a75 complex", "CPU part: Cortex-A75\nCPU part: Cortex-A55", UnisocT606},
		{"apple brand", "Apple M2 Pro", AppleM2},
		{"no match", "Intel(R) Core(TM) i7", Unknown},
	}
	for _, tt := range tests {
		if got := Match(tt.cpuinfo, "", "", ""); got != tt.want {
			t.Errorf("%s: Match = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatchChipname(t *testing.T) {
	if got := Match("", "", "ums9230_t606", ""); got != UnisocT606 {
		t.Fatalf("Match(chipname) = %v, want UnisocT606", got)
	}
	if got := Match("", "", "", "mt6769z"); got != HelioG85 {
		t.Fatalf("Match(hardware) = %v, want HelioG85", got)
	}
}

func TestSupportsFP16(t *testing.T) {
	tests := []struct {
		chip Type
		want bool
	}{
		{HelioG85, false},
		{UnisocT606, false},
		{HelioG99, true},
		{HelioG100, true},
		{Snapdragon7sGen2, true},
		{AppleA13, true},
		{AppleM4, true},
		{Unknown, false},
	}
	for _, tt := range tests {
		if got := tt.chip.SupportsFP16(); got != tt.want {
			t.Errorf("%v.SupportsFP16() = %v, want %v", tt.chip, got, tt.want)
		}
	}
}

func TestTileF32(t *testing.T) {
	tests := []struct {
		chip   Type
		big    bool
		mr, nr int
	}{
		{HelioG85, true, 4, 4},
		{UnisocT606, true, 4, 4},
		{HelioG99, true, 6, 6},
		{HelioG99, false, 4, 4},
		{Snapdragon7sGen2, true, 8, 8},
		{Snapdragon7sGen2, false, 4, 4},
		{AppleM1, true, 16, 16},
		{AppleM1, false, 8, 8},
		{Unknown, true, 4, 4},
	}
	for _, tt := range tests {
		mr, nr := tt.chip.TileF32(tt.big)
		if mr != tt.mr || nr != tt.nr {
			t.Errorf("%v.TileF32(big=%v) = %dx%d, want %dx%d", tt.chip, tt.big, mr, nr, tt.mr, tt.nr)
		}
	}
}

func TestTileF16(t *testing.T) {
	if mr, nr := HelioG99.TileF16(); mr != 8 || nr != 8 {
		t.Errorf("HelioG99.TileF16() = %dx%d, want 8x8", mr, nr)
	}
	if mr, nr := Snapdragon7sGen2.TileF16(); mr != 12 || nr != 12 {
		t.Errorf("Snapdragon7sGen2.TileF16() = %dx%d, want 12x12", mr, nr)
	}
	if mr, nr := HelioG85.TileF16(); mr != 0 || nr != 0 {
		t.Errorf("HelioG85.TileF16() = %dx%d, want 0x0", mr, nr)
	}
}

func TestString(t *testing.T) {
	if HelioG99.String() != "MediaTek Helio G99" {
		t.Errorf("HelioG99.String() = %q", HelioG99.String())
	}
	if Unknown.String() != "Unknown" {
		t.Errorf("Unknown.String() = %q", Unknown.String())
	}
}

func TestDetectCached(t *testing.T) {
	first := Detect()
	second := Detect()
	if first != second {
		t.Fatalf("Detect not stable: %v then %v", first, second)
	}
}

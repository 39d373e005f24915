package detector

import (
	"image"
	"testing"

	"github.com/ayusman/handmade/internal/geometry"
)

func TestDefect_DepthPixels(t *testing.T) {
	d := Defect{Depth: 20 * 256}
	if got := d.DepthPixels(); got != 20 {
		t.Errorf("DepthPixels() = %v, want 20", got)
	}

	d = Defect{Depth: 5130}
	if got := d.DepthPixels(); got <= 20 || got >= 20.1 {
		t.Errorf("DepthPixels() = %v, want fractional value just above 20", got)
	}
}

func TestFilterDefects(t *testing.T) {
	tests := []struct {
		name     string
		depths   []int
		minDepth float64
		want     int
	}{
		{name: "empty", depths: nil, minDepth: 20, want: 0},
		{name: "exactly at threshold is dropped", depths: []int{20 * 256}, minDepth: 20, want: 0},
		{name: "one unit above threshold is kept", depths: []int{20*256 + 1}, minDepth: 20, want: 1},
		{name: "fraction below the next pixel is kept", depths: []int{21*256 - 1}, minDepth: 20, want: 1},
		{name: "mixed", depths: []int{256, 30 * 256, 10 * 256, 45 * 256}, minDepth: 20, want: 2},
		{name: "zero threshold keeps positive depths", depths: []int{0, 1}, minDepth: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var defects []Defect
			for i, depth := range tt.depths {
				defects = append(defects, Defect{Start: i, End: i + 1, Far: i, Depth: depth})
			}

			got := FilterDefects(defects, tt.minDepth)
			if len(got) != tt.want {
				t.Errorf("FilterDefects() kept %d defects, want %d", len(got), tt.want)
			}
			for _, d := range got {
				if d.DepthPixels() <= tt.minDepth {
					t.Errorf("kept defect with depth %v <= %v", d.DepthPixels(), tt.minDepth)
				}
			}
		})
	}
}

func TestDefectEndpoints(t *testing.T) {
	curve := []image.Point{
		{0, 0},    // 0
		{100, 0},  // 1
		{100, 50}, // 2
		{10, 10},  // 3
		{0, 100},  // 4
	}
	palm := geometry.Circle{Center: image.Pt(50, 50), Radius: 40}

	defects := []Defect{
		// far (100,50) to start (0,0) is ~111.8 > 40
		{Start: 0, End: 1, Far: 2, Depth: 9000},
		// far (10,10) to start (0,0) is ~14.1 < 40
		{Start: 0, End: 4, Far: 3, Depth: 9000},
		// far (10,10) to start (100,0) is ~90.6 > 40
		{Start: 1, End: 4, Far: 3, Depth: 9000},
	}

	got := DefectEndpoints(curve, defects, palm)
	want := []image.Point{{0, 0}, {100, 0}, {100, 0}, {0, 100}}

	if len(got) != len(want) {
		t.Fatalf("DefectEndpoints() returned %d points, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("endpoint[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFirstMatch_PairThreshold(t *testing.T) {
	palm := geometry.Circle{Center: image.Pt(0, 0), Radius: 40}
	limits := PairLimits{PairRatio: 0.5, PalmScale: 2.0}

	tests := []struct {
		name     string
		ends     []image.Point
		wantTips int
	}{
		{
			name:     "exactly half the radius apart is not paired",
			ends:     []image.Point{{100, 0}, {120, 0}},
			wantTips: 0,
		},
		{
			name:     "just under half the radius is paired",
			ends:     []image.Point{{100, 0}, {119, 0}},
			wantTips: 2,
		},
		{
			name:     "midpoint exactly at twice the radius is rejected",
			ends:     []image.Point{{0, 75}, {0, 85}},
			wantTips: 0,
		},
		{
			name:     "midpoint beyond twice the radius is accepted",
			ends:     []image.Point{{0, 76}, {0, 86}},
			wantTips: 2,
		},
		{
			name:     "single endpoint cannot pair",
			ends:     []image.Point{{100, 0}},
			wantTips: 0,
		},
		{
			name:     "no endpoints",
			ends:     nil,
			wantTips: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstMatch(tt.ends, palm, limits)
			if len(got) != tt.wantTips {
				t.Errorf("FirstMatch() = %v (%d tips), want %d tips", got, len(got), tt.wantTips)
			}
		})
	}
}

func TestFirstMatch_Midpoint(t *testing.T) {
	palm := geometry.Circle{Center: image.Pt(0, 0), Radius: 40}
	limits := PairLimits{PairRatio: 0.5, PalmScale: 2.0}

	got := FirstMatch([]image.Point{{100, 0}, {119, 0}}, palm, limits)
	if len(got) != 2 {
		t.Fatalf("FirstMatch() returned %d tips, want 2", len(got))
	}

	// (100+119)/2 = 109.5 rounds up.
	want := image.Pt(110, 0)
	for i, tip := range got {
		if tip != want {
			t.Errorf("tip[%d] = %v, want %v", i, tip, want)
		}
	}
}

func TestPairingStrategies(t *testing.T) {
	palm := geometry.Circle{Center: image.Pt(0, 0), Radius: 40}
	limits := PairLimits{PairRatio: 0.5, PalmScale: 2.0}
	ends := []image.Point{{100, 0}, {115, 0}, {103, 0}}

	first := FirstMatch(ends, palm, limits)
	if len(first) == 0 || first[0] != image.Pt(108, 0) {
		t.Errorf("FirstMatch()[0] = %v, want (108,0) from the first close endpoint", first)
	}

	nearest := NearestMatch(ends, palm, limits)
	if len(nearest) == 0 || nearest[0] != image.Pt(102, 0) {
		t.Errorf("NearestMatch()[0] = %v, want (102,0) from the nearest endpoint", nearest)
	}
}

func TestPairingByName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "", wantErr: false},
		{name: PairingFirst, wantErr: false},
		{name: PairingNearest, wantErr: false},
		{name: "closest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := PairingByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PairingByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && fn == nil {
				t.Errorf("PairingByName(%q) returned nil strategy", tt.name)
			}
		})
	}
}

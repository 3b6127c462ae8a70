package geo

import "testing"

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    GeoLocation
		wantErr bool
	}{
		{in: "49N 20E", want: FromDegrees(49, 20)},
		{in: "33S 70W", want: FromDegrees(-33, -70)},
		{in: "0N 0E", want: FromDegrees(0, 0)},
		{in: "49X 20E", wantErr: true},
		{in: "49N 20Q", wantErr: true},
		{in: "N 20E", wantErr: true},
		{in: "-49N 20E", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLocation(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLocation(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLocation(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLocation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLocationStringRoundTrip(t *testing.T) {
	loc := FromDegrees(-12, -77)
	if loc.String() != "12S 77W" {
		t.Errorf("String() = %q, want %q", loc.String(), "12S 77W")
	}
	back, err := ParseLocation(loc.String())
	if err != nil {
		t.Fatalf("ParseLocation: %v", err)
	}
	if back != loc {
		t.Errorf("round trip = %v, want %v", back, loc)
	}
}

func TestShiftWrapsAntimeridian(t *testing.T) {
	loc := FromDegrees(10, 179)
	east := loc.Shift(0, 1)
	if _, lon := east.Degrees(); lon != -180 {
		t.Errorf("shift east across antimeridian: lon = %d, want -180", lon)
	}

	loc = FromDegrees(10, -180)
	west := loc.Shift(0, -1)
	if _, lon := west.Degrees(); lon != 179 {
		t.Errorf("shift west across antimeridian: lon = %d, want 179", lon)
	}
}

func TestRequestParams(t *testing.T) {
	got := FromDegrees(49, 20).RequestParams()
	want := "latitude=49N&longitude=20E"
	if got != want {
		t.Errorf("RequestParams() = %q, want %q", got, want)
	}
}

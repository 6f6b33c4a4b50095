package metadata

import "testing"

func TestSetGetRoundTrip(t *testing.T) {
	m := NewMap()
	if err := m.SetMetadata(KeyColorSpaceInfo, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	v, err := m.GetMetadata(KeyColorSpaceInfo)
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 4 || v[0] != 1 {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestSetMetadataRejectsKeyOutsideRange(t *testing.T) {
	m := NewMap()
	if err := m.SetMetadata(1, []byte{0}); err == nil {
		t.Fatal("expected error for out-of-range key")
	}
}

func TestConvertMetadataVecRoundTrip(t *testing.T) {
	m := NewMap()
	m.SetMetadata(KeyColorSpaceInfo, []byte{9, 8, 7, 6})
	m.SetMetadata(KeyCropRegion, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})

	vec := ConvertMetadataToVec(m)
	back, err := ConvertVecToMetadata(vec)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range m.Keys() {
		want, _ := m.GetMetadata(k)
		got, err := back.GetMetadata(k)
		if err != nil {
			t.Fatalf("key %d missing after round trip", k)
		}
		if string(got) != string(want) {
			t.Fatalf("key %d: got %v, want %v", k, got, want)
		}
	}
}

func TestColorSpaceRoundTrip(t *testing.T) {
	info := ColorSpaceInfo{Primaries: 1, Transfer: 2, Matrix: 3, Range: 4}
	packed := ConvertColorSpaceInfoToType(info)
	back := ConvertColorSpaceTypeToInfo(packed)
	if back != info {
		t.Fatalf("got %+v, want %+v", back, info)
	}
}

func TestColorSpaceHelperRoundTrip(t *testing.T) {
	m := NewMap()
	info := ColorSpaceInfo{Primaries: 9, Transfer: 1, Matrix: 6, Range: 2}
	if err := SetColorSpaceInfo(m, info); err != nil {
		t.Fatal(err)
	}
	got, err := GetColorSpaceInfo(m)
	if err != nil || got != info {
		t.Fatalf("got %+v, %v; want %+v", got, err, info)
	}
}

func TestHDRStaticRoundTrip(t *testing.T) {
	m := NewMap()
	h := HDRStaticMetadata{
		DisplayPrimariesX: [3]float32{0.68, 0.265, 0.15},
		DisplayPrimariesY: [3]float32{0.32, 0.69, 0.06},
		WhitePointX:       0.3127,
		WhitePointY:       0.329,
		MaxLuminance:      1000,
		MinLuminance:      0.005,
		MaxContentLightLevel:      1000,
		MaxFrameAverageLightLevel: 400,
	}
	if err := SetHDRStaticMetadata(m, h); err != nil {
		t.Fatal(err)
	}
	got, err := GetHDRStaticMetadata(m)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestCropRegionRoundTrip(t *testing.T) {
	m := NewMap()
	r := CropRegion{X: 10, Y: 20, W: 640, H: 480}
	if err := SetCropRegion(m, r); err != nil {
		t.Fatal(err)
	}
	got, err := GetCropRegion(m)
	if err != nil || got != r {
		t.Fatalf("got %+v, %v; want %+v", got, err, r)
	}
}

func TestUpdateTVPQMetadataMergesFields(t *testing.T) {
	m := NewMap()
	if err := UpdateTVPQMetadata(m, func(t *TVPQMetadata) { t.SceneTag = 7 }); err != nil {
		t.Fatal(err)
	}
	if err := UpdateTVPQMetadata(m, func(t *TVPQMetadata) { t.FrameCount = 42 }); err != nil {
		t.Fatal(err)
	}
	got, err := GetTVPQMetadata(m)
	if err != nil {
		t.Fatal(err)
	}
	if got.SceneTag != 7 || got.FrameCount != 42 {
		t.Fatalf("merge lost a field: %+v", got)
	}
}

func TestGetTVPQMetadataDefaultsToZeroValue(t *testing.T) {
	m := NewMap()
	got, err := GetTVPQMetadata(m)
	if err != nil {
		t.Fatal(err)
	}
	if got != (TVPQMetadata{}) {
		t.Fatalf("expected zero value, got %+v", got)
	}
}

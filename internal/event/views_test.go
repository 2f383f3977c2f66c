package event

import (
	"testing"
	"time"
)

func sampleEvents() []Event {
	return []Event{
		{ID: "1", City: "Bogota", Date: "2025-03-01"},
		{ID: "2", City: "Cali", Date: "2025-03-02"},
	}
}

func TestFilterByCity(t *testing.T) {
	events := sampleEvents()

	got := FilterByCity(events, "Bogota")
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("filtered = %+v, want only event 1", got)
	}

	if got := FilterByCity(events, CityAll); len(got) != 2 {
		t.Fatalf("all filter returned %d events, want 2", len(got))
	}

	if got := FilterByCity(events, "Medellin"); len(got) != 0 {
		t.Fatalf("absent city returned %d events, want 0", len(got))
	}
}

func TestCountByCity(t *testing.T) {
	counts := CountByCity(sampleEvents())
	if counts["Bogota"] != 1 || counts["Cali"] != 1 {
		t.Fatalf("counts = %v, want Bogota:1 Cali:1", counts)
	}
	// Absent cities have no key, by contract.
	if _, ok := counts["Medellin"]; ok {
		t.Fatalf("counts = %v, absent city should have no entry", counts)
	}
}

func TestCountByCity_SkipsEventsWithoutCity(t *testing.T) {
	counts := CountByCity([]Event{
		{ID: "1", City: "Cali"},
		{ID: "2"},
	})
	if len(counts) != 1 || counts["Cali"] != 1 {
		t.Fatalf("counts = %v, want only Cali:1", counts)
	}
}

func TestStatusAt(t *testing.T) {
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		date string
		want Status
	}{
		{"2025-03-01", StatusPast},
		{"2025-03-02", StatusLive}, // same day stays live until midnight
		{"2025-03-03", StatusLive},
		{"", StatusLive},
		{"not-a-date", StatusLive},
	}
	for _, tc := range cases {
		if got := (Event{Date: tc.date}).StatusAt(now); got != tc.want {
			t.Fatalf("status(%q) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestBuildCityOptions(t *testing.T) {
	opts := BuildCityOptions(
		[]string{"Bogota", "Cali"},
		map[string]string{"Bogota": "#112233"},
		map[string]int{"Bogota": 3},
	)
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2", len(opts))
	}
	if opts[0].Color != "#112233" || opts[0].Count != 3 {
		t.Fatalf("bogota option = %+v", opts[0])
	}
	if opts[1].Color != DefaultCityColor || opts[1].Count != 0 {
		t.Fatalf("cali option = %+v, want default color and zero count", opts[1])
	}
}

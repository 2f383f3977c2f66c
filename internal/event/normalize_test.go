package event

import "testing"

func TestNormalize_DateStartAliases(t *testing.T) {
	cases := []struct {
		name      string
		in        Event
		wantDate  string
		wantStart string
	}{
		{"date only", Event{Date: "2025-03-01"}, "2025-03-01", "2025-03-01"},
		{"start only", Event{Start: "2025-03-02"}, "2025-03-02", "2025-03-02"},
		{"both set", Event{Date: "2025-03-01", Start: "2025-03-03"}, "2025-03-01", "2025-03-03"},
		{"neither", Event{}, "", ""},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		if got.Date != tc.wantDate || got.Start != tc.wantStart {
			t.Fatalf("%s: date=%q start=%q want date=%q start=%q",
				tc.name, got.Date, got.Start, tc.wantDate, tc.wantStart)
		}
	}
}

func TestNormalize_PopulatedInputsAgree(t *testing.T) {
	inputs := []Event{
		{Date: "2024-12-31"},
		{Start: "2024-01-01"},
		{Date: "2025-06-15", Start: "2025-06-15"},
	}
	for _, in := range inputs {
		got := Normalize(in)
		if got.Date == "" || got.Start == "" {
			t.Fatalf("normalize %+v left an empty temporal field: %+v", in, got)
		}
		if in.Date == "" || in.Start == "" {
			if got.Date != got.Start {
				t.Fatalf("normalize %+v: date %q != start %q", in, got.Date, got.Start)
			}
		}
	}
}

func TestNormalize_EndStaysNil(t *testing.T) {
	got := Normalize(Event{Date: "2025-03-01"})
	if got.End != nil {
		t.Fatalf("end = %v, want nil", *got.End)
	}
	end := "2025-03-05"
	got = Normalize(Event{Date: "2025-03-01", End: &end})
	if got.End == nil || *got.End != end {
		t.Fatalf("end not passed through: %v", got.End)
	}
}

func TestNormalize_OtherFieldsPassThrough(t *testing.T) {
	in := Event{
		ID:         "7",
		Title:      "Milonga",
		City:       "Bogota",
		Start:      "2025-03-01",
		Time:       "20:00",
		Location:   "Teatro",
		Organizers: []string{"Ana", "Luis"},
	}
	got := Normalize(in)
	if got.ID != in.ID || got.Title != in.Title || got.City != in.City ||
		got.Time != in.Time || got.Location != in.Location || len(got.Organizers) != 2 {
		t.Fatalf("fields mutated: %+v", got)
	}
}

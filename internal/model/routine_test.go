package model

import "testing"

func TestRoutineEntry_Contains(t *testing.T) {
	day := RoutineEntry{Start: TimeOfDay{Hour: 8}, Stop: TimeOfDay{Hour: 20}}
	night := RoutineEntry{Start: TimeOfDay{Hour: 22}, Stop: TimeOfDay{Hour: 6}}

	tests := []struct {
		name  string
		entry RoutineEntry
		at    TimeOfDay
		want  bool
	}{
		{"day start inclusive", day, TimeOfDay{Hour: 8}, true},
		{"day middle", day, TimeOfDay{Hour: 12, Minute: 30}, true},
		{"day stop exclusive", day, TimeOfDay{Hour: 20}, false},
		{"day before", day, TimeOfDay{Hour: 7, Minute: 59}, false},
		{"wrap before midnight", night, TimeOfDay{Hour: 23}, true},
		{"wrap after midnight", night, TimeOfDay{Hour: 3}, true},
		{"wrap start inclusive", night, TimeOfDay{Hour: 22}, true},
		{"wrap stop exclusive", night, TimeOfDay{Hour: 6}, false},
		{"wrap outside", night, TimeOfDay{Hour: 12}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestActiveRoutine_FirstMatchWins(t *testing.T) {
	entries := []RoutineEntry{
		{Start: TimeOfDay{Hour: 8}, Stop: TimeOfDay{Hour: 20}, State: "zs_work"},
		{Start: TimeOfDay{Hour: 10}, Stop: TimeOfDay{Hour: 14}, State: "zs_lunch"},
	}

	got, ok := ActiveRoutine(entries, TimeOfDay{Hour: 12})
	if !ok {
		t.Fatal("no routine matched")
	}
	if got.State != "zs_work" {
		t.Errorf("State = %q, want first match zs_work", got.State)
	}
}

func TestActiveRoutine_NoMatch(t *testing.T) {
	entries := []RoutineEntry{
		{Start: TimeOfDay{Hour: 8}, Stop: TimeOfDay{Hour: 10}, State: "zs_work"},
	}

	if _, ok := ActiveRoutine(entries, TimeOfDay{Hour: 15}); ok {
		t.Error("expected no active routine outside all windows")
	}
}

func TestRoutineEntry_Key(t *testing.T) {
	e := RoutineEntry{
		Start:    TimeOfDay{Hour: 8, Minute: 30},
		Stop:     TimeOfDay{Hour: 20},
		State:    "zs_smith",
		Waypoint: "WP_SMITHY",
	}
	want := "zs_smith|WP_SMITHY|510|1200"
	if got := e.Key(); got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestDayClock(t *testing.T) {
	c := NewDayClock(1440, TimeOfDay{Hour: 23, Minute: 30}) // 1 real second = 1 game minute

	if got := c.Now(); got.Hour != 23 || got.Minute != 30 {
		t.Fatalf("Now() = %v, want 23:30", got)
	}

	c.Advance(45) // 45 game minutes, wraps midnight
	if got := c.Now(); got.Hour != 0 || got.Minute != 15 {
		t.Errorf("Now() after wrap = %v, want 00:15", got)
	}
}

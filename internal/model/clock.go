package model

import "fmt"

// TimeOfDay is a minute-resolution wall-clock time inside the game day.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// MinuteOfDay returns the time as minutes since midnight (0-1439).
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// String returns "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Clock supplies the current game time of day.
// The day/night cycle itself (sky, lighting) is outside this core.
type Clock interface {
	Now() TimeOfDay
}

// DayClock is a game-day clock that advances with simulation time.
// A full game day lasts DayLengthSeconds of real time.
type DayClock struct {
	DayLengthSeconds float64
	elapsed          float64 // seconds into the current day
}

// NewDayClock creates a clock starting at the given time of day.
func NewDayClock(dayLengthSeconds float64, start TimeOfDay) *DayClock {
	c := &DayClock{DayLengthSeconds: dayLengthSeconds}
	c.Set(start)
	return c
}

// Advance moves the clock forward by dt real seconds.
func (c *DayClock) Advance(dt float64) {
	if c.DayLengthSeconds <= 0 {
		return
	}
	c.elapsed += dt
	for c.elapsed >= c.DayLengthSeconds {
		c.elapsed -= c.DayLengthSeconds
	}
}

// Set jumps the clock to the given time of day.
func (c *DayClock) Set(t TimeOfDay) {
	minute := t.MinuteOfDay() % 1440
	c.elapsed = float64(minute) / 1440.0 * c.DayLengthSeconds
}

// Now returns the current time of day.
func (c *DayClock) Now() TimeOfDay {
	if c.DayLengthSeconds <= 0 {
		return TimeOfDay{}
	}
	minute := int(c.elapsed / c.DayLengthSeconds * 1440.0)
	if minute >= 1440 {
		minute = 1439
	}
	return TimeOfDay{Hour: minute / 60, Minute: minute % 60}
}

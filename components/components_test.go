package components

import "testing"

func TestAgeBucket(t *testing.T) {
	tests := []struct {
		age  int
		want int
	}{
		{0, 0},
		{9, 0},
		{10, 1},
		{29, 2},
		{30, 3},
		{500, 3},
	}

	for _, tt := range tests {
		c := Critter{Age: tt.age}
		if got := c.AgeBucket(10); got != tt.want {
			t.Errorf("AgeBucket(age=%d) = %d, want %d", tt.age, got, tt.want)
		}
	}
}

func TestMature(t *testing.T) {
	c := Critter{Age: 20}
	if !c.Mature(20) {
		t.Error("critter at maturity age should be mature")
	}
	if c.Mature(21) {
		t.Error("critter below maturity age should not be mature")
	}
}

func TestParseSceneryType(t *testing.T) {
	for i := Palm; i < numSceneryTypes; i++ {
		got, ok := ParseSceneryType(i.String())
		if !ok || got != i {
			t.Errorf("ParseSceneryType(%q) = %v, %v", i.String(), got, ok)
		}
	}
	if _, ok := ParseSceneryType("hill"); ok {
		t.Error("tiles are not scenery")
	}
}

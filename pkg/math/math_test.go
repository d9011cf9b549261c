package math

import "testing"

func TestDivRoundUp(t *testing.T) {
	for _, testCase := range []struct {
		a, b, wanted uint64
	}{
		{0, 8, 0},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{128, 8, 16},
	} {
		if found := DivRoundUp(testCase.a, testCase.b); found != testCase.wanted {
			t.Fatalf(
				"DivRoundUp(%d, %d): wanted `%d`; found `%d`",
				testCase.a,
				testCase.b,
				testCase.wanted,
				found,
			)
		}
	}
}

func TestMinMax(t *testing.T) {
	if found := Min(3, 5); found != 3 {
		t.Fatalf("Min(3, 5): wanted `3`; found `%d`", found)
	}
	if found := Max(3, 5); found != 5 {
		t.Fatalf("Max(3, 5): wanted `5`; found `%d`", found)
	}
}

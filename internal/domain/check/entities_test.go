package check

import "testing"

func TestParseReading(t *testing.T) {
	ok := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"  ", nil},
		{"0", ptrFloat(0)},
		{" 41.5 ", ptrFloat(41.5)},
		{"30,5", ptrFloat(30.5)},
		{"9999.99", ptrFloat(9999.99)},
		{"-9999.99", ptrFloat(-9999.99)},
	}
	for _, c := range ok {
		got, valid := ParseReading(c.in)
		if !valid {
			t.Fatalf("%q: expected valid", c.in)
		}
		if (got == nil) != (c.want == nil) || (got != nil && *got != *c.want) {
			t.Fatalf("%q: got %v, want %v", c.in, got, c.want)
		}
	}

	for _, in := range []string{"hot", "1.2.3", "NaN", "nan", "Inf", "+Inf", "-Infinity", "10000", "-10000", "1e300", "123456789"} {
		if v, valid := ParseReading(in); valid {
			t.Fatalf("%q: expected rejection, got %v", in, *v)
		}
	}
}

func ptrFloat(v float64) *float64 { return &v }

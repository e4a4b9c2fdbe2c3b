package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetersToUnit(t *testing.T) {
	assert.Equal(t, 1.0, MetersToUnit(1000, UnitKilometers))
	assert.Equal(t, 1.0, MetersToUnit(1609.34, UnitMiles))
	assert.Equal(t, 0.0, MetersToUnit(0, UnitMiles))
	// Empty unit falls back to kilometers.
	assert.Equal(t, 2.5, MetersToUnit(2500, ""))
}

func TestUnitForCountry(t *testing.T) {
	tests := map[string]DistanceUnit{
		"US":   UnitMiles,
		"us":   UnitMiles,
		" LR ": UnitMiles,
		"MM":   UnitMiles,
		"HR":   UnitKilometers,
		"GB":   UnitKilometers,
		"":     UnitKilometers,
		"??":   UnitKilometers,
	}

	for code, want := range tests {
		assert.Equal(t, want, UnitForCountry(code), "country %q", code)
	}
}

func TestKmMiRoundTrip(t *testing.T) {
	for _, x := range []float64{0.001, 1, 3.7, 42, 1609.34, 1e6} {
		assert.InDelta(t, x, KmToMi(MiToKm(x)), x*1e-12)
		assert.InDelta(t, x, MiToKm(KmToMi(x)), x*1e-12)
	}
}

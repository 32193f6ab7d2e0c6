package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
)

func TestParsePoint(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  grid.Point
		expectErr bool
	}{
		{name: "Plain", raw: "3,4", expected: grid.Pt(3, 4)},
		{name: "Spaces and parens", raw: " ( 1 , 2 ) ", expected: grid.Pt(1, 2)},
		{name: "Semicolon", raw: "0;7", expected: grid.Pt(0, 7)},
		{name: "Fractional", raw: "2.5,0", expected: grid.Point{X: 2.5, Y: 0}},
		{name: "Negative", raw: "-1,3", expected: grid.Pt(-1, 3)},
		{name: "Missing y", raw: "3", expectErr: true},
		{name: "Letters", raw: "a,b", expectErr: true},
		{name: "Empty", raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePoint(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, p)
			}
		})
	}
}

func TestParseVehicleType(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  model.VehicleType
		expectErr bool
	}{
		{raw: "CARRO", expected: model.VehicleCarro},
		{raw: "car", expected: model.VehicleCarro},
		{raw: "moto", expected: model.VehicleMoto},
		{raw: "Carro Elétrico", expected: model.VehicleCarroEletrico},
		{raw: "carro-eletrico", expected: model.VehicleCarroEletrico},
		{raw: "PCD", expected: model.VehiclePCD},
		{raw: "truck", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			vt, err := ParseVehicleType(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, vt)
			}
		})
	}
}

func TestNormalizeSegment(t *testing.T) {
	testCases := []struct {
		name     string
		in       grid.Segment
		expected grid.Segment
	}{
		{
			name:     "Already ordered",
			in:       grid.Segment{From: grid.Pt(0, 0), To: grid.Pt(0, 3), Direction: grid.OneWayForward},
			expected: grid.Segment{From: grid.Pt(0, 0), To: grid.Pt(0, 3), Direction: grid.OneWayForward},
		},
		{
			name:     "Swapped forward becomes backward",
			in:       grid.Segment{From: grid.Pt(5, 2), To: grid.Pt(1, 2), Direction: grid.OneWayForward},
			expected: grid.Segment{From: grid.Pt(1, 2), To: grid.Pt(5, 2), Direction: grid.OneWayBackward},
		},
		{
			name:     "Swapped bidirectional stays bidirectional",
			in:       grid.Segment{From: grid.Pt(2, 9), To: grid.Pt(2, 4), Direction: grid.Bidirectional},
			expected: grid.Segment{From: grid.Pt(2, 4), To: grid.Pt(2, 9), Direction: grid.Bidirectional},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeSegment(tc.in))
		})
	}
}

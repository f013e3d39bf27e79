package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/reach-cli/internal/geo"
)

// --- Geocoder Mock ---

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, text string) (*Location, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Location), args.Error(1)
}

// --- Isochrone Mock ---

type mockIsochrones struct {
	mock.Mock
}

func (m *mockIsochrones) Compute(ctx context.Context, origin geo.Coordinate, mode geo.TravelMode, minutes int) (*geo.Isochrone, error) {
	args := m.Called(ctx, origin, mode, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Isochrone), args.Error(1)
}

// --- Travel Time Mock ---

type mockTravel struct {
	mock.Mock
}

func (m *mockTravel) Estimate(ctx context.Context, origin, destination geo.Coordinate, mode geo.TravelMode) (float64, error) {
	args := m.Called(ctx, origin, destination, mode)
	return args.Get(0).(float64), args.Error(1)
}

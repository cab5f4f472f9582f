package predictor

import (
	"testing"
)

func TestPredictBatch_Limits(t *testing.T) {
	svc, _ := newTestService(1, false, nil)

	_, err := svc.PredictBatch(nil)
	expectKind(t, err, EmptyBatch)

	locations := make([]Location, MaxBatchSize+1)
	for i := range locations {
		locations[i] = Location{Latitude: 10.0, Longitude: 10.0}
	}
	_, err = svc.PredictBatch(locations)
	expectKind(t, err, TooManyLocations)

	outcomes, err := svc.PredictBatch(locations[:MaxBatchSize])
	if err != nil {
		t.Fatalf("expected %d locations to be accepted, got %v", MaxBatchSize, err)
	}
	if len(outcomes) != MaxBatchSize {
		t.Errorf("expected %d outcomes, got %d", MaxBatchSize, len(outcomes))
	}
}

func TestPredictBatch_PartialFailure(t *testing.T) {
	svc, _ := newTestService(0.5, false, nil)

	outcomes, err := svc.PredictBatch([]Location{
		{Latitude: 28.6139, Longitude: 77.2090},
		{Latitude: "abc", Longitude: 77.2090},
		{Lat: "13.0827", Lon: 80.2707},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}

	if outcomes[0].Result == nil || outcomes[0].Err != nil {
		t.Errorf("expected first outcome to succeed, got %+v", outcomes[0])
	}
	if outcomes[1].Result != nil || outcomes[1].Err == nil || outcomes[1].Err.Kind != InvalidFormat {
		t.Errorf("expected second outcome to fail with InvalidFormat, got %+v", outcomes[1])
	}
	if outcomes[2].Result == nil || outcomes[2].Result.Latitude != 13.0827 {
		t.Errorf("expected lat/lon aliases to be accepted, got %+v", outcomes[2])
	}
}

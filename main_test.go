package main

import (
	"context"
	"errors"
	"testing"

	"literacy_backend/internal/service"

	"github.com/stretchr/testify/assert"
)

type fakeBackfiller struct {
	err    error
	closed bool
}

func (f *fakeBackfiller) Backfill(ctx context.Context) (*service.BackfillSummary, *service.MigrationSummary, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &service.BackfillSummary{TotalInterventions: 3}, &service.MigrationSummary{}, nil
}

func (f *fakeBackfiller) Close() { f.closed = true }

func TestRunBackfillExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", want: 0},
		{name: "failure", err: errors.New("mongo unavailable"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackfiller{err: tt.err}
			assert.Equal(t, tt.want, runBackfill(context.Background(), b))
			assert.True(t, b.closed)
		})
	}
}

package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketStatusAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		now         time.Time
		wantOpen    bool
		wantMessage string
		wantNext    time.Time // next_open when closed, next_close when open
	}{
		{
			name:        "weekday before open",
			now:         time.Date(2024, 6, 10, 0, 30, 0, 0, time.UTC), // Monday
			wantOpen:    false,
			wantMessage: "Market closed - Pre-market",
			wantNext:    time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC),
		},
		{
			name:        "weekday during trading hours",
			now:         time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
			wantOpen:    true,
			wantMessage: "Market open",
			wantNext:    time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC),
		},
		{
			name:        "weekday after close",
			now:         time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC),
			wantOpen:    false,
			wantMessage: "Market closed - After hours",
			wantNext:    time.Date(2024, 6, 11, 1, 0, 0, 0, time.UTC),
		},
		{
			name:        "friday after close rolls to monday",
			now:         time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC), // Friday
			wantOpen:    false,
			wantMessage: "Market closed - After hours",
			wantNext:    time.Date(2024, 6, 17, 1, 0, 0, 0, time.UTC),
		},
		{
			name:        "saturday",
			now:         time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
			wantOpen:    false,
			wantMessage: "Market closed - Weekend",
			wantNext:    time.Date(2024, 6, 17, 1, 0, 0, 0, time.UTC),
		},
		{
			name:        "sunday",
			now:         time.Date(2024, 6, 16, 3, 0, 0, 0, time.UTC),
			wantOpen:    false,
			wantMessage: "Market closed - Weekend",
			wantNext:    time.Date(2024, 6, 17, 1, 0, 0, 0, time.UTC),
		},
		{
			name:        "open boundary is inclusive",
			now:         time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC),
			wantOpen:    true,
			wantMessage: "Market open",
			wantNext:    time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MarketStatusAt(tt.now)

			assert.Equal(t, tt.wantOpen, got.IsOpen)
			assert.Equal(t, tt.wantMessage, got.Message)
			if tt.wantOpen {
				require.NotNil(t, got.NextClose)
				assert.Equal(t, tt.wantNext, *got.NextClose)
				assert.Nil(t, got.NextOpen)
			} else {
				require.NotNil(t, got.NextOpen)
				assert.Equal(t, tt.wantNext, *got.NextOpen)
				assert.Nil(t, got.NextClose)
			}
		})
	}
}

package session

import "testing"

func TestComputeSubtotal(t *testing.T) {
	tests := []struct {
		name          string
		durationHours float64
		partySize     int
		rate          int
		snacks        SnackOrders
		want          int
	}{
		{
			name:          "timeOnly",
			durationHours: 2,
			partySize:     1,
			rate:          50,
			want:          100,
		},
		{
			name:          "timeAndSnacksAtRate60",
			durationHours: 2,
			partySize:     3,
			rate:          60,
			snacks: SnackOrders{
				{Name: "Soda", Quantity: 2, UnitPrice: 50, LineTotal: 100},
			},
			want: 460,
		},
		{
			name:          "halfHourGranularity",
			durationHours: 1.5,
			partySize:     2,
			rate:          50,
			want:          150,
		},
		{
			name:          "fractionalChargeRoundsDown",
			durationHours: 0.5,
			partySize:     1,
			rate:          55,
			want:          27,
		},
		{
			name:          "zeroDurationWhileTyping",
			durationHours: 0,
			partySize:     2,
			rate:          50,
			snacks: SnackOrders{
				{Name: "Water", Quantity: 1, UnitPrice: 10, LineTotal: 10},
			},
			want: 10,
		},
		{
			name:          "negativeInputsTreatedAsEmpty",
			durationHours: -1,
			partySize:     0,
			rate:          50,
			want:          0,
		},
		{
			name:          "snackOrderIrrelevantToTotal",
			durationHours: 1,
			partySize:     1,
			rate:          50,
			snacks: SnackOrders{
				{Name: "Chips", Quantity: 1, UnitPrice: 15, LineTotal: 15},
				{Name: "Water", Quantity: 2, UnitPrice: 10, LineTotal: 20},
			},
			want: 85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSubtotal(tt.durationHours, tt.partySize, tt.rate, tt.snacks)
			if got != tt.want {
				t.Errorf("ComputeSubtotal() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeSubtotalIsPure(t *testing.T) {
	snacks := SnackOrders{{Name: "Chips", Quantity: 1, UnitPrice: 15, LineTotal: 15}}

	first := ComputeSubtotal(1, 2, 50, snacks)
	second := ComputeSubtotal(1, 2, 50, snacks)

	if first != second {
		t.Errorf("repeated calls differ: %d vs %d", first, second)
	}
	if snacks[0].LineTotal != 15 {
		t.Errorf("ComputeSubtotal mutated its input: LineTotal = %d", snacks[0].LineTotal)
	}
}

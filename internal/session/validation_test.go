package session

import "testing"

func validCreateInput() CreateInput {
	return CreateInput{
		CustomerName:  "Ravi",
		PhoneNumber:   "9876543210",
		PartySize:     2,
		DurationHours: 1.5,
		PaymentMode:   PaymentModeOffline,
	}
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateInput)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(in *CreateInput) {},
		},
		{
			name:   "validOnlinePayment",
			mutate: func(in *CreateInput) { in.PaymentMode = PaymentModeOnline },
		},
		{
			name:   "emptyPaymentModeAllowed",
			mutate: func(in *CreateInput) { in.PaymentMode = "" },
		},
		{
			name:      "blankName",
			mutate:    func(in *CreateInput) { in.CustomerName = "   " },
			wantField: "customer_name",
		},
		{
			name:      "phoneTooShort",
			mutate:    func(in *CreateInput) { in.PhoneNumber = "98765" },
			wantField: "phone_number",
		},
		{
			name:      "phoneWithLetters",
			mutate:    func(in *CreateInput) { in.PhoneNumber = "98765abcde" },
			wantField: "phone_number",
		},
		{
			name:      "phoneWithPrefix",
			mutate:    func(in *CreateInput) { in.PhoneNumber = "+919876543" },
			wantField: "phone_number",
		},
		{
			name:      "zeroDuration",
			mutate:    func(in *CreateInput) { in.DurationHours = 0 },
			wantField: "duration_hours",
		},
		{
			name:      "negativeDuration",
			mutate:    func(in *CreateInput) { in.DurationHours = -1 },
			wantField: "duration_hours",
		},
		{
			name:      "quarterHourDuration",
			mutate:    func(in *CreateInput) { in.DurationHours = 1.25 },
			wantField: "duration_hours",
		},
		{
			name:   "wholeHourDuration",
			mutate: func(in *CreateInput) { in.DurationHours = 3 },
		},
		{
			name:      "zeroPartySize",
			mutate:    func(in *CreateInput) { in.PartySize = 0 },
			wantField: "party_size",
		},
		{
			name:      "negativeAge",
			mutate:    func(in *CreateInput) { in.AgeYears = -1 },
			wantField: "age_years",
		},
		{
			name:      "unknownPaymentMode",
			mutate:    func(in *CreateInput) { in.PaymentMode = "card" },
			wantField: "payment_mode",
		},
		{
			name: "zeroQuantitySnack",
			mutate: func(in *CreateInput) {
				in.Snacks = SnackOrders{{ItemID: "chips_15", Quantity: 0, UnitPrice: 15}}
			},
			wantField: "snacks",
		},
		{
			name: "negativePriceSnack",
			mutate: func(in *CreateInput) {
				in.Snacks = SnackOrders{{ItemID: "chips_15", Quantity: 1, UnitPrice: -5}}
			},
			wantField: "snacks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)

			err := ValidateCreate(in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateCreate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateCreate() = nil, want error on %q", tt.wantField)
			}
			if err.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", err.Field, tt.wantField)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		partySize int
		snacks    SnackOrders
		wantField string
	}{
		{name: "valid", duration: 2, partySize: 1},
		{name: "halfHourStep", duration: 0.5, partySize: 3},
		{name: "badDuration", duration: 0.7, partySize: 1, wantField: "duration_hours"},
		{name: "zeroPartySize", duration: 1, partySize: 0, wantField: "party_size"},
		{
			name:      "badSnackLine",
			duration:  1,
			partySize: 1,
			snacks:    SnackOrders{{Quantity: 0}},
			wantField: "snacks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(tt.duration, tt.partySize, tt.snacks)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateUpdate() = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Field != tt.wantField {
				t.Fatalf("ValidateUpdate() = %v, want error on %q", err, tt.wantField)
			}
		})
	}
}
